package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Conn wraps one client websocket and serializes outbound writes through a
// buffered channel. A Conn belongs to exactly one signed-in user and carries
// whether that user granted system notification permission (reported by the
// client at attach time; drives the system-notification vs toast decision).
type Conn struct {
	ID                   string
	UserID               string
	NotificationsGranted bool

	ws    *websocket.Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

func NewConn(userID string, notificationsGranted bool, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:                   uuid.NewString(),
		UserID:               userID,
		NotificationsGranted: notificationsGranted,
		ws:                   ws,
		send:                 make(chan []byte, 128),
		close:                make(chan struct{}),
	}
}

// Start launches the write loop. Call exactly once per connection.
func (c *Conn) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. A full buffer closes the connection so
// a slow client cannot grow unbounded backpressure.
func (c *Conn) Send(payload []byte) error {
	select {
	case <-c.close:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close terminates the connection and stops the write loop. The send channel
// stays open so a concurrent Send races only against the close signal, never
// against a closed channel.
func (c *Conn) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.close)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Conn) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Conn) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
