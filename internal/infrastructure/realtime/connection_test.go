package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// newTestConn upgrades a loopback websocket and returns the server-side Conn.
// The client side discards everything and is torn down with the test.
func newTestConn(t *testing.T) *Conn {
	t.Helper()
	conns := make(chan *Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conns <- NewConn("u1", false, ws)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case c := <-conns:
		return c
	case <-time.After(time.Second):
		t.Fatal("server side connection never arrived")
		return nil
	}
}

func TestSendRacingCloseDoesNotPanic(t *testing.T) {
	conn := newTestConn(t)
	conn.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if err := conn.Send([]byte("m")); err != nil {
				return
			}
		}
	}()

	conn.Close(websocket.CloseNormalClosure, "bye")
	wg.Wait()

	if err := conn.Send([]byte("late")); err == nil {
		t.Fatal("send on a closed connection should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	conn := newTestConn(t)
	conn.Start()

	conn.Close(websocket.CloseNormalClosure, "bye")
	conn.Close(websocket.CloseNormalClosure, "again")
}
