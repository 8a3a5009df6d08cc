package controller

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/realtime"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/reconcile"
	identityusecase "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/application/usecase"
)

// ChatSocketController upgrades clients onto the realtime router. Watching a
// conversation also opens its incremental cache subscription, so the thread
// the client is looking at stays patched while everything else falls back to
// list invalidation.
type ChatSocketController struct {
	router     *realtime.Router
	reconciler *reconcile.Reconciler
}

func NewChatSocketController(router *realtime.Router, reconciler *reconcile.Reconciler) *ChatSocketController {
	return &ChatSocketController{router: router, reconciler: reconciler}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when deploying.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type ackFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes watch frames until the client
// disconnects. Browsers cannot set headers on websocket dials, so the token
// travels as a query parameter.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := identityusecase.ValidateToken(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "valid token is required"})
			return
		}
		granted := c.Query("notifications_granted") == "true"

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConn(claims.UserID, granted, ws)
		ctl.router.Attach(conn)

		open := make(map[string]*feed.Subscription)
		defer func() {
			for _, sub := range open {
				sub.Close()
			}
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(1 << 20)
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		ctl.reply(conn, ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "watch":
				ctl.handleWatch(conn, open, frame)
			case "unwatch":
				ctl.handleUnwatch(conn, open, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

func (ctl *ChatSocketController) handleWatch(conn *realtime.Conn, open map[string]*feed.Subscription, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	scope := feed.Scope{
		Table:  "messages",
		Op:     feed.OpInsert,
		Column: "conversation_id",
		Equals: frame.ConversationID,
	}
	ctl.router.Watch(scope, conn)
	if _, already := open[frame.ConversationID]; !already {
		open[frame.ConversationID] = ctl.reconciler.OpenConversation(frame.ConversationID)
	}

	ctl.reply(conn, ackFrame{Type: "watching", ConversationID: frame.ConversationID})
}

func (ctl *ChatSocketController) handleUnwatch(conn *realtime.Conn, open map[string]*feed.Subscription, frame inboundFrame) {
	if frame.ConversationID == "" {
		ctl.replyError(conn, "bad_request", "conversation_id is required")
		return
	}

	scope := feed.Scope{
		Table:  "messages",
		Op:     feed.OpInsert,
		Column: "conversation_id",
		Equals: frame.ConversationID,
	}
	ctl.router.Unwatch(scope, conn)
	if sub, ok := open[frame.ConversationID]; ok {
		sub.Close()
		delete(open, frame.ConversationID)
	}

	ctl.reply(conn, ackFrame{Type: "unwatched", ConversationID: frame.ConversationID})
}

func (ctl *ChatSocketController) reply(conn *realtime.Conn, v any) {
	if payload, err := json.Marshal(v); err == nil {
		_ = conn.Send(payload)
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Conn, code, message string) {
	ctl.reply(conn, errorFrame{Type: "error", Code: code, Error: message})
}
