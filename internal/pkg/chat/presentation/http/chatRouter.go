package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	qport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/realtime"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/reconcile"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/presentation/controller"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// RegisterRoutes registers the conversation endpoints under the given router
// group. It constructs per-endpoint controllers and binds them directly to
// routes.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache *querycache.Cache,
	events *feed.Feed, queue qport.Client, router *realtime.Router,
	reconciler *reconcile.Reconciler, log *zap.Logger) {

	startCtl := controller.NewStartConversationController(pool, cache)
	listCtl := controller.NewListConversationsController(pool, cache, log)
	getCtl := controller.NewGetMessagesController(pool, cache)
	sendCtl := controller.NewSendMessageController(pool, cache, events, queue, log)
	markCtl := controller.NewMarkReadController(pool, cache)
	socketCtl := controller.NewChatSocketController(router, reconciler)

	auth := g.Group("", identityhttp.AuthRequired())
	auth.POST("/conversations", startCtl.Handle())
	auth.GET("/conversations", listCtl.Handle())
	auth.GET("/conversations/:conversationId/messages", getCtl.Handle())
	auth.POST("/conversations/:conversationId/messages", sendCtl.Handle())
	auth.POST("/conversations/:conversationId/read", markCtl.Handle())

	// Token is validated inside the handler; browsers cannot set headers on
	// websocket dials.
	g.GET("/chat/ws", socketCtl.Handle())
}
