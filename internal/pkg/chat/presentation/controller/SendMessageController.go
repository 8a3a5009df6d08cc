package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	qport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/adapter"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// SendMessageController handles the send endpoint (one controller per
// endpoint).
type SendMessageController struct {
	UC *usecase.SendMessageUseCase
}

func NewSendMessageController(pool *pgxpool.Pool, cache *querycache.Cache, events *feed.Feed, queue qport.Client, log *zap.Logger) *SendMessageController {
	repo := adapter.NewPgChatRepository(pool)
	return &SendMessageController{UC: usecase.NewSendMessageUseCase(repo, cache, events, queue, log)}
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: conversationID,
			SenderID:       identityhttp.CallerID(c),
			Content:        req.Content,
		})
		if err != nil {
			writeChatError(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}
