package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/adapter"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// GetMessagesController serves a conversation's thread (one controller per
// endpoint).
type GetMessagesController struct {
	UC *usecase.GetMessagesUseCase
}

func NewGetMessagesController(pool *pgxpool.Pool, cache *querycache.Cache) *GetMessagesController {
	return &GetMessagesController{UC: usecase.NewGetMessagesUseCase(adapter.NewPgChatRepository(pool), cache)}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msgs, err := h.UC.Execute(ctx, conversationID, identityhttp.CallerID(c))
		if err != nil {
			writeChatError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs, "count": len(msgs)})
	}
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant in this conversation"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
