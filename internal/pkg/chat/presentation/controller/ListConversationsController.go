package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	chat "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/domain"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/adapter"
	identityadapter "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/adapter"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// ListConversationsController serves the inbox (one controller per endpoint).
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(pool *pgxpool.Pool, cache *querycache.Cache, log *zap.Logger) *ListConversationsController {
	return &ListConversationsController{
		UC: usecase.NewListConversationsUseCase(
			adapter.NewPgChatRepository(pool),
			identityadapter.NewPgUserRepository(pool),
			cache, log),
	}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		views, err := h.UC.Execute(ctx, identityhttp.CallerID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation list failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"conversations": views,
			"count":         len(views),
			"total_unread":  chat.TotalUnread(views),
		})
	}
}
