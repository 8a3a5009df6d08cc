package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/adapter"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// MarkReadController handles the read receipt endpoint (one controller per
// endpoint).
type MarkReadController struct {
	UC *usecase.MarkReadUseCase
}

func NewMarkReadController(pool *pgxpool.Pool, cache *querycache.Cache) *MarkReadController {
	return &MarkReadController{UC: usecase.NewMarkReadUseCase(adapter.NewPgChatRepository(pool), cache)}
}

func (h *MarkReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID := c.Param("conversationId")
		if conversationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.Execute(ctx, conversationID, identityhttp.CallerID(c)); err != nil {
			writeChatError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
