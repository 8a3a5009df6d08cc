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

// StartConversationController handles first contact on a product (one
// controller per endpoint).
type StartConversationController struct {
	UC *usecase.StartConversationUseCase
}

func NewStartConversationController(pool *pgxpool.Pool, cache *querycache.Cache) *StartConversationController {
	repo := adapter.NewPgChatRepository(pool)
	return &StartConversationController{UC: usecase.NewStartConversationUseCase(repo, cache)}
}

type startConversationRequest struct {
	ProductID *string `json:"product_id"`
	SellerID  string  `json:"seller_id" binding:"required"`
}

func (h *StartConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req startConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conv, err := h.UC.Execute(ctx, usecase.StartConversationInput{
			ProductID: req.ProductID,
			BuyerID:   identityhttp.CallerID(c),
			SellerID:  req.SellerID,
		})
		if err != nil {
			switch {
			case errors.Is(err, chat.ErrSelfContact):
				c.JSON(http.StatusBadRequest, gin.H{"error": "cannot start a conversation with yourself"})
			case errors.Is(err, usecase.ErrPersistence):
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}
