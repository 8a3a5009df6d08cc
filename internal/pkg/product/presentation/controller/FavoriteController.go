package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/adapter"
)

// FavoriteController serves saved-listing endpoints.
type FavoriteController struct {
	UC *usecase.FavoritesUseCase
}

func NewFavoriteController(pool *pgxpool.Pool) *FavoriteController {
	return &FavoriteController{UC: usecase.NewFavoritesUseCase(adapter.NewPgProductRepository(pool))}
}

func (h *FavoriteController) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		favorites, err := h.UC.List(ctx, identityhttp.CallerID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "favorites lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": favorites, "count": len(favorites)})
	}
}

func (h *FavoriteController) HandleStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		saved, err := h.UC.IsFavorite(ctx, identityhttp.CallerID(c), c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "favorite lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorite": saved})
	}
}

func (h *FavoriteController) HandleToggle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		saved, err := h.UC.Toggle(ctx, identityhttp.CallerID(c), c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "favorite toggle failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"favorite": saved})
	}
}
