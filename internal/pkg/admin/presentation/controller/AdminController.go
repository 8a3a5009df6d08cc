package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/persistence/repository/adapter"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// AdminController serves the moderation dashboard.
type AdminController struct {
	UC *usecase.AdminUseCase
}

func NewAdminController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *AdminController {
	return &AdminController{UC: usecase.NewAdminUseCase(adapter.NewPgAdminRepository(pool), cache, log)}
}

func (h *AdminController) HandleIsAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ok, err := h.UC.IsAdmin(ctx, identityhttp.CallerID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "role lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"admin": ok})
	}
}

func (h *AdminController) HandleStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		stats, err := h.UC.Stats(ctx, identityhttp.CallerID(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func (h *AdminController) HandleProductsPerDay() gin.HandlerFunc {
	return func(c *gin.Context) {
		days := 30
		if v := c.Query("days"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				days = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		points, err := h.UC.ProductsPerDay(ctx, identityhttp.CallerID(c), days)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"days": days, "points": points})
	}
}

func (h *AdminController) HandleProductsByCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		counts, err := h.UC.ProductsByCategory(ctx, identityhttp.CallerID(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}

func (h *AdminController) HandleAllProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		products, err := h.UC.AllProducts(ctx, identityhttp.CallerID(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
	}
}

type featureRequest struct {
	Featured bool `json:"featured"`
}

func (h *AdminController) HandleFeature() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req featureRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.SetFeatured(ctx, identityhttp.CallerID(c), c.Param("productId"), req.Featured); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *AdminController) HandleRemove() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.UC.RemoveProduct(ctx, identityhttp.CallerID(c), c.Param("productId")); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *AdminController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
	case errors.Is(err, adapter.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	}
}
