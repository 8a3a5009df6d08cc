package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/adapter"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// OfferController serves the offer endpoints.
type OfferController struct {
	UC *usecase.OffersUseCase
}

func NewOfferController(pool *pgxpool.Pool, cache *querycache.Cache, events *feed.Feed) *OfferController {
	repo := adapter.NewPgProductRepository(pool)
	return &OfferController{UC: usecase.NewOffersUseCase(repo, repo, cache, events)}
}

type createOfferRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
	Message   string  `json:"message"`
}

func (h *OfferController) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		offer, err := h.UC.Create(ctx, usecase.CreateOfferInput{
			ProductID: req.ProductID,
			BuyerID:   identityhttp.CallerID(c),
			Amount:    req.Amount,
			Message:   req.Message,
		})
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, offer)
	}
}

func (h *OfferController) HandleListByProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		offers, err := h.UC.ListByProduct(ctx, identityhttp.CallerID(c), c.Param("productId"))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
	}
}

func (h *OfferController) HandleListMine() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		offers, err := h.UC.ListForViewer(ctx, identityhttp.CallerID(c))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offers": offers, "count": len(offers)})
	}
}

type decideOfferRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *OfferController) HandleDecide() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req decideOfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Decide(ctx, identityhttp.CallerID(c), c.Param("offerId"), product.OfferStatus(req.Status))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *OfferController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, product.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
	case errors.Is(err, product.ErrSelfOffer):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot offer on your own listing"})
	case errors.Is(err, product.ErrOfferDecided):
		c.JSON(http.StatusConflict, gin.H{"error": "offer already decided"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
