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
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	product "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/domain"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/adapter"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/persistence/repository/port"
)

// ProductController serves the listing endpoints.
type ProductController struct {
	listUC   *usecase.ListProductsUseCase
	manageUC *usecase.ManageProductUseCase
	countsUC *usecase.CategoryCountsUseCase
}

func NewProductController(pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) *ProductController {
	repo := adapter.NewPgProductRepository(pool)
	return &ProductController{
		listUC:   usecase.NewListProductsUseCase(repo),
		manageUC: usecase.NewManageProductUseCase(repo),
		countsUC: usecase.NewCategoryCountsUseCase(repo, cache, log),
	}
}

func (h *ProductController) HandleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		f := product.Filter{
			Keyword:  c.Query("q"),
			Category: product.Category(c.Query("category")),
			Location: c.Query("location"),
		}
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				f.Limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				f.Offset = n
			}
		}
		if f.Category != "" && !f.Category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		listings, err := h.listUC.Execute(ctx, f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": listings, "count": len(listings)})
	}
}

func (h *ProductController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p, err := h.manageUC.Get(ctx, c.Param("productId"))
		if errors.Is(err, repository.ErrNotFound) || (err == nil && p.Status == product.StatusDeleted) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "product lookup failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func (h *ProductController) HandleMine() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		listings, err := h.manageUC.Mine(ctx, identityhttp.CallerID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "listing lookup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": listings, "count": len(listings)})
	}
}

func (h *ProductController) HandleCategoryCounts() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		counts, err := h.countsUC.Execute(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "category counts failed"})
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}

type productRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category" binding:"required"`
	Location    string   `json:"location"`
	Images      []string `json:"images"`
}

func (h *ProductController) HandleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		created, err := h.manageUC.Create(ctx, product.Product{
			SellerID:    identityhttp.CallerID(c),
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Category:    product.Category(req.Category),
			Location:    req.Location,
			Images:      req.Images,
		})
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (h *ProductController) HandleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req productRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		updated, err := h.manageUC.Update(ctx, identityhttp.CallerID(c), product.Product{
			ID:          c.Param("productId"),
			Title:       req.Title,
			Description: req.Description,
			Price:       req.Price,
			Category:    product.Category(req.Category),
			Location:    req.Location,
			Images:      req.Images,
		})
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func (h *ProductController) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.manageUC.Delete(ctx, identityhttp.CallerID(c), c.Param("productId")); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *ProductController) HandleMarkSold() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := h.manageUC.MarkSold(ctx, identityhttp.CallerID(c), c.Param("productId")); err != nil {
			h.writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func (h *ProductController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
	case errors.Is(err, product.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "not your listing"})
	case errors.Is(err, product.ErrInvalidListing):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing"})
	case errors.Is(err, usecase.ErrPersistence):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
