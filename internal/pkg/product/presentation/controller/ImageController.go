package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	storage "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/application/usecase"
)

// ImageController serves listing photo upload and removal.
type ImageController struct {
	UC *usecase.ProductImagesUseCase
}

func NewImageController(store storage.ObjectStore) *ImageController {
	return &ImageController{UC: usecase.NewProductImagesUseCase(store)}
}

func (h *ImageController) HandleUpload() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		url, err := h.UC.Upload(ctx, identityhttp.CallerID(c), header.Filename,
			header.Header.Get("Content-Type"), data)
		if err != nil {
			if errors.Is(err, usecase.ErrImageTooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds size limit"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image upload failed"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"url": url})
	}
}

type deleteImageRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *ImageController) HandleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req deleteImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()

		if err := h.UC.Delete(ctx, req.URL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "image removal failed"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
