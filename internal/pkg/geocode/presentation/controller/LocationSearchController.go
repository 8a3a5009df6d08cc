package controller

import (
	"context"
	"errors"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode"
)

// LocationSearchController serves one-shot address lookups.
type LocationSearchController struct {
	Client geocode.Searcher
}

func NewLocationSearchController(client geocode.Searcher) *LocationSearchController {
	return &LocationSearchController{Client: client}
}

func (h *LocationSearchController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if utf8.RuneCountInString(query) < geocode.MinQueryLen {
			c.JSON(http.StatusOK, gin.H{"results": []geocode.Result{}})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		results, err := h.Client.Search(ctx, query)
		if err != nil {
			if errors.Is(err, geocode.ErrUnavailable) {
				c.JSON(http.StatusBadGateway, gin.H{"error": "location service unavailable"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "location search failed"})
			return
		}
		if results == nil {
			results = []geocode.Result{}
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}
