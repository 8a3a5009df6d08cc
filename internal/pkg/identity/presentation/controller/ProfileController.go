package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	identity "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/domain"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/adapter"
	repository "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/port"
)

// ProfileController serves profile reads and updates.
type ProfileController struct {
	Repo repository.UserRepository
}

func NewProfileController(pool *pgxpool.Pool) *ProfileController {
	return &ProfileController{Repo: adapter.NewPgUserRepository(pool)}
}

// HandleGet serves any user's public profile by id.
func (h *ProfileController) HandleGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p, err := h.Repo.GetProfile(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile lookup failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

type updateProfileRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

// HandleUpdate upserts the caller's own profile.
func (h *ProfileController) HandleUpdate(callerID func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		p := identity.Profile{
			UserID:    callerID(c),
			FullName:  req.FullName,
			Phone:     req.Phone,
			AvatarURL: req.AvatarURL,
		}
		if err := h.Repo.UpsertProfile(ctx, p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
