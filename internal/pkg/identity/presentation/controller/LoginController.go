package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/application/usecase"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/persistence/repository/adapter"
)

// LoginController handles credential sign-in (one controller per endpoint).
type LoginController struct {
	UC *usecase.LoginUseCase
}

func NewLoginController(pool *pgxpool.Pool) *LoginController {
	return &LoginController{UC: usecase.NewLoginUseCase(adapter.NewPgUserRepository(pool))}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *LoginController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.LoginInput{Email: req.Email, Password: req.Password})
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusOK, out)
	}
}
