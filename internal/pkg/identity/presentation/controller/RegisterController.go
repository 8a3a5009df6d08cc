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

// RegisterController handles account creation (one controller per endpoint).
type RegisterController struct {
	UC *usecase.RegisterUseCase
}

func NewRegisterController(pool *pgxpool.Pool) *RegisterController {
	return &RegisterController{UC: usecase.NewRegisterUseCase(adapter.NewPgUserRepository(pool))}
}

type registerRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

func (h *RegisterController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		out, err := h.UC.Execute(ctx, usecase.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			Phone:    req.Phone,
		})
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrEmailTaken):
				c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			case errors.Is(err, usecase.ErrInvalidCredentials):
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email or password"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
			}
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}
