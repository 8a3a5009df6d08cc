package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/controller"
)

// RegisterRoutes registers account and profile endpoints under the given
// router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	registerCtl := controller.NewRegisterController(pool)
	loginCtl := controller.NewLoginController(pool)
	profileCtl := controller.NewProfileController(pool)

	g.POST("/auth/register", registerCtl.Handle())
	g.POST("/auth/login", loginCtl.Handle())

	g.GET("/profiles/:userId", profileCtl.HandleGet())
	g.PUT("/profiles/me", AuthRequired(), profileCtl.HandleUpdate(CallerID))
}
