package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/presentation/controller"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
)

// RegisterRoutes registers the moderation endpoints under the given router
// group. Every endpoint requires authentication; role checks happen in the
// use case so the 403 carries the caller's actual standing.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, log *zap.Logger) {
	ctl := controller.NewAdminController(pool, cache, log)

	admin := g.Group("/admin", identityhttp.AuthRequired())
	admin.GET("/me", ctl.HandleIsAdmin())
	admin.GET("/stats", ctl.HandleStats())
	admin.GET("/products-per-day", ctl.HandleProductsPerDay())
	admin.GET("/products-by-category", ctl.HandleProductsByCategory())
	admin.GET("/products", ctl.HandleAllProducts())
	admin.PUT("/products/:productId/feature", ctl.HandleFeature())
	admin.DELETE("/products/:productId", ctl.HandleRemove())
}
