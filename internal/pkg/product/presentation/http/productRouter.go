package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	storage "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/presentation/controller"
)

// RegisterRoutes registers listing, favorite, offer and image endpoints
// under the given router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache,
	qc *querycache.Cache, events *feed.Feed, store storage.ObjectStore, log *zap.Logger) {

	productCtl := controller.NewProductController(pool, cache, log)
	favoriteCtl := controller.NewFavoriteController(pool)
	offerCtl := controller.NewOfferController(pool, qc, events)

	g.GET("/products", productCtl.HandleList())
	g.GET("/products/categories", productCtl.HandleCategoryCounts())
	g.GET("/products/:productId", productCtl.HandleGet())

	auth := g.Group("", identityhttp.AuthRequired())
	auth.GET("/my-products", productCtl.HandleMine())
	auth.POST("/products", productCtl.HandleCreate())
	auth.PUT("/products/:productId", productCtl.HandleUpdate())
	auth.DELETE("/products/:productId", productCtl.HandleDelete())
	auth.POST("/products/:productId/sold", productCtl.HandleMarkSold())

	auth.GET("/favorites", favoriteCtl.HandleList())
	auth.GET("/favorites/:productId", favoriteCtl.HandleStatus())
	auth.POST("/favorites/:productId/toggle", favoriteCtl.HandleToggle())

	auth.POST("/offers", offerCtl.HandleCreate())
	auth.GET("/offers", offerCtl.HandleListMine())
	auth.GET("/products/:productId/offers", offerCtl.HandleListByProduct())
	auth.PUT("/offers/:offerId", offerCtl.HandleDecide())

	if store != nil {
		imageCtl := controller.NewImageController(store)
		auth.POST("/images", imageCtl.HandleUpload())
		auth.DELETE("/images", imageCtl.HandleDelete())
	}
}
