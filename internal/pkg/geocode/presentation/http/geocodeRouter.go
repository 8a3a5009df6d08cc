package http

import (
	"github.com/gin-gonic/gin"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode/presentation/controller"
)

// RegisterRoutes registers the address lookup endpoints under the given
// router group.
func RegisterRoutes(g *gin.RouterGroup, client geocode.Searcher) {
	searchCtl := controller.NewLocationSearchController(client)
	socketCtl := controller.NewLocationSocketController(client)

	g.GET("/locations", searchCtl.Handle())
	g.GET("/locations/ws", socketCtl.Handle())
}
