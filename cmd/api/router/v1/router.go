package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	qport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/realtime"
	storage "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
	adminhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/admin/presentation/http"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/reconcile"
	chathttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/presentation/http"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode"
	geocodehttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode/presentation/http"
	identityhttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/presentation/http"
	producthttp "github.com/IsraelChiamovich/second-hand-market/internal/pkg/product/presentation/http"
)

// Deps carries everything the v1 surface needs.
type Deps struct {
	Pool       *pgxpool.Pool
	Cache      cacheport.Cache
	QueryCache *querycache.Cache
	Events     *feed.Feed
	Queue      qport.Client
	Router     *realtime.Router
	Reconciler *reconcile.Reconciler
	Store      storage.ObjectStore
	Geocoder   geocode.Searcher
	Log        *zap.Logger
}

// RegisterRoutes mounts all version 1 API routes under /api/v1.
func RegisterRoutes(r *gin.Engine, d Deps) {
	v1 := r.Group("/api/v1")

	identityhttp.RegisterRoutes(v1, d.Pool)
	producthttp.RegisterRoutes(v1, d.Pool, d.Cache, d.QueryCache, d.Events, d.Store, d.Log)
	chathttp.RegisterRoutes(v1, d.Pool, d.QueryCache, d.Events, d.Queue, d.Router, d.Reconciler, d.Log)
	adminhttp.RegisterRoutes(v1, d.Pool, d.Cache, d.Log)
	geocodehttp.RegisterRoutes(v1, d.Geocoder)
}
