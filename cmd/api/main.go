package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	v1 "github.com/IsraelChiamovich/second-hand-market/cmd/api/router/v1"
	cacheadapter "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/adapter"
	cacheport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/cache/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/database"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/feed"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/logging"
	queueadapter "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/queue/adapter"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/querycache"
	"github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/realtime"
	storageadapter "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/adapter"
	storageport "github.com/IsraelChiamovich/second-hand-market/internal/infrastructure/storage/port"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/reconcile"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/application/task"
	chatadapter "github.com/IsraelChiamovich/second-hand-market/internal/pkg/chat/persistence/repository/adapter"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/geocode"
	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/notify"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	logger, err := logging.New()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStart()

	pool, err := database.NewPoolFromEnv(startCtx)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	var cache cacheport.Cache
	if redisCache, err := cacheadapter.NewRedisAdapter(); err != nil {
		logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
		cache = cacheadapter.NewMemoryAdapter()
	} else {
		cache = redisCache
	}
	defer cache.Close()

	queryCache := querycache.New()
	events := feed.New(logger)

	listener, err := feed.NewListenerFromEnv(startCtx, events, logger)
	if err != nil {
		logger.Fatal("failed to open change listener", zap.Error(err))
	}

	router := realtime.NewRouter()
	defer router.Close()

	// Secondary egress: message inserts are mirrored onto ably channels for
	// clients that cannot hold a socket to this node.
	publisher, err := realtime.NewAblyPublisherFromEnv()
	if err != nil {
		logger.Info("ably publishing disabled", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Every observed change is offered to the socket rooms; scope matching
	// decides who actually hears about it.
	for _, table := range []string{"messages", "conversations", "offers"} {
		events.Subscribe(feed.Scope{Table: table, Op: feed.OpAny}, func(e feed.Event) {
			router.RouteEvent(e)
			if publisher != nil && e.Table == "messages" && e.Op == feed.OpInsert {
				go publishToAbly(publisher, e, logger)
			}
		})
	}

	reconciler := reconcile.New(events, queryCache, logger)
	reconciler.Start()
	defer reconciler.Stop()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		logger.Fatal("failed to build queue client", zap.Error(err))
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer(logger)
	if err != nil {
		logger.Fatal("failed to build queue server", zap.Error(err))
	}

	dispatcher := notify.NewDispatcher(
		chatadapter.NewPgChatRepository(pool),
		router,
		&notify.RouterNotifier{Router: router},
		logger,
	)
	task.RegisterNotifyMessageTask(queueServer, dispatcher, logger)

	var store storageport.ObjectStore
	if supabase, err := storageadapter.NewSupabaseStoreFromEnv(); err != nil {
		logger.Warn("object storage disabled", zap.Error(err))
	} else {
		store = supabase
	}

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	v1.RegisterRoutes(r, v1.Deps{
		Pool:       pool,
		Cache:      cache,
		QueryCache: queryCache,
		Events:     events,
		Queue:      queueClient,
		Router:     router,
		Reconciler: reconciler,
		Store:      store,
		Geocoder:   geocode.NewClient(),
		Log:        logger,
	})

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + envOr("PORT", "8080")
	srv := &http.Server{Addr: addr, Handler: r}

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return queueServer.Run(gctx)
	})
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited", zap.Error(err))
	}
}

func publishToAbly(publisher *realtime.AblyPublisher, e feed.Event, logger *zap.Logger) {
	convID := e.Field("conversation_id")
	if convID == "" {
		return
	}
	var row map[string]any
	if err := json.Unmarshal(e.Row, &row); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := publisher.PublishMessage(ctx, convID, row); err != nil {
		logger.Debug("ably publish failed", zap.String("conversation_id", convID), zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
