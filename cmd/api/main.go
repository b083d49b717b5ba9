package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	v1 "go-roomcast/cmd/api/router/v1"
	bridgeadapter "go-roomcast/internal/infrastructure/bridge/adapter"
	bridgeport "go-roomcast/internal/infrastructure/bridge/port"
	cacheadapter "go-roomcast/internal/infrastructure/cache/adapter"
	cacheport "go-roomcast/internal/infrastructure/cache/port"
	"go-roomcast/internal/infrastructure/database"
	queueadapter "go-roomcast/internal/infrastructure/queue/adapter"
	"go-roomcast/internal/infrastructure/realtime"
	"go-roomcast/internal/pkg/presence/application/gateway"
	"go-roomcast/internal/pkg/presence/application/task"
	"go-roomcast/internal/pkg/presence/application/usecase"
	"go-roomcast/internal/pkg/presence/persistence/repository/adapter"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env file not found or could not be loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	pool, err := database.NewPoolFromEnv(connectCtx)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// One long-lived bridge connection per process, torn down at shutdown.
	var bus bridgeport.Bus
	bridgeURL := os.Getenv("BRIDGE_URL")
	if bridgeURL == "" {
		bridgeURL = os.Getenv("REDIS_URL")
	}
	if bridgeURL != "" {
		redisBus, err := bridgeadapter.NewRedisBus(bridgeURL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect bridge")
		}
		defer redisBus.Close()
		bus = redisBus
	} else {
		log.Warn().Msg("no bridge configured, running single-instance with in-memory bus")
		bus = bridgeadapter.NewMemoryBus()
	}

	var cache cacheport.Cache
	if redisCache, err := cacheadapter.NewRedisAdapter(); err == nil {
		defer redisCache.Close()
		cache = redisCache
	} else {
		log.Warn().Err(err).Msg("room cache disabled")
	}

	atomic := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return database.WithinTx(ctx, pool, fn)
	}

	presenceRepo := adapter.NewPgPresenceRepository(pool)
	ledgerRepo := adapter.NewPgNotificationRepository(pool)
	registry := realtime.NewRegistry()

	gw := gateway.New(
		registry,
		bus,
		usecase.NewJoinRoomUseCase(presenceRepo, cache, atomic),
		usecase.NewLeaveRoomUseCase(presenceRepo, atomic),
		usecase.NewSendNotificationUseCase(presenceRepo, ledgerRepo),
		usecase.NewMarkAsReadUseCase(ledgerRepo),
		log,
	)
	gw.Start()

	queueClient, err := queueadapter.NewAsynqClientFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue client")
	}
	defer queueClient.Close()

	queueServer, err := queueadapter.NewAsynqServer(log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create queue server")
	}
	task.RegisterSendNotificationTask(queueServer, gw)
	go func() {
		if err := queueServer.Run(ctx); err != nil {
			log.Error().Err(err).Msg("queue server stopped")
		}
	}()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		bridge := "connected"
		if gw.Degraded() {
			bridge = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "bridge": bridge})
	})

	v1.RegisterRoutes(r, pool, queueClient, registry, gw)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("port", port).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
