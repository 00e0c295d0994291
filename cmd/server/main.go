package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-agent/internal/action"
	"github.com/andresuchdata/inventory-agent/internal/api"
	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/llm"
	"github.com/andresuchdata/inventory-agent/internal/notify"
	"github.com/andresuchdata/inventory-agent/internal/ratelimit"
	"github.com/andresuchdata/inventory-agent/internal/repository"
	"github.com/andresuchdata/inventory-agent/internal/repository/postgres"
	"github.com/andresuchdata/inventory-agent/internal/service"
	"github.com/andresuchdata/inventory-agent/internal/supply"
	"github.com/andresuchdata/inventory-agent/internal/workflow"
	"github.com/andresuchdata/inventory-agent/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database. The server still serves decisions without one;
	// persistence and the order endpoints are simply disabled.
	var repo repository.OrderRepository
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Database unavailable, order persistence disabled")
	} else {
		defer db.Close()
		repo = postgres.NewOrderRepository(db)
	}

	// Initialize caches, falling back to noop when redis is disabled or
	// unreachable.
	supplyCache := cache.NewNoopSupplyCache()
	dashCache := cache.NewNoopDashboardCache()
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Redis unavailable, caching disabled")
		} else {
			defer redisClient.Close()
			supplyCache = cache.NewRedisSupplyCache(redisClient, cfg.Cache.SupplyTTL)
			dashCache = cache.NewRedisDashboardCache(redisClient, cfg.Cache.DashboardTTL)
		}
	}

	// Assemble the decision pipeline.
	registry := llm.NewRegistry(cfg.LLM)
	client := llm.NewClient(registry, cfg.LLM)
	builder := action.NewBuilder(cfg.LLM.DefaultUnitPrice)
	supplier := supply.NewMockSupplier(cfg.App.DataDir, supplyCache)
	wf := workflow.New(supplier, client, builder, cfg.LLM.ConfidenceThreshold)
	notifier := notify.New(cfg.Notify)
	decisionService := service.NewDecisionService(wf, repo, notifier)

	deps := api.Deps{
		DecisionService: decisionService,
		Repo:            repo,
		DashboardCache:  dashCache,
	}
	if cfg.RateLimit.Enabled {
		triggerLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.TriggerPerMinute)
		defer triggerLimiter.Close()
		batchLimiter := ratelimit.NewMemoryLimiter(cfg.RateLimit.BatchPerMinute)
		defer batchLimiter.Close()
		deps.TriggerLimiter = triggerLimiter
		deps.BatchLimiter = batchLimiter
	}

	router := api.NewRouter(deps, &cfg.Server)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
