// Package api assembles the gin router and its middleware chain.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/inventory-agent/internal/api/handlers"
	"github.com/andresuchdata/inventory-agent/internal/api/middleware"
	"github.com/andresuchdata/inventory-agent/internal/cache"
	"github.com/andresuchdata/inventory-agent/internal/config"
	"github.com/andresuchdata/inventory-agent/internal/ratelimit"
	"github.com/andresuchdata/inventory-agent/internal/repository"
	"github.com/andresuchdata/inventory-agent/internal/service"
)

// Deps carries the collaborators the router serves. Repo may be nil when
// the server runs without a database; the order endpoints are then not
// mounted.
type Deps struct {
	DecisionService *service.DecisionService
	Repo            repository.OrderRepository
	DashboardCache  cache.DashboardCache
	TriggerLimiter  ratelimit.Limiter
	BatchLimiter    ratelimit.Limiter
}

// NewRouter builds the HTTP surface.
func NewRouter(deps Deps, cfg *config.ServerConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.APIKey(cfg.APIKey))

	triggerLimiter := deps.TriggerLimiter
	if triggerLimiter == nil {
		triggerLimiter = ratelimit.NewNoopLimiter()
	}
	batchLimiter := deps.BatchLimiter
	if batchLimiter == nil {
		batchLimiter = ratelimit.NewNoopLimiter()
	}

	inventoryHandler := handlers.NewInventoryHandler(deps.DecisionService)
	apiGroup.POST("/inventory-trigger", middleware.RateLimit(triggerLimiter, "trigger"), inventoryHandler.Trigger)
	apiGroup.POST("/inventory-trigger-batch", middleware.RateLimit(batchLimiter, "batch"), inventoryHandler.TriggerBatch)
	apiGroup.GET("/debug/:product_id", inventoryHandler.Debug)

	if deps.Repo != nil {
		orderHandler := handlers.NewOrderHandler(deps.Repo, deps.DashboardCache)
		ordersGroup := apiGroup.Group("/orders")
		{
			ordersGroup.GET("", orderHandler.List)
			ordersGroup.GET("/:order_id", orderHandler.Get)
			ordersGroup.POST("/:order_id/approve", orderHandler.Approve)
			ordersGroup.POST("/:order_id/reject", orderHandler.Reject)
		}
		apiGroup.GET("/dashboard/stats", orderHandler.DashboardStats)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
