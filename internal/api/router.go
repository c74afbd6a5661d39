package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/api/handlers"
	"github.com/jafarshop/configurator/internal/api/middleware"
	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/metrics"
	"github.com/jafarshop/configurator/internal/repository"
	"github.com/jafarshop/configurator/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	pricingService *service.PricingService,
	m *metrics.Metrics,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger, m))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Pricing is side-effect free and open to the storefront
		v1.GET("/catalog", handlers.HandleGetCatalog(pricingService.Catalog()))
		v1.POST("/quotes", handlers.HandleQuote(pricingService))
		v1.POST("/quotes/multi", handlers.HandleQuoteOrder(pricingService, logger))

		// Shop routes (require authentication)
		shopRoutes := v1.Group("")
		shopRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			shopRoutes.POST("/variants", handlers.HandleProvisionVariant(pricingService, logger))
		}

		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			adminRoutes.GET("/provisioning", handlers.HandleListProvisioningEvents(repos, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(method, route, status, elapsed)

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", elapsed),
		)
	}
}
