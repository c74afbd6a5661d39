package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/configurator/internal/api"
	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/config"
	"github.com/jafarshop/configurator/internal/guard"
	"github.com/jafarshop/configurator/internal/logger"
	"github.com/jafarshop/configurator/internal/metrics"
	"github.com/jafarshop/configurator/internal/repository/postgres"
	"github.com/jafarshop/configurator/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.Environment, cfg.LogLevel, cfg.LogFormat)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting configurator",
		zap.String("env", cfg.Environment),
		zap.String("port", cfg.Port),
		zap.String("shop", cfg.Shopify.ShopDomain),
	)

	// Pricing catalog is read once and immutable for the process lifetime
	cat, err := catalog.Load(cfg.Pricing.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load pricing catalog", zap.Error(err))
	}
	log.Info("Pricing catalog loaded",
		zap.String("path", cat.Path()),
		zap.Int("shapes", len(cat.Shapes)),
		zap.Int("pieces", len(cat.Pieces)),
	)

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	repos := postgres.NewRepositories(db, log)

	// In-flight guard: Redis when configured so every instance shares it
	var inflight guard.Guard = guard.NewInMemoryGuard()
	if cfg.Redis.Addr != "" {
		redisGuard, err := guard.NewRedisGuard(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisGuard.Close()
		inflight = redisGuard
		log.Info("Using Redis in-flight guard", zap.String("addr", cfg.Redis.Addr))
	}

	m := metrics.New()
	shopifyService := service.NewShopifyService(cfg.Shopify, log)
	confirmer := service.NewPriceConfirmer(shopifyService, cfg.Confirmation, m, log)
	pricingService := service.NewPricingService(cat, confirmer, inflight, repos.ProvisioningEvent, cfg.Confirmation, m, log)

	router := api.NewRouter(cfg, repos, pricingService, m, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Provisioning holds the request open for the whole confirmation
		WriteTimeout: time.Duration(cfg.Confirmation.MaxAttempts)*cfg.Confirmation.PollInterval +
			cfg.Confirmation.SettleDelay + 30*time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}
