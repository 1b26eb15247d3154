package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/valorin/storefront-backend/config"
	"github.com/valorin/storefront-backend/internal/app/controller"
	"github.com/valorin/storefront-backend/internal/app/service"
	"github.com/valorin/storefront-backend/internal/app/store"
	"github.com/valorin/storefront-backend/internal/persistence"
	"github.com/valorin/storefront-backend/internal/router"
	"github.com/valorin/storefront-backend/internal/scheduler"
	"github.com/valorin/storefront-backend/internal/ws"
	"github.com/valorin/storefront-backend/pkg/logger"
	"github.com/valorin/storefront-backend/pkg/shopify"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Storefront Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"store":       cfg.Shopify.StoreDomain,
	})

	// Initialize the storefront gateway
	gateway, err := shopify.NewClient(cfg.Shopify)
	if err != nil {
		logger.Fatal("Failed to initialize storefront client", err)
	}

	// Initialize persistence
	redisStore, err := persistence.NewRedisStore(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", err)
	}
	defer func() {
		if err := redisStore.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	// Initialize stores and restore persisted state
	cartStore := store.NewCartStore(gateway, redisStore)
	wishlistStore := store.NewWishlistStore(redisStore)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRestore()
	if err := cartStore.Restore(restoreCtx); err != nil {
		logger.Fatal("Failed to restore cart state", err)
	}
	if err := wishlistStore.Restore(restoreCtx); err != nil {
		logger.Fatal("Failed to restore wishlist state", err)
	}

	// Initialize WebSocket hub and subscribe it to store updates
	hub := ws.NewHub()
	go hub.Run()
	cartStore.Subscribe(hub)
	wishlistStore.Subscribe(hub)

	// Initialize services
	catalogService := service.NewCatalogService(gateway)

	// Initialize controllers
	cartController := controller.NewCartController(cartStore)
	wishlistController := controller.NewWishlistController(wishlistStore)
	catalogController := controller.NewCatalogController(catalogService)

	// Start the periodic cart sync scheduler
	var syncScheduler *scheduler.CartSyncScheduler
	if cfg.Sync.Enabled {
		syncScheduler = scheduler.NewCartSyncScheduler(cartStore, cfg.Sync.CronSpec)
		if err := syncScheduler.Start(); err != nil {
			logger.Fatal("Failed to start cart sync scheduler", err)
		}
	}

	// Setup router
	r := router.NewRouter(
		cartController,
		wishlistController,
		catalogController,
		hub,
		cartStore,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	if syncScheduler != nil {
		syncScheduler.Stop()
	}
	logger.Info("Server stopped successfully")
}
