package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mfs-service/internal/adapters/http/middleware"
	"mfs-service/internal/adapters/http/routes"
	"mfs-service/internal/config"
	"mfs-service/internal/core/services"
	"mfs-service/internal/pkg/logger"
	"mfs-service/internal/pkg/metrics"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	_ "mfs-service/docs" // Swagger docs
)

// @title MFS API
// @version 1.0
// @description Mobile financial service account and activation API

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.AppMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	if err := run(cfg, zlog); err != nil {
		zlog.Error("Server exited with error", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
	_ = zlog.Sync()
}

// run opens the store, starts jobs and serves until the listener stops
func run(cfg *config.Config, zlog *zap.Logger) error {
	m := metrics.New()

	// Connect to the user store
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	userRepo, err := config.OpenUserStore(ctx, cfg, zlog)
	cancel()
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := userRepo.Close(closeCtx); err != nil {
			zlog.Error("Error closing user store", zap.Error(err))
		}
	}()

	// Seed the bootstrap administrator
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.NewSeeder(userRepo, cfg, zlog).Run(seedCtx); err != nil {
		zlog.Warn("Admin seeding failed", zap.Error(err))
	}
	seedCancel()

	// Start cron jobs
	cronService := services.NewCronService(userRepo, cfg.Cron.PendingDigest, m, zlog)
	if err := cronService.Start(); err != nil {
		return fmt.Errorf("start cron service: %w", err)
	}
	defer cronService.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "MFS API v1.0",
		ErrorHandler: middleware.NewErrorHandler(zlog),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, userRepo, cfg, m, zlog)

	// Graceful shutdown
	go gracefulShutdown(app, zlog)

	// Start server
	zlog.Info("Server starting", zap.String("port", cfg.Port), zap.String("mode", cfg.AppMode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, zlog *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Error during shutdown", zap.Error(err))
	}
	zlog.Info("Server stopped gracefully")
}
