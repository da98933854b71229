// Package main is the entry point for the wallet API server. It loads
// configuration, connects PostgreSQL and Redis, wires the routes and starts
// the HTTP listener.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"centavo/internal/config"
	"centavo/internal/repositories"
	"centavo/internal/repositories/cache"
	"centavo/internal/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zapLog, err := buildLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLog.Sync()

	db, err := repositories.OpenDB(cfg, zapLog)
	if err != nil {
		zapLog.Fatal("database init failed", zap.Error(err))
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	balanceCache := cache.NewBalanceCache(cache.NewRedisClient(cfg))
	defer balanceCache.Close()
	if err := balanceCache.HealthCheck(context.Background()); err != nil {
		zapLog.Warn("redis unreachable, starting without balance cache", zap.Error(err))
		balanceCache = nil
	}

	app := fiber.New(fiber.Config{
		AppName: "centavo",
	})
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, db, balanceCache, cfg, zapLog)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zapLog.Fatal("server stopped", zap.Error(err))
		}
	}()
	zapLog.Info("server listening", zap.String("port", cfg.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		zapLog.Error("shutdown failed", zap.Error(err))
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
