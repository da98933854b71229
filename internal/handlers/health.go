package handlers

import (
	"centavo/internal/repositories/cache"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	cache *cache.BalanceCache
}

func NewHealthHandler(db *gorm.DB, c *cache.BalanceCache) *HealthHandler {
	return &HealthHandler{db: db, cache: c}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
	}
	if h.cache != nil && h.cache.HealthCheck(c.Context()) != nil {
		status["status"] = "degraded"
		status["cache"] = "unreachable"
	}

	if status["status"] != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return c.JSON(status)
}
