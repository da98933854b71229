// Package routes wires repositories, services and handlers into the fiber
// app and declares the API surface.
package routes

import (
	"time"

	"centavo/internal/config"
	"centavo/internal/handlers"
	"centavo/internal/middleware"
	"centavo/internal/repositories"
	"centavo/internal/repositories/cache"
	"centavo/internal/services/auth"
	"centavo/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRoutes builds the dependency graph and registers every route.
func SetupRoutes(app *fiber.App, db *gorm.DB, balanceCache *cache.BalanceCache, cfg *config.Config, log *zap.Logger) {
	accountStore := repositories.NewAccountStore(db)
	userRepo := repositories.NewUserRepository(db)

	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.RefreshSecret)

	// A typed nil must not reach the engine as a non-nil interface.
	var bc ledger.BalanceCache
	if balanceCache != nil {
		bc = balanceCache
	}
	ledgerService := ledger.NewService(accountStore, bc, nil, log)

	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(ledgerService, accountStore)
	healthHandler := handlers.NewHealthHandler(db, balanceCache)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")

	// Credential endpoints are rate limited per client IP.
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "RATE_LIMITED",
				"message": "too many requests, try again later",
			})
		},
	})

	api.Post("/register", authLimiter, authHandler.Register)
	api.Post("/login", authLimiter, authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)

	authMiddleware := middleware.NewAuthMiddleware(authService, cfg.JWTSecret)
	protected := api.Use(authMiddleware.Handler)

	protected.Post("/logout", authHandler.Logout)

	wallet := protected.Group("/wallet")
	wallet.Post("/deposit", walletHandler.Deposit)
	wallet.Post("/transfer", walletHandler.Transfer)
	wallet.Post("/reverse/:id", walletHandler.Reverse)
	wallet.Get("/balance", walletHandler.Balance)
	wallet.Get("/transactions", walletHandler.Transactions)
}
