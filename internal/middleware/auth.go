// Package middleware provides HTTP middleware for the fiber app.
package middleware

import (
	"strings"

	"centavo/internal/services/auth"
	"centavo/internal/utils"
	"centavo/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates bearer tokens and stores the claims in the
// request context for handlers.
type AuthMiddleware struct {
	authService auth.Service
	jwtSecret   string
}

func NewAuthMiddleware(authService auth.Service, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, jwtSecret: jwtSecret}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "missing or malformed authorization header")
	}

	claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer "), m.jwtSecret)
	if err != nil {
		return response.Unauthorized(c, "invalid token")
	}

	// A bumped token version (logout, password change) kills old tokens.
	version, err := m.authService.GetUserTokenVersion(c.Context(), claims.UserID)
	if err != nil || claims.TokenVersion != version {
		return response.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	return c.Next()
}
