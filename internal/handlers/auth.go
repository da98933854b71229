// Package handlers maps HTTP requests onto service operations and renders
// their results.
package handlers

import (
	"errors"

	"centavo/internal/services/auth"
	"centavo/internal/utils/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	}

	user, err := h.authService.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			return response.Fail(c, fiber.StatusConflict, "EMAIL_TAKEN", "email already registered")
		}
		return response.ServerError(c, "failed to register")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "registration successful",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return response.Fail(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", err.Error())
	}

	user, access, refresh, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return response.Unauthorized(c, "invalid credentials")
	}

	return response.Success(c, "login successful", fiber.Map{
		"user":          user,
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
		return response.BadRequest(c, "refresh_token is required")
	}

	access, refresh, err := h.authService.RefreshTokens(c.Context(), req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "invalid refresh token")
	}

	return response.Success(c, "tokens refreshed", fiber.Map{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return response.Unauthorized(c, "invalid claims")
	}
	if err := h.authService.Logout(c.Context(), claims.UserID); err != nil {
		return response.ServerError(c, "failed to log out")
	}
	return response.Success(c, "logged out", nil)
}
