// Package response standardizes JSON response envelopes.
package response

import "github.com/gofiber/fiber/v2"

func Success(c *fiber.Ctx, message string, data fiber.Map) error {
	body := fiber.Map{"message": message}
	for k, v := range data {
		body[k] = v
	}
	return c.JSON(body)
}

// Fail writes a stable error code and a human-readable message.
func Fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, "BAD_REQUEST", message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusInternalServerError, "INTERNAL", message)
}
