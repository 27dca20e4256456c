package middleware

import (
	"strings"

	"edge/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// Protected requires a valid Bearer access token and exposes the caller's
// identity via locals. Refresh tokens are rejected here.
func Protected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "Missing token",
			})
		}

		claims, err := token.Parse(auth[7:], secret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "Invalid or expired token",
			})
		}
		if tokenType, _ := claims["token_type"].(string); tokenType != "access" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false, "message": "Invalid or expired token",
			})
		}

		userUUID, _ := claims["sub"].(string)
		username, _ := claims["username"].(string)
		userID := 0
		if id, ok := claims["user_id"].(float64); ok {
			userID = int(id)
		}

		c.Locals("user_id", userID)
		c.Locals("user_uuid", userUUID)
		c.Locals("username", username)

		return c.Next()
	}
}
