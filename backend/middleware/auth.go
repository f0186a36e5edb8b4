package middleware

import (
	"platform/backend/config"
	"platform/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware resolves the caller's identity from the token and stashes
// it in locals. The engine never authenticates anyone itself; it only
// consumes an already-issued identity.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, role, err := utils.IdentityFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("userID", userID)
		c.Locals("role", role)
		return c.Next()
	}
}

// RequireRole guards a route behind one of the allowed roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}
		return utils.Forbidden(c, "Insufficient role")
	}
}

// UserID reads the resolved identity set by AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}
