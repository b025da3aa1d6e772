package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// CurrentAPIVersion is the version served by this deployment.
const CurrentAPIVersion = "1.0.0"

// VersionMiddleware resolves the client's requested X-Api-Version header,
// stores it in the request context, and echoes the served version back.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requested := c.Get("X-Api-Version", CurrentAPIVersion)

		// Major.minor shorthand maps to the full version
		if requested == "1.0" {
			requested = CurrentAPIVersion
		}
		c.Locals("apiVersion", requested)

		c.Set("X-Api-Version", CurrentAPIVersion)
		return c.Next()
	}
}
