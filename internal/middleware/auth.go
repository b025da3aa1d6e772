package middleware

import (
	"fmt"

	"github.com/fitassist/fitassist/internal/config"
	"github.com/fitassist/fitassist/internal/services"
	"github.com/fitassist/fitassist/internal/types"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserIDKey is the fiber.Ctx locals key holding the authenticated local
// user id.
const UserIDKey = "userID"

// AuthUser validates the session cookie, resolves (creating on first
// login) the local user row, and stores its id in the request context.
func AuthUser(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Authorizer client is initialized lazily on the first
		// authenticated request, when protocol and host are known.
		if !services.IsAuthorizerInitialized() {
			if err := services.InitAuthorizer(cfg, c.Protocol(), c.Hostname()); err != nil {
				return types.NewCustomError(fiber.StatusServiceUnavailable,
					fmt.Sprintf("Authorizer unavailable: %v", err), "authorization.init")
			}
		}

		session := c.Cookies("cookie_session")
		if session == "" {
			return types.NewCustomError(fiber.StatusForbidden,
				"Authorizer cookie \"cookie_session\" not found", "authorization.user")
		}

		profile, err := services.ValidateSession(session, []string{"user"})
		if err != nil {
			return types.NewCustomError(fiber.StatusForbidden,
				fmt.Sprintf("Invalid session: %v", err), "authorization.user")
		}

		user, err := services.EnsureLocalUser(db, profile)
		if err != nil {
			return types.NewCustomError(fiber.StatusInternalServerError,
				"Failed to resolve user", "authorization.user")
		}

		c.Locals(UserIDKey, user.ID)
		return c.Next()
	}
}

// UserID extracts the authenticated user id set by AuthUser.
func UserID(c *fiber.Ctx) (uint64, error) {
	id, ok := c.Locals(UserIDKey).(uint64)
	if !ok || id == 0 {
		return 0, fmt.Errorf("user not found in context")
	}
	return id, nil
}
