package middleware

import (
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// TenantMiddleware resolves the tenant from the JWT app_id claim, then the
// X-App-ID header, then falls back to defaultAppID.
func TenantMiddleware(registry *tenant.Registry, defaultAppID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1. JWT claim (already authenticated)
		if claims, ok := tenant.Claims(c); ok {
			if appID, ok := claims["app_id"].(string); ok && appID != "" {
				tenant.SetAppID(c, appID)
				return c.Next()
			}
		}

		// 2. X-App-ID header
		if appID := c.Get("X-App-ID"); appID != "" {
			if !registry.Allows(appID) {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
					Error: "Invalid X-App-ID: " + appID,
				})
			}
			tenant.SetAppID(c, appID)
			return c.Next()
		}

		tenant.SetAppID(c, defaultAppID)
		return c.Next()
	}
}
