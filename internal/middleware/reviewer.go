package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

// ReviewerIdentity copies the token subject into the reviewer_id local.
// Requests whose token has no subject continue without one; handlers that
// need a reviewer reject them.
func ReviewerIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if claims, ok := tenant.Claims(c); ok {
			if sub, _ := claims["sub"].(string); strings.TrimSpace(sub) != "" {
				tenant.SetReviewerID(c, sub)
			}
		}
		return c.Next()
	}
}
