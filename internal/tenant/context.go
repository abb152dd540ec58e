package tenant

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	localAppID      = "app_id"
	localReviewerID = "reviewer_id"
)

// GetAppID extracts the app_id from Fiber context locals.
func GetAppID(c *fiber.Ctx) string {
	if appID, ok := c.Locals(localAppID).(string); ok {
		return appID
	}
	return ""
}

func SetAppID(c *fiber.Ctx, appID string) {
	c.Locals(localAppID, appID)
}

// GetReviewerID returns the authenticated caller's id, or "" when the
// request carries no usable identity.
func GetReviewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(localReviewerID).(string); ok {
		return id
	}
	return ""
}

func SetReviewerID(c *fiber.Ctx, id string) {
	c.Locals(localReviewerID, id)
}

// Claims returns the verified JWT claims the auth middleware stored.
func Claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	return claims, ok
}
