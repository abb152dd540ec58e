package middleware

import (
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS for reviewer dashboards. /api/moderation only serves GET and POST.
func CORS(cfg *config.Config) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: fiber.HeaderOrigin + ", " + fiber.HeaderContentType + ", " +
			fiber.HeaderAuthorization + ", " + fiber.HeaderAccept + ", X-App-ID",
		AllowMethods:  fiber.MethodGet + ", " + fiber.MethodPost + ", " + fiber.MethodOptions,
		ExposeHeaders: fiber.HeaderXRequestID + ", X-RateLimit-Remaining, Retry-After",
		MaxAge:        600,
	})
}
