package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	registry *tenant.Registry,
	healthHandler *handlers.HealthHandler,
	moderationHandler *handlers.ModerationHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Health (no auth, no tenant)
	api.Get("/health", healthHandler.Check)

	// Moderation (JWT required; tenant from claim, header or default)
	moderation := api.Group("/moderation",
		middleware.JWTProtected(cfg),
		middleware.ReviewerIdentity(),
		middleware.TenantMiddleware(registry, cfg.DefaultAppID),
	)
	moderation.Get("", moderationHandler.Query)
	moderation.Post("", moderationHandler.Command)
}
