package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/config"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/database"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/logging"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/repository"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/routes"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/services"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	stdoutHandler := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// App registry (optional)
	registry, err := tenant.LoadOptional(cfg.AppsConfigPath)
	if err != nil {
		slog.Error("failed to load app registry", "path", cfg.AppsConfigPath, "error", err)
		os.Exit(1)
	}
	slog.Info("app registry loaded", "apps", registry.Len(), "default_app_id", cfg.DefaultAppID)

	// Lexicon
	lexicon, err := detectors.LoadLexicon(cfg.LexiconPath)
	if err != nil {
		slog.Error("failed to load lexicon", "path", cfg.LexiconPath, "error", err)
		os.Exit(1)
	}
	detectorSet, err := detectors.NewSet(lexicon)
	if err != nil {
		slog.Error("failed to build detectors", "error", err)
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdoutHandler, pgLogHandler)))

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Services
	st := repository.New(database.DB)
	settingsService := services.NewSettingsService(st, cfg.FlagThreshold, nil)
	moderationService := services.NewModerationService(st, detectorSet, settingsService, services.Options{
		BulkWorkers:     cfg.BulkWorkers,
		MaxBulkItems:    cfg.BulkMaxItems,
		DetectorTimeout: cfg.DetectorTimeout,
	})

	// Retention: system logs and closed queue entries
	retentionDone := make(chan struct{})
	logging.StartRetention(cfg.CleanupInterval, retentionDone,
		logging.PurgeSystemLogs(database.DB),
		logging.RetentionJob{
			Name: "moderation_queue",
			Run: func(ctx context.Context) (int64, error) {
				return moderationService.CleanupOldQueueItems(ctx, "", cfg.QueueRetentionDays)
			},
		},
	)

	// Handlers
	healthHandler := handlers.NewHealthHandler(database.DB, registry)
	moderationHandler := handlers.NewModerationHandler(moderationService)

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	// Routes
	routes.Setup(app, cfg, registry, healthHandler, moderationHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(retentionDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
