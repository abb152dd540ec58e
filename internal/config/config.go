package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	// JWT (shared across all apps)
	JWTSecret string

	// Moderation
	LexiconPath        string
	FlagThreshold      float64
	DetectorTimeout    time.Duration
	BulkWorkers        int
	BulkMaxItems       int
	QueueRetentionDays int
	CleanupInterval    time.Duration

	// Observability
	LogLevel  string
	SentryDSN string
	AppEnv    string

	// Server
	Port        string
	CORSOrigins string

	// App registry
	AppsConfigPath string
	DefaultAppID   string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "moderation"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "moderation.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		LexiconPath:        getEnv("LEXICON_PATH", ""),
		FlagThreshold:      parseFloat(getEnv("FLAG_THRESHOLD", "0.7"), 0.7),
		DetectorTimeout:    parseDuration(getEnv("DETECTOR_TIMEOUT", "250ms"), 250*time.Millisecond),
		BulkWorkers:        parseInt(getEnv("BULK_WORKERS", "4"), 4),
		BulkMaxItems:       parseInt(getEnv("BULK_MAX_ITEMS", "500"), 500),
		QueueRetentionDays: parseInt(getEnv("QUEUE_RETENTION_DAYS", "30"), 30),
		CleanupInterval:    parseDuration(getEnv("CLEANUP_INTERVAL", "24h"), 24*time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		SentryDSN: getEnv("SENTRY_DSN", ""),
		AppEnv:    getEnv("APP_ENV", "development"),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		AppsConfigPath: getEnv("APPS_CONFIG_PATH", "apps.json"),
		DefaultAppID:   getEnv("DEFAULT_APP_ID", "default"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			errs = append(errs, errors.New("DB_PASSWORD is required for postgres"))
		}
	case "sqlite":
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.FlagThreshold <= 0 || c.FlagThreshold > 1 {
		errs = append(errs, fmt.Errorf("FLAG_THRESHOLD must be within (0,1], got %v", c.FlagThreshold))
	}
	if c.DetectorTimeout <= 0 {
		errs = append(errs, errors.New("DETECTOR_TIMEOUT must be positive"))
	}
	if c.BulkWorkers < 1 {
		errs = append(errs, errors.New("BULK_WORKERS must be at least 1"))
	}
	if c.BulkMaxItems < 1 {
		errs = append(errs, errors.New("BULK_MAX_ITEMS must be at least 1"))
	}
	if c.QueueRetentionDays < 0 {
		errs = append(errs, errors.New("QUEUE_RETENTION_DAYS must not be negative"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("CLEANUP_INTERVAL must be positive"))
	}
	if c.DefaultAppID == "" {
		errs = append(errs, errors.New("DEFAULT_APP_ID must not be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}
