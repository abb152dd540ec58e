package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DB_DRIVER", "FLAG_THRESHOLD", "DETECTOR_TIMEOUT", "BULK_WORKERS",
		"BULK_MAX_ITEMS", "QUEUE_RETENTION_DAYS", "DEFAULT_APP_ID",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 0.7, cfg.FlagThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.DetectorTimeout)
	assert.Equal(t, 4, cfg.BulkWorkers)
	assert.Equal(t, 500, cfg.BulkMaxItems)
	assert.Equal(t, 30, cfg.QueueRetentionDays)
	assert.Equal(t, "default", cfg.DefaultAppID)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/mod.db")
	t.Setenv("FLAG_THRESHOLD", "0.55")
	t.Setenv("BULK_WORKERS", "8")
	t.Setenv("DETECTOR_TIMEOUT", "1s")
	t.Setenv("BULK_MAX_ITEMS", "lots")

	cfg := Load()
	assert.Equal(t, "/tmp/mod.db", cfg.DSN())
	assert.Equal(t, 0.55, cfg.FlagThreshold)
	assert.Equal(t, 8, cfg.BulkWorkers)
	assert.Equal(t, time.Second, cfg.DetectorTimeout)
	// unparsable values fall back
	assert.Equal(t, 500, cfg.BulkMaxItems)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBDriver:        "sqlite",
			DBPath:          "x.db",
			JWTSecret:       "s",
			FlagThreshold:   0.7,
			DetectorTimeout: time.Second,
			BulkWorkers:     1,
			BulkMaxItems:    1,
			CleanupInterval: time.Hour,
			DefaultAppID:    "default",
		}
	}
	assert.NoError(t, valid().Validate())

	cfg := valid()
	cfg.DBDriver = "mysql"
	cfg.JWTSecret = ""
	cfg.FlagThreshold = 0
	err := cfg.Validate()
	assert.ErrorContains(t, err, "DB_DRIVER")
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "FLAG_THRESHOLD")

	cfg = valid()
	cfg.DBDriver = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "DB_PASSWORD")
}
