package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"gorm.io/datatypes"
)

const flagThresholdKey = "flagThreshold"

// SettingsService reads and updates per-tenant moderation settings. Tenants
// that never saved settings get every detector enabled and the configured
// default threshold.
type SettingsService struct {
	store            store.Store
	defaultThreshold float64
	now              func() time.Time
	mu               sync.Mutex
}

func NewSettingsService(st store.Store, defaultThreshold float64, now func() time.Time) *SettingsService {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SettingsService{store: st, defaultThreshold: defaultThreshold, now: now}
}

func (s *SettingsService) Defaults(appID string) *models.ModerationSettings {
	enabled := make(datatypes.JSONSlice[string], 0, len(detectors.AllCategories))
	for _, c := range detectors.AllCategories {
		enabled = append(enabled, string(c))
	}
	return &models.ModerationSettings{
		AppID:            appID,
		EnabledDetectors: enabled,
		FlagThreshold:    s.defaultThreshold,
	}
}

func (s *SettingsService) Get(ctx context.Context, appID string) (*models.ModerationSettings, error) {
	settings, err := s.store.Settings().Get(ctx, appID)
	if errors.Is(err, store.ErrNotFound) {
		return s.Defaults(appID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Update merges patch into the tenant's settings. Category keys take a bool,
// flagThreshold a number in (0,1]. The whole patch is validated before any
// of it is applied.
func (s *SettingsService) Update(ctx context.Context, appID string, patch map[string]interface{}) (*models.ModerationSettings, error) {
	if len(patch) == 0 {
		return nil, invalid("settings", "no settings provided")
	}

	toggles := make(map[detectors.Category]bool)
	var threshold *float64
	for key, raw := range patch {
		if key == flagThresholdKey {
			v, ok := toFloat(raw)
			if !ok {
				return nil, invalid(key, "must be a number")
			}
			if v <= 0 || v > 1 {
				return nil, invalid(key, "must be within (0,1], got %v", v)
			}
			threshold = &v
			continue
		}
		cat, err := detectors.ParseCategory(key)
		if err != nil {
			return nil, invalid(key, "unknown setting")
		}
		on, ok := raw.(bool)
		if !ok {
			return nil, invalid(key, "must be a boolean")
		}
		toggles[cat] = on
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated *models.ModerationSettings
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		current, err := tx.Settings().Get(ctx, appID)
		if errors.Is(err, store.ErrNotFound) {
			current = s.Defaults(appID)
		} else if err != nil {
			return err
		}

		next := &models.ModerationSettings{
			AppID:            appID,
			EnabledDetectors: datatypes.JSONSlice[string]{},
			FlagThreshold:    current.FlagThreshold,
			UpdatedAt:        s.now(),
		}
		for _, c := range detectors.AllCategories {
			on := current.IsEnabled(c)
			if v, ok := toggles[c]; ok {
				on = v
			}
			if on {
				next.EnabledDetectors = append(next.EnabledDetectors, string(c))
			}
		}
		if threshold != nil {
			next.FlagThreshold = *threshold
		}
		if err := tx.Settings().Save(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return updated, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
