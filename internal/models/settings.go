package models

import (
	"slices"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"gorm.io/datatypes"
)

// ModerationSettings holds one tenant's policy configuration.
type ModerationSettings struct {
	AppID            string                      `gorm:"size:50;primaryKey" json:"-"`
	EnabledDetectors datatypes.JSONSlice[string] `json:"enabledDetectors"`
	FlagThreshold    float64                     `gorm:"not null" json:"flagThreshold"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
}

func (ModerationSettings) TableName() string {
	return "moderation_settings"
}

func (s *ModerationSettings) IsEnabled(cat detectors.Category) bool {
	return slices.Contains(s.EnabledDetectors, string(cat))
}

// Enabled returns the enabled categories in canonical order.
func (s *ModerationSettings) Enabled() []detectors.Category {
	out := make([]detectors.Category, 0, len(s.EnabledDetectors))
	for _, c := range detectors.AllCategories {
		if s.IsEnabled(c) {
			out = append(out, c)
		}
	}
	return out
}
