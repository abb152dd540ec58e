package repository

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository struct {
	db *gorm.DB
}

func (r *SettingsRepository) Get(ctx context.Context, appID string) (*models.ModerationSettings, error) {
	var s models.ModerationSettings
	if err := r.db.WithContext(ctx).First(&s, "app_id = ?", appID).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Save upserts the tenant's row in one statement.
func (r *SettingsRepository) Save(ctx context.Context, s *models.ModerationSettings) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "app_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"enabled_detectors", "flag_threshold", "updated_at"}),
		}).
		Create(s).Error
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
