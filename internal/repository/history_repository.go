package repository

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"gorm.io/gorm"
)

// HistoryRepository only ever inserts and reads.
type HistoryRepository struct {
	db *gorm.DB
}

func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListByContent(ctx context.Context, appID, contentID string) ([]models.HistoryEntry, error) {
	entries := []models.HistoryEntry{}
	err := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(appID)).
		Where("content_id = ?", contentID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *HistoryRepository) CountByActionActor(ctx context.Context, appID string, tf store.Timeframe) ([]store.ActionActorCount, error) {
	var rows []store.ActionActorCount
	err := r.db.WithContext(ctx).
		Model(&models.HistoryEntry{}).
		Scopes(tenant.ForTenant(appID), inWindow("created_at", tf)).
		Select("action, actor_type, COUNT(*) AS count").
		Group("action, actor_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
