package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QueueRepository struct {
	db *gorm.DB
}

func (r *QueueRepository) UpsertOpen(ctx context.Context, entry *models.QueueEntry) (bool, error) {
	key := models.OpenKeyFor(entry.AppID, entry.ContentID)
	entry.OpenKey = &key

	// a concurrent insert for the same content loses on the unique open_key
	// index; the second pass then finds and refreshes the winner
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := r.refreshPending(ctx, entry)
		if err != nil {
			return false, err
		}
		if existing != nil {
			*entry = *existing
			return false, nil
		}

		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return tx.Create(entry).Error
		})
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("failed to create queue entry: %w", err)
		}
		entry.ID = uuid.Nil
	}
	return false, fmt.Errorf("failed to create queue entry: %w", store.ErrStatusConflict)
}

func (r *QueueRepository) refreshPending(ctx context.Context, entry *models.QueueEntry) (*models.QueueEntry, error) {
	db := r.db.WithContext(ctx)
	err := db.Model(&models.QueueEntry{}).
		Where("open_key = ? AND status = ?", *entry.OpenKey, models.StatusPending).
		Updates(map[string]interface{}{
			"severity":     entry.Severity,
			"action":       entry.Action,
			"analysis":     entry.Analysis,
			"content_hash": entry.ContentHash,
			"content_type": entry.ContentType,
			"author_id":    entry.AuthorID,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to refresh queue entry: %w", err)
	}

	var existing models.QueueEntry
	err = db.Where("open_key = ?", *entry.OpenKey).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load queue entry: %w", err)
	}
	return &existing, nil
}

func (r *QueueRepository) Get(ctx context.Context, appID string, id uuid.UUID) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := r.db.WithContext(ctx).Scopes(tenant.ForTenant(appID)).First(&entry, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func (r *QueueRepository) List(ctx context.Context, appID string, f store.QueueFilter) ([]models.QueueEntry, error) {
	query := r.db.WithContext(ctx).Scopes(tenant.ForTenant(appID))
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Severity != "" {
		query = query.Where("severity = ?", f.Severity)
	}
	if f.ContentType != "" {
		query = query.Where("content_type = ?", f.ContentType)
	}

	entries := []models.QueueEntry{}
	if err := query.Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *QueueRepository) Transition(ctx context.Context, appID string, id uuid.UUID, t store.Transition) (*models.QueueEntry, error) {
	updates := map[string]interface{}{
		"status":      t.To,
		"reviewer_id": t.ReviewerID,
		"reviewed_at": t.ReviewedAt,
		"reason":      t.Reason,
	}
	if t.Decision != nil {
		updates["decision"] = *t.Decision
	}
	if t.To == models.StatusResolved {
		updates["open_key"] = nil
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&models.QueueEntry{}).
		Scopes(tenant.ForTenant(appID)).
		Where("id = ? AND status IN ?", id, t.From).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update queue entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var n int64
		if err := db.Model(&models.QueueEntry{}).Scopes(tenant.ForTenant(appID)).Where("id = ?", id).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, store.ErrNotFound
		}
		return nil, store.ErrStatusConflict
	}
	return r.Get(ctx, appID, id)
}

func (r *QueueRepository) DeleteClosedBefore(ctx context.Context, appID string, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Scopes(tenant.ForTenant(appID)).
		Where("status IN ? AND reviewed_at IS NOT NULL AND reviewed_at < ?", models.ClosedStatuses, cutoff).
		Delete(&models.QueueEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete queue entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *QueueRepository) CountByStatusSeverity(ctx context.Context, appID string, tf store.Timeframe) ([]store.StatusSeverityCount, error) {
	var rows []store.StatusSeverityCount
	err := r.db.WithContext(ctx).
		Model(&models.QueueEntry{}).
		Scopes(tenant.ForTenant(appID), inWindow("created_at", tf)).
		Select("status, severity, COUNT(*) AS count").
		Group("status, severity").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
