package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
)

// DefaultCleanupDays is the retention window used when a cleanup request
// does not name one.
const DefaultCleanupDays = 30

func (s *ModerationService) GetModerationQueue(ctx context.Context, appID string, filter store.QueueFilter) ([]models.QueueEntry, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("status", "unknown status %q", filter.Status)
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return nil, invalid("severity", "unknown severity %q", filter.Severity)
	}
	if filter.ContentType != "" && !filter.ContentType.Valid() {
		return nil, invalid("contentType", "unknown content type %q", filter.ContentType)
	}

	entries, err := s.store.Queue().List(ctx, appID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return entries, nil
}

func (s *ModerationService) GetModerationHistory(ctx context.Context, appID, contentID string) ([]models.HistoryEntry, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, invalid("contentId", "is required")
	}
	entries, err := s.store.History().ListByContent(ctx, appID, contentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return entries, nil
}

// CleanupOldQueueItems deletes reviewed and resolved entries whose review is
// older than olderThanDays. Pending and escalated entries are never touched.
// An empty appID cleans every tenant.
func (s *ModerationService) CleanupOldQueueItems(ctx context.Context, appID string, olderThanDays int) (int64, error) {
	if olderThanDays < 0 {
		return 0, invalid("olderThanDays", "must not be negative")
	}
	cutoff := s.now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)

	removed, err := s.store.Queue().DeleteClosedBefore(ctx, appID, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up queue: %w", err)
	}
	if removed > 0 {
		cleanupRemoved.Add(float64(removed))
		slog.Info("queue cleanup", "app_id", appID, "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
