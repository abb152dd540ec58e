package services

import (
	"context"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
)

type ActionBreakdown struct {
	Approved int64 `json:"approved"`
	Blocked  int64 `json:"blocked"`
	Flagged  int64 `json:"flagged"`
}

type SeverityBreakdown struct {
	Low    int64 `json:"low"`
	Medium int64 `json:"medium"`
	High   int64 `json:"high"`
}

type QueueStats struct {
	Pending      int64 `json:"pending"`
	Escalated    int64 `json:"escalated"`
	TotalInQueue int64 `json:"totalInQueue"`
}

// ModerationStats is computed on request and never stored.
type ModerationStats struct {
	Total             int64             `json:"total"`
	Automated         int64             `json:"automated"`
	Manual            int64             `json:"manual"`
	AutomationRate    float64           `json:"automationRate"`
	ActionBreakdown   ActionBreakdown   `json:"actionBreakdown"`
	SeverityBreakdown SeverityBreakdown `json:"severityBreakdown"`
	QueueStats        QueueStats        `json:"queueStats"`
}

// GetModerationStats summarizes history actions and queue entries inside
// tf. A zero Timeframe covers all time.
func (s *ModerationService) GetModerationStats(ctx context.Context, appID string, tf store.Timeframe) (*ModerationStats, error) {
	if !tf.Start.IsZero() && !tf.End.IsZero() && tf.End.Before(tf.Start) {
		return nil, invalid("timeframe", "end is before start")
	}

	actions, err := s.store.History().CountByActionActor(ctx, appID, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	queue, err := s.store.Queue().CountByStatusSeverity(ctx, appID, tf)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}

	stats := &ModerationStats{}
	for _, row := range actions {
		if row.ActorType == models.ActorSystem {
			stats.Automated += row.Count
		} else {
			stats.Manual += row.Count
		}
		switch row.Action {
		case models.HistoryApproved:
			stats.ActionBreakdown.Approved += row.Count
		case models.HistoryBlocked:
			stats.ActionBreakdown.Blocked += row.Count
		case models.HistoryFlagged:
			stats.ActionBreakdown.Flagged += row.Count
		}
	}
	stats.Total = stats.Automated + stats.Manual
	if stats.Total > 0 {
		stats.AutomationRate = float64(stats.Automated) / float64(stats.Total)
	}

	for _, row := range queue {
		switch row.Severity {
		case models.SeverityLow:
			stats.SeverityBreakdown.Low += row.Count
		case models.SeverityMedium:
			stats.SeverityBreakdown.Medium += row.Count
		case models.SeverityHigh:
			stats.SeverityBreakdown.High += row.Count
		}
		switch row.Status {
		case models.StatusPending:
			stats.QueueStats.Pending += row.Count
			stats.QueueStats.TotalInQueue += row.Count
		case models.StatusEscalated:
			stats.QueueStats.Escalated += row.Count
			stats.QueueStats.TotalInQueue += row.Count
		case models.StatusReviewed:
			stats.QueueStats.TotalInQueue += row.Count
		}
	}
	return stats, nil
}

// TimeframeDays is the window covering the last days days.
func (s *ModerationService) TimeframeDays(days int) (store.Timeframe, error) {
	if days <= 0 {
		return store.Timeframe{}, invalid("timeframe", "must be a positive number of days")
	}
	end := s.now()
	return store.Timeframe{Start: end.AddDate(0, 0, -days), End: end}, nil
}
