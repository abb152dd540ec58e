package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/google/uuid"
)

// Decision is a reviewer's verdict on a queue entry.
type Decision string

const (
	DecisionApprove  Decision = "approve"
	DecisionBlock    Decision = "block"
	DecisionEscalate Decision = "escalate"
)

func ParseDecision(s string) (Decision, error) {
	switch d := Decision(s); d {
	case DecisionApprove, DecisionBlock, DecisionEscalate:
		return d, nil
	}
	return "", invalid("decision", "must be one of approve, block, escalate")
}

// transition maps a decision to the status change it causes and the history
// action that records it.
func (d Decision) transition() (models.QueueStatus, *models.Outcome, models.HistoryAction) {
	switch d {
	case DecisionApprove:
		o := models.OutcomeApproved
		return models.StatusResolved, &o, models.HistoryApproved
	case DecisionBlock:
		o := models.OutcomeBlocked
		return models.StatusResolved, &o, models.HistoryBlocked
	default:
		return models.StatusEscalated, nil, models.HistoryEscalated
	}
}

// ProcessDecision applies a reviewer decision to a queue entry and appends
// the matching history entry. Only one of several concurrent terminal
// decisions wins; the rest get ErrConflict.
func (s *ModerationService) ProcessDecision(ctx context.Context, appID, queueID string, decision Decision, reviewerID, reason string) (*models.QueueEntry, error) {
	if strings.TrimSpace(reviewerID) == "" {
		return nil, invalid("reviewerId", "is required")
	}
	if _, err := ParseDecision(string(decision)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(queueID) == "" {
		return nil, invalid("queueId", "is required")
	}
	id, err := uuid.Parse(queueID)
	if err != nil {
		return nil, ErrNotFound
	}

	to, outcome, action := decision.transition()
	now := s.now()
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	var updated *models.QueueEntry
	err = s.store.Atomic(ctx, func(tx store.Store) error {
		entry, err := tx.Queue().Transition(ctx, appID, id, store.Transition{
			From:       models.DecidableStatuses,
			To:         to,
			ReviewerID: reviewerID,
			ReviewedAt: now,
			Decision:   outcome,
			Reason:     reasonPtr,
		})
		if err != nil {
			return err
		}
		updated = entry
		return tx.History().Append(ctx, &models.HistoryEntry{
			AppID:        appID,
			ContentID:    entry.ContentID,
			QueueEntryID: &entry.ID,
			Action:       action,
			Actor:        reviewerID,
			ActorType:    models.ActorReviewer,
			Severity:     entry.Severity,
			ContentHash:  entry.ContentHash,
			Reason:       reason,
			CreatedAt:    now,
		})
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound
	case errors.Is(err, store.ErrStatusConflict):
		decisionConflicts.Inc()
		return nil, ErrConflict
	case err != nil:
		slog.Error("failed to apply decision",
			"app_id", appID,
			"queue_id", queueID,
			"reviewer_id", reviewerID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to apply decision: %w", err)
	}

	queueDecisions.WithLabelValues(string(decision)).Inc()
	return updated, nil
}
