package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"gorm.io/datatypes"
)

type Options struct {
	BulkWorkers     int
	MaxBulkItems    int
	DetectorTimeout time.Duration
	// Clock defaults to time.Now in UTC.
	Clock func() time.Time
}

type ModerationService struct {
	store    store.Store
	pipeline *Pipeline
	settings *SettingsService
	workers  int
	maxBulk  int
	now      func() time.Time
}

func NewModerationService(st store.Store, set *detectors.Set, settings *SettingsService, opts Options) *ModerationService {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.BulkWorkers <= 0 {
		opts.BulkWorkers = 4
	}
	if opts.MaxBulkItems <= 0 {
		opts.MaxBulkItems = 500
	}
	return &ModerationService{
		store:    st,
		pipeline: NewPipeline(set, opts.DetectorTimeout, opts.Clock),
		settings: settings,
		workers:  opts.BulkWorkers,
		maxBulk:  opts.MaxBulkItems,
		now:      opts.Clock,
	}
}

func (s *ModerationService) Settings() *SettingsService {
	return s.settings
}

// ModerationOutcome is what the publish path gets back for one item.
type ModerationOutcome struct {
	ContentID    string                 `json:"contentId"`
	Action       models.Action          `json:"action"`
	Analysis     *models.AnalysisResult `json:"analysis"`
	QueueEntryID *uuid.UUID             `json:"queueEntryId,omitempty"`
}

// Analyze scores text with the tenant's current settings. It has no side
// effects.
func (s *ModerationService) Analyze(ctx context.Context, appID, text string, opts AnalyzeOptions) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, invalid("content", "is required")
	}
	settings, err := s.settings.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, text, settings, opts)
}

// ModerateBeforePublish classifies content and, unless it is approved,
// records a queue entry and a system history entry in one transaction.
// Repeating the call for the same content id refreshes the open entry
// instead of adding another.
func (s *ModerationService) ModerateBeforePublish(ctx context.Context, appID string, content models.ContentRecord) (*ModerationOutcome, error) {
	if strings.TrimSpace(content.Text) == "" {
		return nil, invalid("content", "is required")
	}
	if !content.ContentType.Valid() {
		return nil, invalid("contentType", "must be one of post, reply, profile")
	}
	if strings.TrimSpace(content.AuthorID) == "" {
		return nil, invalid("userId", "is required")
	}
	if content.ID == "" {
		content.ID = uuid.NewString()
	}

	analysis, err := s.Analyze(ctx, appID, content.Text, AnalyzeOptions{})
	if err != nil {
		return nil, err
	}
	outcome := &ModerationOutcome{
		ContentID: content.ID,
		Action:    analysis.RecommendedAction,
		Analysis:  analysis,
	}
	if analysis.RecommendedAction == models.ActionApprove {
		moderationActions.WithLabelValues(string(models.ActionApprove)).Inc()
		return outcome, nil
	}

	now := s.now()
	hash := ContentHash(content.Text)
	entry := models.QueueEntry{
		AppID:       appID,
		ContentID:   content.ID,
		ContentType: content.ContentType,
		AuthorID:    content.AuthorID,
		ContentHash: hash,
		Status:      models.StatusPending,
		Severity:    analysis.OverallSeverity,
		Action:      analysis.RecommendedAction,
		Analysis:    datatypes.NewJSONType(*analysis),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	record := models.HistoryEntry{
		AppID:       appID,
		ContentID:   content.ID,
		Action:      historyActionFor(analysis.RecommendedAction),
		Actor:       models.SystemActor,
		ActorType:   models.ActorSystem,
		Severity:    analysis.OverallSeverity,
		ContentHash: hash,
		Reason:      systemReason(analysis),
		CreatedAt:   now,
	}

	err = s.store.Atomic(ctx, func(tx store.Store) error {
		created, err := tx.Queue().UpsertOpen(ctx, &entry)
		if err != nil {
			return err
		}
		if entry.Status != models.StatusPending {
			return nil
		}
		record.QueueEntryID = &entry.ID
		if !created {
			prior, err := tx.History().ListByContent(ctx, appID, content.ID)
			if err != nil {
				return err
			}
			if repeatsLastSystemEntry(prior, &record) {
				return nil
			}
		}
		return tx.History().Append(ctx, &record)
	})
	if err != nil {
		slog.Error("failed to record moderation",
			"app_id", appID,
			"content_id", content.ID,
			"action", analysis.RecommendedAction,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record moderation: %w", err)
	}

	moderationActions.WithLabelValues(string(analysis.RecommendedAction)).Inc()
	outcome.QueueEntryID = &entry.ID
	return outcome, nil
}

// ContentHash fingerprints analyzed text so history can tell whether the
// same content id was later edited.
func ContentHash(text string) string {
	sum := blake2b.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// repeatsLastSystemEntry reports whether the newest system entry for the same
// queue entry already records this action, severity and content.
func repeatsLastSystemEntry(history []models.HistoryEntry, next *models.HistoryEntry) bool {
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i]
		if h.ActorType != models.ActorSystem || h.QueueEntryID == nil || *h.QueueEntryID != *next.QueueEntryID {
			continue
		}
		return h.Action == next.Action && h.Severity == next.Severity && h.ContentHash == next.ContentHash
	}
	return false
}

func historyActionFor(a models.Action) models.HistoryAction {
	if a == models.ActionBlock {
		return models.HistoryBlocked
	}
	return models.HistoryFlagged
}

func systemReason(a *models.AnalysisResult) string {
	if a.AllFaulted() {
		return "all detectors faulted"
	}
	cats := make([]string, len(a.TriggeredCategories))
	for i, c := range a.TriggeredCategories {
		cats[i] = string(c)
	}
	return "triggered: " + strings.Join(cats, ", ")
}
