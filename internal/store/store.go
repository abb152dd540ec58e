// Package store defines the storage contracts the moderation engine runs on.
// Implementations must make every single-entry write atomic and must apply
// queue transitions as a compare-and-set on the current status.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrStatusConflict = errors.New("entry status changed concurrently")
)

// QueueFilter narrows a queue listing. Zero fields match everything.
type QueueFilter struct {
	Status      models.QueueStatus
	Severity    models.Severity
	ContentType models.ContentType
}

// Timeframe bounds a query by creation time. A zero bound is open.
type Timeframe struct {
	Start time.Time
	End   time.Time
}

// Transition moves a queue entry from one of From to To, recording the
// reviewer's decision. It fails with ErrStatusConflict when the entry's
// current status is not in From.
type Transition struct {
	From       []models.QueueStatus
	To         models.QueueStatus
	ReviewerID string
	ReviewedAt time.Time
	Decision   *models.Outcome
	Reason     *string
}

type StatusSeverityCount struct {
	Status   models.QueueStatus
	Severity models.Severity
	Count    int64
}

type ActionActorCount struct {
	Action    models.HistoryAction
	ActorType models.ActorType
	Count     int64
}

type QueueStore interface {
	// UpsertOpen inserts entry unless the same content already has an open
	// entry. A pending one gets entry's analysis snapshot; any other open
	// entry is left alone. entry is overwritten with the stored row.
	UpsertOpen(ctx context.Context, entry *models.QueueEntry) (created bool, err error)
	Get(ctx context.Context, appID string, id uuid.UUID) (*models.QueueEntry, error)
	// List returns matching entries newest first.
	List(ctx context.Context, appID string, filter QueueFilter) ([]models.QueueEntry, error)
	Transition(ctx context.Context, appID string, id uuid.UUID, t Transition) (*models.QueueEntry, error)
	// DeleteClosedBefore removes reviewed/resolved entries reviewed before
	// cutoff. An empty appID spans all tenants.
	DeleteClosedBefore(ctx context.Context, appID string, cutoff time.Time) (int64, error)
	CountByStatusSeverity(ctx context.Context, appID string, tf Timeframe) ([]StatusSeverityCount, error)
}

type HistoryStore interface {
	Append(ctx context.Context, entry *models.HistoryEntry) error
	// ListByContent returns a content item's history oldest first.
	ListByContent(ctx context.Context, appID, contentID string) ([]models.HistoryEntry, error)
	CountByActionActor(ctx context.Context, appID string, tf Timeframe) ([]ActionActorCount, error)
}

type SettingsStore interface {
	// Get returns ErrNotFound when the tenant has never saved settings.
	Get(ctx context.Context, appID string) (*models.ModerationSettings, error)
	Save(ctx context.Context, settings *models.ModerationSettings) error
}

type Store interface {
	Queue() QueueStore
	History() HistoryStore
	Settings() SettingsStore
	// Atomic runs fn against stores bound to a single transaction.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
