package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QueueStatus string

const (
	StatusPending   QueueStatus = "pending"
	// StatusReviewed is never written by decisions, which go straight to
	// resolved or escalated. Rows carrying it are closed for cleanup and
	// still accept a decision.
	StatusReviewed  QueueStatus = "reviewed"
	StatusEscalated QueueStatus = "escalated"
	StatusResolved  QueueStatus = "resolved"
)

func (s QueueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusEscalated, StatusResolved:
		return true
	}
	return false
}

// DecidableStatuses accept a reviewer decision.
var DecidableStatuses = []QueueStatus{StatusPending, StatusReviewed, StatusEscalated}

// ClosedStatuses are eligible for retention cleanup.
var ClosedStatuses = []QueueStatus{StatusReviewed, StatusResolved}

// Outcome is the terminal decision recorded on a resolved entry.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeBlocked  Outcome = "blocked"
)

// QueueEntry is one unit of human-review work for a content item.
type QueueEntry struct {
	ID          uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	AppID       string                             `gorm:"size:50;not null;index:idx_queue_app_status,priority:1" json:"-"`
	ContentID   string                             `gorm:"size:255;not null;index" json:"contentId"`
	ContentType ContentType                        `gorm:"size:20;not null" json:"contentType"`
	AuthorID    string                             `gorm:"size:255;index" json:"authorId"`
	ContentHash string                             `gorm:"size:64" json:"contentHash"`
	Status      QueueStatus                        `gorm:"size:20;not null;default:'pending';index:idx_queue_app_status,priority:2" json:"status"`
	Severity    Severity                           `gorm:"size:10;not null" json:"severity"`
	Action      Action                             `gorm:"size:10;not null" json:"action"`
	Analysis    datatypes.JSONType[AnalysisResult] `json:"analysis"`
	// OpenKey is app_id/content_id while the entry is open and NULL once
	// resolved; its unique index allows one live entry per content.
	OpenKey    *string    `gorm:"size:310;uniqueIndex" json:"-"`
	CreatedAt  time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	ReviewedAt *time.Time `gorm:"index" json:"reviewedAt,omitempty"`
	ReviewerID *string    `gorm:"size:255" json:"reviewerId,omitempty"`
	Decision   *Outcome   `gorm:"size:10" json:"decision,omitempty"`
	Reason     *string    `gorm:"size:1000" json:"reason,omitempty"`
}

func (QueueEntry) TableName() string {
	return "moderation_queue"
}

func (e *QueueEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// OpenKeyFor builds the idempotence key for a tenant's content id.
func OpenKeyFor(appID, contentID string) string {
	return appID + "/" + contentID
}
