package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryAction string

const (
	HistoryFlagged   HistoryAction = "flagged"
	HistoryBlocked   HistoryAction = "blocked"
	HistoryApproved  HistoryAction = "approved"
	HistoryEscalated HistoryAction = "escalated"
)

type ActorType string

const (
	ActorSystem   ActorType = "system"
	ActorReviewer ActorType = "reviewer"
)

// SystemActor is the actor recorded for automated decisions.
const SystemActor = "system"

// HistoryEntry is the append-only audit record of what happened to a piece
// of content. Rows are never updated or deleted.
type HistoryEntry struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AppID        string        `gorm:"size:50;not null;index:idx_history_app_content,priority:1" json:"-"`
	ContentID    string        `gorm:"size:255;not null;index:idx_history_app_content,priority:2" json:"contentId"`
	QueueEntryID *uuid.UUID    `gorm:"type:uuid;index" json:"queueEntryId,omitempty"`
	Action       HistoryAction `gorm:"size:20;not null" json:"action"`
	Actor        string        `gorm:"size:255;not null" json:"actor"`
	ActorType    ActorType     `gorm:"size:20;not null;index" json:"actorType"`
	Severity     Severity      `gorm:"size:10" json:"severity,omitempty"`
	ContentHash  string        `gorm:"size:64" json:"contentHash,omitempty"`
	Reason       string        `gorm:"size:1000" json:"reason,omitempty"`
	CreatedAt    time.Time     `gorm:"not null;index" json:"createdAt"`
}

func (HistoryEntry) TableName() string {
	return "moderation_history"
}

func (h *HistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
