package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SystemLog stores ERROR+ log records so failed moderation calls can be
// traced back to a content id or queue entry.
type SystemLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	Level      string         `gorm:"size:10;not null;index" json:"level"`
	Message    string         `gorm:"type:text" json:"message"`
	AppID      string         `gorm:"size:50;index" json:"app_id"`
	RequestID  string         `gorm:"size:36;index" json:"request_id"`
	ContentID  string         `gorm:"size:255;index" json:"content_id"`
	QueueID    string         `gorm:"size:36" json:"queue_id"`
	ReviewerID *string        `gorm:"size:255" json:"reviewer_id"`
	Action     string         `gorm:"size:100" json:"action"`
	Error      string         `gorm:"type:text" json:"error"`
	LatencyMs  int            `json:"latency_ms"`
	Extra      datatypes.JSON `json:"extra"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (l *SystemLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
