package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
)

type ContentType string

const (
	ContentPost    ContentType = "post"
	ContentReply   ContentType = "reply"
	ContentProfile ContentType = "profile"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentPost, ContentReply, ContentProfile:
		return true
	}
	return false
}

// ContentRecord is caller-owned input. The engine never mutates it.
type ContentRecord struct {
	ID          string      `json:"id"`
	ContentType ContentType `json:"contentType"`
	Text        string      `json:"text"`
	AuthorID    string      `json:"authorId"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// Action is the automated recommendation for a piece of content.
type Action string

const (
	ActionApprove Action = "approve"
	ActionFlag    Action = "flag"
	ActionBlock   Action = "block"
)

// AnalysisResult is the aggregate of every detector run over one text.
// It is persisted only as a snapshot on a QueueEntry.
type AnalysisResult struct {
	Scores              map[detectors.Category]float64 `json:"scores"`
	OverallSeverity     Severity                       `json:"overallSeverity"`
	RecommendedAction   Action                         `json:"recommendedAction"`
	TriggeredCategories []detectors.Category           `json:"triggeredCategories"`
	Detectors           []detectors.Result             `json:"detectors"`
	IsSpam              bool                           `json:"isSpam"`
	// DetectorFaults counts detectors that errored, timed out or panicked.
	DetectorFaults int       `json:"detectorFaults"`
	Threshold      float64   `json:"flagThreshold"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

// AllFaulted reports whether at least one detector ran and every one failed.
func (a *AnalysisResult) AllFaulted() bool {
	return len(a.Detectors) > 0 && a.DetectorFaults == len(a.Detectors)
}
