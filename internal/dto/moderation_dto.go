package dto

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/services"
)

// QueryAction is the ?action= selector on GET /api/moderation.
type QueryAction string

const (
	QueryQueue    QueryAction = "queue"
	QueryStats    QueryAction = "stats"
	QuerySettings QueryAction = "settings"
	QueryHistory  QueryAction = "history"
)

func ParseQueryAction(s string) (QueryAction, error) {
	switch a := QueryAction(s); a {
	case QueryQueue, QueryStats, QuerySettings, QueryHistory:
		return a, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// CommandAction is the "action" field of a POST /api/moderation body.
type CommandAction string

const (
	CommandAnalyze        CommandAction = "analyze"
	CommandModerate       CommandAction = "moderate"
	CommandDecision       CommandAction = "decision"
	CommandBulkModerate   CommandAction = "bulk-moderate"
	CommandUpdateSettings CommandAction = "update-settings"
	CommandCleanup        CommandAction = "cleanup"
)

func ParseCommandAction(s string) (CommandAction, error) {
	switch a := CommandAction(s); a {
	case CommandAnalyze, CommandModerate, CommandDecision, CommandBulkModerate, CommandUpdateSettings, CommandCleanup:
		return a, nil
	}
	return "", fmt.Errorf("invalid action %q", s)
}

// CommandEnvelope is decoded first to pick the concrete request type.
type CommandEnvelope struct {
	Action string `json:"action"`
}

type AnalyzeOptions struct {
	Detectors []string `json:"detectors"`
	Force     bool     `json:"force"`
}

type AnalyzeRequest struct {
	Content string          `json:"content"`
	Options *AnalyzeOptions `json:"options"`
}

type ModerateRequest struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	UserID      string `json:"userId"`
	ContentID   string `json:"contentId"`
}

type DecisionRequest struct {
	QueueID  string `json:"queueId"`
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// BulkModerateRequest keeps contents raw so a non-array is reported as such
// rather than as a generic decode failure.
type BulkModerateRequest struct {
	Contents json.RawMessage `json:"contents"`
}

type BulkItem struct {
	ID          string    `json:"id"`
	ContentType string    `json:"contentType"`
	Text        string    `json:"text"`
	AuthorID    string    `json:"authorId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (i BulkItem) Record() models.ContentRecord {
	return models.ContentRecord{
		ID:          i.ID,
		ContentType: models.ContentType(i.ContentType),
		Text:        i.Text,
		AuthorID:    i.AuthorID,
		SubmittedAt: i.SubmittedAt,
	}
}

type UpdateSettingsRequest struct {
	Settings map[string]interface{} `json:"settings"`
}

type CleanupRequest struct {
	OlderThanDays *int `json:"olderThanDays"`
}

type QueueResponse struct {
	Queue []models.QueueEntry `json:"queue"`
}

type HistoryResponse struct {
	History []models.HistoryEntry `json:"history"`
}

type StatsResponse struct {
	Stats *services.ModerationStats `json:"stats"`
}

// SettingsView shows settings both as the enabled list and in the
// category->bool shape update-settings accepts.
type SettingsView struct {
	EnabledDetectors []detectors.Category        `json:"enabledDetectors"`
	Detectors        map[detectors.Category]bool `json:"detectors"`
	FlagThreshold    float64                     `json:"flagThreshold"`
	UpdatedAt        *time.Time                  `json:"updatedAt,omitempty"`
}

func NewSettingsView(s *models.ModerationSettings) SettingsView {
	v := SettingsView{
		EnabledDetectors: s.Enabled(),
		Detectors:        make(map[detectors.Category]bool, len(detectors.AllCategories)),
		FlagThreshold:    s.FlagThreshold,
	}
	for _, c := range detectors.AllCategories {
		v.Detectors[c] = s.IsEnabled(c)
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		v.UpdatedAt = &t
	}
	return v
}

type SettingsResponse struct {
	Settings SettingsView `json:"settings"`
}

type AnalyzeResponse struct {
	Result *models.AnalysisResult `json:"result"`
}

type ModerateResponse struct {
	Result *services.ModerationOutcome `json:"result"`
}

type BulkModerateResponse struct {
	Results []services.BulkItemResult `json:"results"`
}

type CleanupResponse struct {
	CleanedCount int64 `json:"cleanedCount"`
}
