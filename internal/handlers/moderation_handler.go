package handlers

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/detectors"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/models"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/services"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/store"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
}

func NewModerationHandler(moderationService *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Query serves GET /api/moderation?action=...
func (h *ModerationHandler) Query(c *fiber.Ctx) error {
	action, err := dto.ParseQueryAction(c.Query("action"))
	if err != nil {
		return badRequest(c, "Invalid action")
	}

	switch action {
	case dto.QueryQueue:
		return h.queue(c)
	case dto.QueryStats:
		return h.stats(c)
	case dto.QuerySettings:
		return h.settings(c)
	case dto.QueryHistory:
		return h.history(c)
	}
	return badRequest(c, "Invalid action")
}

// Command serves POST /api/moderation with a body tagged by "action".
func (h *ModerationHandler) Command(c *fiber.Ctx) error {
	var env dto.CommandEnvelope
	if err := c.BodyParser(&env); err != nil {
		return badRequest(c, "Invalid request body")
	}
	action, err := dto.ParseCommandAction(env.Action)
	if err != nil {
		return badRequest(c, "Invalid action")
	}

	switch action {
	case dto.CommandAnalyze:
		return h.analyze(c)
	case dto.CommandModerate:
		return h.moderate(c)
	case dto.CommandDecision:
		return h.decision(c)
	case dto.CommandBulkModerate:
		return h.bulkModerate(c)
	case dto.CommandUpdateSettings:
		return h.updateSettings(c)
	case dto.CommandCleanup:
		return h.cleanup(c)
	}
	return badRequest(c, "Invalid action")
}

func (h *ModerationHandler) queue(c *fiber.Ctx) error {
	filter := store.QueueFilter{
		Status:      models.QueueStatus(c.Query("status")),
		Severity:    models.Severity(c.Query("severity")),
		ContentType: models.ContentType(c.Query("contentType")),
	}
	entries, err := h.moderationService.GetModerationQueue(c.UserContext(), tenant.GetAppID(c), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.QueueResponse{Queue: entries})
}

func (h *ModerationHandler) stats(c *fiber.Ctx) error {
	var tf store.Timeframe
	if raw := c.Query("timeframe"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(c, "timeframe must be a number of days")
		}
		tf, err = h.moderationService.TimeframeDays(days)
		if err != nil {
			return fail(c, err)
		}
	}

	stats, err := h.moderationService.GetModerationStats(c.UserContext(), tenant.GetAppID(c), tf)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.StatsResponse{Stats: stats})
}

func (h *ModerationHandler) settings(c *fiber.Ctx) error {
	settings, err := h.moderationService.Settings().Get(c.UserContext(), tenant.GetAppID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SettingsResponse{Settings: dto.NewSettingsView(settings)})
}

func (h *ModerationHandler) history(c *fiber.Ctx) error {
	contentID := c.Query("contentId")
	if contentID == "" {
		return badRequest(c, "contentId is required")
	}
	entries, err := h.moderationService.GetModerationHistory(c.UserContext(), tenant.GetAppID(c), contentID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.HistoryResponse{History: entries})
}

func (h *ModerationHandler) analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Content == "" {
		return badRequest(c, "content is required")
	}

	var opts services.AnalyzeOptions
	if req.Options != nil {
		opts.Force = req.Options.Force
		for _, d := range req.Options.Detectors {
			opts.Detectors = append(opts.Detectors, detectors.Category(d))
		}
	}

	result, err := h.moderationService.Analyze(c.UserContext(), tenant.GetAppID(c), req.Content, opts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.AnalyzeResponse{Result: result})
}

func (h *ModerationHandler) moderate(c *fiber.Ctx) error {
	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Content == "" || req.ContentType == "" || req.UserID == "" {
		return badRequest(c, "content, contentType and userId are required")
	}

	outcome, err := h.moderationService.ModerateBeforePublish(c.UserContext(), tenant.GetAppID(c), models.ContentRecord{
		ID:          req.ContentID,
		ContentType: models.ContentType(req.ContentType),
		Text:        req.Content,
		AuthorID:    req.UserID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.ModerateResponse{Result: outcome})
}

func (h *ModerationHandler) decision(c *fiber.Ctx) error {
	reviewerID := tenant.GetReviewerID(c)
	if reviewerID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: "Reviewer identity required",
		})
	}

	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.QueueID == "" || req.Decision == "" {
		return badRequest(c, "queueId and decision are required")
	}
	decision, err := services.ParseDecision(req.Decision)
	if err != nil {
		return fail(c, err)
	}

	if _, err := h.moderationService.ProcessDecision(c.UserContext(), tenant.GetAppID(c), req.QueueID, decision, reviewerID, req.Reason); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *ModerationHandler) bulkModerate(c *fiber.Ctx) error {
	var req dto.BulkModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	raw := bytes.TrimSpace(req.Contents)
	if len(raw) == 0 || raw[0] != '[' {
		return badRequest(c, "contents must be an array")
	}
	var items []dto.BulkItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return badRequest(c, "contents must be an array of content records")
	}

	records := make([]models.ContentRecord, len(items))
	for i, item := range items {
		records[i] = item.Record()
	}
	results, err := h.moderationService.BulkModerate(c.UserContext(), tenant.GetAppID(c), records)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.BulkModerateResponse{Results: results})
}

func (h *ModerationHandler) updateSettings(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Settings == nil {
		return badRequest(c, "settings is required")
	}

	if _, err := h.moderationService.Settings().Update(c.UserContext(), tenant.GetAppID(c), req.Settings); err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

func (h *ModerationHandler) cleanup(c *fiber.Ctx) error {
	var req dto.CleanupRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	days := services.DefaultCleanupDays
	if req.OlderThanDays != nil {
		days = *req.OlderThanDays
	}

	removed, err := h.moderationService.CleanupOldQueueItems(c.UserContext(), tenant.GetAppID(c), days)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(dto.CleanupResponse{CleanedCount: removed})
}
