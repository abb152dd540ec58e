package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/tenant"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *tenant.Registry
}

func NewHealthHandler(db *gorm.DB, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if err := sqlDB.PingContext(c.UserContext()); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	status := "ok"
	if dbStatus != "ok" {
		status = "degraded"
	}
	return c.JSON(dto.HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		AppCount:  h.registry.Len(),
	})
}
