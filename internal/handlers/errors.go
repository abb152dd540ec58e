package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/dto"
	"github.com/ahmetcoskunkizilkaya/moderation-engine/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the app-wide Fiber error handler. Only client errors
// expose their message; 5xx causes are logged and sent to Sentry.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		sentry.CaptureException(err)
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: message})
}

// fail maps service errors to their HTTP status. Anything unrecognized falls
// through to ErrorHandler as a 500.
func fail(c *fiber.Ctx, err error) error {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return badRequest(c, ve.Error())
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Queue entry not found"})
	case errors.Is(err, services.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: "Queue entry already resolved"})
	}
	return err
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: message})
}
