package handler

import (
	"errors"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const codeSessionCompleted = "session_completed"

// writeError maps domain errors to HTTP responses. Anything unrecognised is
// treated as a transient storage failure the client may retry.
func writeError(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": verr.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		// details were logged by the service; keep the response generic
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "permission denied"})
	case errors.Is(err, domain.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "session already completed",
			"code":  codeSessionCompleted,
		})
	}

	span := telemetry.SpanFromContext(c)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.WithError(err).WithFields(log.Fields{
		"method":  c.Method(),
		"path":    c.Path(),
		"user_id": middleware.UserID(c),
	}).Error("request failed")

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":     "temporarily unavailable, try again",
		"retryable": true,
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the app-wide fallback for errors returned by handlers
// and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(fiber.Map{"error": ferr.Message})
	}
	return writeError(c, err)
}
