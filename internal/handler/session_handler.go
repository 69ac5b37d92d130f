package handler

import (
	"context"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/execution"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/telemetry"
	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// StartRoutineSession POST /v1/routines/:id/sessions
// Returns 201 for a new session and 200 when an open one is resumed.
func (h *SessionHandler) StartRoutineSession(c *fiber.Ctx) error {
	result, err := h.sessionService.StartOrResume(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return startResponse(c, result)
}

// StartAdHocSession POST /v1/sessions
func (h *SessionHandler) StartAdHocSession(c *fiber.Ctx) error {
	result, err := h.sessionService.StartAdHoc(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return startResponse(c, result)
}

// tagSession marks the request span with the session it touches.
func tagSession(c *fiber.Ctx, sessionID string) {
	telemetry.SpanFromContext(c).SetAttributes(attribute.String("workout.session_id", sessionID))
}

func startResponse(c *fiber.Ctx, result *service.StartResult) error {
	tagSession(c, result.Session.ID)
	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(result)
}

// ListSessions GET /v1/sessions?limit=
func (h *SessionHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.sessionService.ListSessions(c.UserContext(), middleware.UserID(c), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sessions)
}

// GetState GET /v1/sessions/:id/state
func (h *SessionHandler) GetState(c *fiber.Ctx) error {
	state, err := h.sessionService.State(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

type logSetRequest struct {
	ClientID        string   `json:"client_id"`
	ExerciseID      string   `json:"exercise_id"`
	SetNumber       int      `json:"set_number"`
	Reps            int      `json:"reps"`
	Weight          *float64 `json:"weight"`
	DurationSeconds *int     `json:"duration_seconds"`
	Notes           string   `json:"notes"`
}

// LogSet POST /v1/sessions/:id/sets
// A set that was already logged comes back with 200 and duplicate=true.
func (h *SessionHandler) LogSet(c *fiber.Ctx) error {
	var req logSetRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	sessionID := c.Params("id")
	tagSession(c, sessionID)
	result, err := h.sessionService.LogSet(c.UserContext(), middleware.UserID(c), service.LogSetInput{
		SessionID:       sessionID,
		ClientID:        req.ClientID,
		ExerciseID:      req.ExerciseID,
		SetNumber:       req.SetNumber,
		Reps:            req.Reps,
		Weight:          req.Weight,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}

	status := fiber.StatusCreated
	if result.Duplicate {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

// SkipRest POST /v1/sessions/:id/rest/skip
func (h *SessionHandler) SkipRest(c *fiber.Ctx) error {
	return h.clock(c, h.sessionService.SkipRest)
}

// PauseRest POST /v1/sessions/:id/rest/pause
func (h *SessionHandler) PauseRest(c *fiber.Ctx) error {
	return h.clock(c, h.sessionService.PauseRest)
}

// ResumeRest POST /v1/sessions/:id/rest/resume
func (h *SessionHandler) ResumeRest(c *fiber.Ctx) error {
	return h.clock(c, h.sessionService.ResumeRest)
}

type clockOp func(ctx context.Context, userID, sessionID string) (execution.State, error)

func (h *SessionHandler) clock(c *fiber.Ctx, op clockOp) error {
	state, err := op(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(state)
}

// DetachView DELETE /v1/sessions/:id/view
func (h *SessionHandler) DetachView(c *fiber.Ctx) error {
	if err := h.sessionService.Detach(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type completeRequest struct {
	EndTime *time.Time `json:"end_time"`
	Notes   *string    `json:"notes"`
}

// CompleteSession POST /v1/sessions/:id/complete
// The body is optional.
func (h *SessionHandler) CompleteSession(c *fiber.Ctx) error {
	var req completeRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}

	sessionID := c.Params("id")
	tagSession(c, sessionID)
	session, err := h.sessionService.Complete(c.UserContext(), middleware.UserID(c), sessionID, service.CompleteInput{
		EndTime: req.EndTime,
		Notes:   req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(session)
}

// GetSummary GET /v1/sessions/:id/summary
func (h *SessionHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.sessionService.Summarize(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}
