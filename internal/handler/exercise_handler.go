package handler

import (
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
)

type ExerciseHandler struct {
	exerciseService *service.ExerciseService
	historyService  *service.HistoryService
}

func NewExerciseHandler(exerciseService *service.ExerciseService, historyService *service.HistoryService) *ExerciseHandler {
	return &ExerciseHandler{
		exerciseService: exerciseService,
		historyService:  historyService,
	}
}

type exerciseRequest struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	Equipment   string `json:"equipment"`
	IsTimed     bool   `json:"is_timed"`
}

func (r exerciseRequest) toDomain() *domain.Exercise {
	return &domain.Exercise{
		Name:        r.Name,
		MuscleGroup: r.MuscleGroup,
		Equipment:   r.Equipment,
		IsTimed:     r.IsTimed,
	}
}

// ListExercises GET /v1/exercises?name=&muscle_group=
func (h *ExerciseHandler) ListExercises(c *fiber.Ctx) error {
	exercises, err := h.exerciseService.List(c.UserContext(), middleware.UserID(c), domain.ExerciseFilter{
		Name:        c.Query("name"),
		MuscleGroup: c.Query("muscle_group"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(exercises)
}

// CreateExercise POST /v1/exercises
func (h *ExerciseHandler) CreateExercise(c *fiber.Ctx) error {
	var req exerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ex, err := h.exerciseService.Create(c.UserContext(), middleware.UserID(c), req.toDomain())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ex)
}

// GetExercise GET /v1/exercises/:id
func (h *ExerciseHandler) GetExercise(c *fiber.Ctx) error {
	ex, err := h.exerciseService.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(ex)
}

// UpdateExercise PUT /v1/exercises/:id
func (h *ExerciseHandler) UpdateExercise(c *fiber.Ctx) error {
	var req exerciseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ex := req.toDomain()
	ex.ID = c.Params("id")
	updated, err := h.exerciseService.Update(c.UserContext(), middleware.UserID(c), ex)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// DeleteExercise DELETE /v1/exercises/:id
func (h *ExerciseHandler) DeleteExercise(c *fiber.Ctx) error {
	if err := h.exerciseService.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListExerciseSets GET /v1/me/exercises/:id/sets
func (h *ExerciseHandler) ListExerciseSets(c *fiber.Ctx) error {
	sets, err := h.historyService.ExerciseHistory(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sets)
}
