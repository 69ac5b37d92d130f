package handler

import (
	"strconv"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/middleware"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/service"
	"github.com/gofiber/fiber/v2"
)

type RoutineHandler struct {
	routineService *service.RoutineService
}

func NewRoutineHandler(routineService *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

type plannedExerciseRequest struct {
	ExerciseID    string `json:"exercise_id"`
	TargetSets    int    `json:"target_sets"`
	TargetReps    int    `json:"target_reps"`
	RestSeconds   int    `json:"rest_seconds"`
	SupersetGroup *int   `json:"superset_group"`
	OrderIndex    *int   `json:"order_index"` // defaults to the position in the list
}

type routineRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Exercises   []plannedExerciseRequest `json:"exercises"`
}

func (r routineRequest) toDomain() *domain.Routine {
	exercises := make([]domain.PlannedExercise, 0, len(r.Exercises))
	for i, ex := range r.Exercises {
		order := i
		if ex.OrderIndex != nil {
			order = *ex.OrderIndex
		}
		exercises = append(exercises, domain.PlannedExercise{
			ExerciseID:    ex.ExerciseID,
			TargetSets:    ex.TargetSets,
			TargetReps:    ex.TargetReps,
			RestSeconds:   ex.RestSeconds,
			SupersetGroup: ex.SupersetGroup,
			OrderIndex:    order,
		})
	}
	return &domain.Routine{
		Name:        r.Name,
		Description: r.Description,
		Exercises:   exercises,
	}
}

// ListRoutines GET /v1/routines
func (h *RoutineHandler) ListRoutines(c *fiber.Ctx) error {
	routines, err := h.routineService.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(routines)
}

// CreateRoutine POST /v1/routines
func (h *RoutineHandler) CreateRoutine(c *fiber.Ctx) error {
	var req routineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	routine, err := h.routineService.Create(c.UserContext(), middleware.UserID(c), req.toDomain())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(routine)
}

// GetRoutine GET /v1/routines/:id
func (h *RoutineHandler) GetRoutine(c *fiber.Ctx) error {
	routine, err := h.routineService.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(routine)
}

// UpdateRoutine PUT /v1/routines/:id
func (h *RoutineHandler) UpdateRoutine(c *fiber.Ctx) error {
	var req routineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	routine := req.toDomain()
	routine.ID = c.Params("id")
	updated, err := h.routineService.Update(c.UserContext(), middleware.UserID(c), routine)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(updated)
}

// DeleteRoutine DELETE /v1/routines/:id
func (h *RoutineHandler) DeleteRoutine(c *fiber.Ctx) error {
	if err := h.routineService.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetStep GET /v1/routines/:id/steps/:index
func (h *RoutineHandler) GetStep(c *fiber.Ctx) error {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return badRequest(c, "index must be a number")
	}

	view, err := h.routineService.CurrentStep(c.UserContext(), middleware.UserID(c), c.Params("id"), index)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(view)
}
