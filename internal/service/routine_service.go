package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
)

// RoutineService manages a user's routines.
type RoutineService struct {
	routineRepo  domain.RoutineRepository
	exerciseRepo domain.ExerciseRepository
}

func NewRoutineService(routineRepo domain.RoutineRepository, exerciseRepo domain.ExerciseRepository) *RoutineService {
	return &RoutineService{
		routineRepo:  routineRepo,
		exerciseRepo: exerciseRepo,
	}
}

func (s *RoutineService) Create(ctx context.Context, userID string, routine *domain.Routine) (*domain.Routine, error) {
	routine.ID = ""
	routine.UserID = userID
	if err := s.prepare(ctx, userID, routine); err != nil {
		return nil, err
	}
	if err := s.routineRepo.Create(ctx, routine); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"routine_id": routine.ID,
		"exercises":  len(routine.Exercises),
	}).Info("routine created")
	return routine, nil
}

func (s *RoutineService) Get(ctx context.Context, userID, id string) (*domain.Routine, error) {
	routine, err := s.routineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if routine.UserID != userID {
		auditForbidden(userID, "routine", id)
		return nil, domain.ErrForbidden
	}
	return routine, nil
}

func (s *RoutineService) List(ctx context.Context, userID string) ([]*domain.Routine, error) {
	return s.routineRepo.ListByUser(ctx, userID)
}

// Update replaces the routine's name, description and exercises. Sessions
// already started keep walking the plan they loaded.
func (s *RoutineService) Update(ctx context.Context, userID string, routine *domain.Routine) (*domain.Routine, error) {
	current, err := s.Get(ctx, userID, routine.ID)
	if err != nil {
		return nil, err
	}

	current.Name = routine.Name
	current.Description = routine.Description
	current.Exercises = routine.Exercises
	if err := s.prepare(ctx, userID, current); err != nil {
		return nil, err
	}
	if err := s.routineRepo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *RoutineService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	return s.routineRepo.Delete(ctx, id)
}

// CurrentStep describes what the user works on at plan position index.
func (s *RoutineService) CurrentStep(ctx context.Context, userID, id string, index int) (*domain.StepView, error) {
	routine, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	view, err := domain.CurrentStep(routine.Plan(), index)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPosition) {
			return nil, domain.NewValidationError("index", "is outside the routine")
		}
		return nil, err
	}
	return &view, nil
}

// prepare validates the routine and fills in exercise names. Every exercise
// must be visible to the user.
func (s *RoutineService) prepare(ctx context.Context, userID string, routine *domain.Routine) error {
	routine.Name = strings.TrimSpace(routine.Name)
	if err := routine.Validate(); err != nil {
		return err
	}

	for i := range routine.Exercises {
		planned := &routine.Exercises[i]
		ex, err := s.exerciseRepo.GetByID(ctx, planned.ExerciseID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.NewValidationError("exercises", "exercise %s does not exist", planned.ExerciseID)
			}
			return err
		}
		if !ex.IsGlobal() && ex.UserID != userID {
			return domain.NewValidationError("exercises", "exercise %s does not exist", planned.ExerciseID)
		}
		planned.Name = ex.Name
	}
	return nil
}
