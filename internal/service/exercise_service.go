package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
)

// ExerciseService manages the exercise library. Global exercises are
// visible to everyone and editable by no one.
type ExerciseService struct {
	repo domain.ExerciseRepository
}

func NewExerciseService(repo domain.ExerciseRepository) *ExerciseService {
	return &ExerciseService{repo: repo}
}

func (s *ExerciseService) Create(ctx context.Context, userID string, ex *domain.Exercise) (*domain.Exercise, error) {
	ex.ID = ""
	ex.UserID = userID
	ex.Name = strings.TrimSpace(ex.Name)
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, ex); err != nil {
		if errors.Is(err, domain.ErrDuplicateExercise) {
			return nil, domain.NewValidationError("name", "an exercise with this name already exists")
		}
		return nil, err
	}
	return ex, nil
}

// Get returns a global exercise or one of the user's own. Other users'
// exercises are reported as missing.
func (s *ExerciseService) Get(ctx context.Context, userID, id string) (*domain.Exercise, error) {
	ex, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ex.IsGlobal() && ex.UserID != userID {
		return nil, domain.ErrExerciseNotFound
	}
	return ex, nil
}

func (s *ExerciseService) List(ctx context.Context, userID string, filter domain.ExerciseFilter) ([]*domain.Exercise, error) {
	filter.UserID = userID
	return s.repo.List(ctx, filter)
}

func (s *ExerciseService) Update(ctx context.Context, userID string, ex *domain.Exercise) (*domain.Exercise, error) {
	current, err := s.owned(ctx, userID, ex.ID)
	if err != nil {
		return nil, err
	}

	current.Name = strings.TrimSpace(ex.Name)
	current.MuscleGroup = ex.MuscleGroup
	current.Equipment = ex.Equipment
	current.IsTimed = ex.IsTimed
	if err := current.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, current); err != nil {
		if errors.Is(err, domain.ErrDuplicateExercise) {
			return nil, domain.NewValidationError("name", "an exercise with this name already exists")
		}
		return nil, err
	}
	return current, nil
}

func (s *ExerciseService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ExerciseService) owned(ctx context.Context, userID, id string) (*domain.Exercise, error) {
	ex, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if ex.IsGlobal() {
		auditForbidden(userID, "exercise", id)
		return nil, domain.ErrForbidden
	}
	return ex, nil
}
