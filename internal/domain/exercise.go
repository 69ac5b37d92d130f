package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrDuplicateExercise = errors.New("exercise name already exists")
)

// Exercise represents a move in the exercise library.
// Exercises without a UserID belong to the global library and are read-only for users.
type Exercise struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	MuscleGroup string    `json:"muscle_group" bson:"muscle_group"` // e.g., "Legs", "Chest"
	Equipment   string    `json:"equipment" bson:"equipment"`       // e.g., "Barbell", "Dumbbell"
	IsTimed     bool      `json:"is_timed" bson:"is_timed"`         // plank, carries: logged with duration
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// IsGlobal reports whether the exercise belongs to the shared library.
func (e *Exercise) IsGlobal() bool {
	return e.UserID == ""
}

// Validate checks the user-editable fields.
func (e *Exercise) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return NewValidationError("name", "is required")
	}
	return nil
}

// ExerciseFilter narrows List results. UserID returns the global library plus
// that user's own exercises.
type ExerciseFilter struct {
	UserID      string
	Name        string
	MuscleGroup string
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	List(ctx context.Context, filter ExerciseFilter) ([]*Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id string) error
}
