package domain

import (
	"context"
	"sort"
	"strings"
	"time"
)

// DefaultRestSeconds is used when a planned exercise has no rest configured.
const DefaultRestSeconds = 90

// PlannedExercise is one entry of a routine: what to do, how much, and in which order.
type PlannedExercise struct {
	ExerciseID    string `json:"exercise_id" bson:"exercise_id"`
	Name          string `json:"name" bson:"name"` // Denormalized for easy display
	TargetSets    int    `json:"target_sets" bson:"target_sets"`
	TargetReps    int    `json:"target_reps" bson:"target_reps"`
	RestSeconds   int    `json:"rest_seconds" bson:"rest_seconds"`
	SupersetGroup *int   `json:"superset_group,omitempty" bson:"superset_group,omitempty"`
	OrderIndex    int    `json:"order_index" bson:"order_index"`
}

// Rest returns the configured rest interval, falling back to DefaultRestSeconds.
func (p PlannedExercise) Rest() int {
	if p.RestSeconds <= 0 {
		return DefaultRestSeconds
	}
	return p.RestSeconds
}

// InSuperset reports whether the entry shares a superset group with others.
func (p PlannedExercise) InSuperset() bool {
	return p.SupersetGroup != nil
}

// Routine is a named, reusable workout template owned by one user.
type Routine struct {
	ID          string            `json:"id" bson:"_id,omitempty"`
	UserID      string            `json:"user_id" bson:"user_id"`
	Name        string            `json:"name" bson:"name"`
	Description string            `json:"description" bson:"description"`
	Exercises   []PlannedExercise `json:"exercises" bson:"exercises"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

// RoutinePlan is the immutable, ordered exercise list a session walks through.
type RoutinePlan struct {
	RoutineID string            `json:"routine_id"`
	Exercises []PlannedExercise `json:"exercises"`
}

// Len returns the number of planned exercises.
func (p *RoutinePlan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Exercises)
}

// IndexOf returns the plan position of exerciseID, or -1.
func (p *RoutinePlan) IndexOf(exerciseID string) int {
	if p == nil {
		return -1
	}
	for i, ex := range p.Exercises {
		if ex.ExerciseID == exerciseID {
			return i
		}
	}
	return -1
}

// PlannedSets is the total number of sets the plan asks for.
func (p *RoutinePlan) PlannedSets() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, ex := range p.Exercises {
		total += ex.TargetSets
	}
	return total
}

// Plan returns a copy of the routine's exercises sorted by OrderIndex.
func (r *Routine) Plan() *RoutinePlan {
	exercises := make([]PlannedExercise, len(r.Exercises))
	copy(exercises, r.Exercises)
	sort.SliceStable(exercises, func(i, j int) bool {
		return exercises[i].OrderIndex < exercises[j].OrderIndex
	})
	return &RoutinePlan{RoutineID: r.ID, Exercises: exercises}
}

// Validate checks the routine before it is stored.
func (r *Routine) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return NewValidationError("name", "is required")
	}
	if len(r.Exercises) == 0 {
		return NewValidationError("exercises", "at least one exercise is required")
	}

	seen := make(map[int]bool, len(r.Exercises))
	ids := make(map[string]bool, len(r.Exercises))
	for i, ex := range r.Exercises {
		if ex.ExerciseID == "" {
			return NewValidationError("exercises", "entry %d has no exercise_id", i)
		}
		if ids[ex.ExerciseID] {
			return NewValidationError("exercises", "exercise %s is listed twice", ex.ExerciseID)
		}
		ids[ex.ExerciseID] = true
		if seen[ex.OrderIndex] {
			return NewValidationError("exercises", "duplicate order_index %d", ex.OrderIndex)
		}
		seen[ex.OrderIndex] = true
		if ex.TargetSets < 1 {
			return NewValidationError("exercises", "entry %d needs at least one set", i)
		}
		if ex.TargetReps < 0 {
			return NewValidationError("exercises", "entry %d has negative target_reps", i)
		}
		if ex.RestSeconds < 0 {
			return NewValidationError("exercises", "entry %d has negative rest_seconds", i)
		}
	}
	return nil
}

type RoutineRepository interface {
	Create(ctx context.Context, routine *Routine) error
	GetByID(ctx context.Context, id string) (*Routine, error)
	ListByUser(ctx context.Context, userID string) ([]*Routine, error)
	Update(ctx context.Context, routine *Routine) error
	Delete(ctx context.Context, id string) error
}
