package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateSet = errors.New("set already logged for this exercise")
)

// CompletedSet is one logged set within a session.
type CompletedSet struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	ClientID        string    `json:"client_id" bson:"client_id"` // ULID, stable across retries
	SessionID       string    `json:"session_id" bson:"session_id"`
	UserID          string    `json:"user_id" bson:"user_id"`
	ExerciseID      string    `json:"exercise_id" bson:"exercise_id"`
	SetNumber       int       `json:"set_number" bson:"set_number"` // 1-based, per exercise
	Reps            int       `json:"reps" bson:"reps"`
	Weight          *float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty" bson:"duration_seconds,omitempty"`
	Completed       bool      `json:"completed" bson:"completed"`
	Notes           string    `json:"notes" bson:"notes"`
	LoggedAt        time.Time `json:"logged_at" bson:"logged_at"`
}

// WeightOrZero returns the logged weight, 0 for bodyweight or timed sets.
func (s *CompletedSet) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// Volume is weight x reps.
func (s *CompletedSet) Volume() float64 {
	return s.WeightOrZero() * float64(s.Reps)
}

type CompletedSetRepository interface {
	// Append stores a new set. Returns ErrDuplicateSet when the
	// (session, exercise, set number) slot is already taken.
	Append(ctx context.Context, set *CompletedSet) error
	// Find returns the set in the given slot, or nil when none is logged.
	Find(ctx context.Context, sessionID, exerciseID string, setNumber int) (*CompletedSet, error)
	// ListBySession returns the session's sets in logging order.
	ListBySession(ctx context.Context, sessionID string) ([]*CompletedSet, error)
	ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*CompletedSet, error)
}
