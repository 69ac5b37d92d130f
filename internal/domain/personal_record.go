package domain

import (
	"context"
	"time"
)

// PersonalRecord tracks a user's best known performance for an exercise.
type PersonalRecord struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	UserID     string    `json:"user_id" bson:"user_id"`
	ExerciseID string    `json:"exercise_id" bson:"exercise_id"`
	Weight     float64   `json:"weight" bson:"weight"`
	Reps       int       `json:"reps" bson:"reps"`
	OneRepMax  float64   `json:"one_rep_max" bson:"one_rep_max"` // Epley estimate of (Weight, Reps)
	Date       time.Time `json:"date" bson:"date"`
	SessionID  string    `json:"session_id,omitempty" bson:"session_id,omitempty"` // Session where the record was set
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// EstimateOneRepMax applies the Epley formula: weight * (1 + reps/30).
func EstimateOneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	return weight * (1 + float64(reps)/30)
}

// Estimate returns the record's 1RM computed from its (weight, reps) pair.
func (pr *PersonalRecord) Estimate() float64 {
	if pr == nil {
		return 0
	}
	return EstimateOneRepMax(pr.Weight, pr.Reps)
}

// PersonalRecordRepository handles persistence of personal records
type PersonalRecordRepository interface {
	// Get returns the record for (user, exercise), or nil when none exists.
	Get(ctx context.Context, userID, exerciseID string) (*PersonalRecord, error)
	// UpsertIfBetter stores pr only if its 1RM beats the stored one.
	// Returns true when the record was written.
	UpsertIfBetter(ctx context.Context, pr *PersonalRecord) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*PersonalRecord, error)
	DeleteByUser(ctx context.Context, userID string) error
}
