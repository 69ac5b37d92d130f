package domain

import (
	"context"
	"time"
)

// DailyVolume is the aggregated workload of one completed session.
// Volume = sum(Weight * Reps) over the session's sets.
type DailyVolume struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	UserID        string    `json:"user_id" bson:"user_id"`
	SessionID     string    `json:"session_id" bson:"session_id"`
	RoutineID     string    `json:"routine_id,omitempty" bson:"routine_id,omitempty"`
	Date          time.Time `json:"date" bson:"date"` // Day of the workout
	TotalVolume   float64   `json:"total_volume" bson:"total_volume"`
	TotalSets     int       `json:"total_sets" bson:"total_sets"`
	TotalReps     int       `json:"total_reps" bson:"total_reps"`
	ExerciseCount int       `json:"exercise_count" bson:"exercise_count"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// NewDailyVolume builds the volume record of a closed session from its summary.
func NewDailyVolume(session *Session, summary *SessionSummary) *DailyVolume {
	date := session.StartTime
	if session.EndTime != nil {
		date = *session.EndTime
	}
	return &DailyVolume{
		UserID:        session.UserID,
		SessionID:     session.ID,
		RoutineID:     session.RoutineID,
		Date:          date.UTC().Truncate(24 * time.Hour),
		TotalVolume:   summary.TotalVolume,
		TotalSets:     summary.TotalSets,
		TotalReps:     summary.TotalReps,
		ExerciseCount: len(summary.Exercises),
	}
}

// DailyVolumeRepository handles CRUD operations for the daily_volumes collection
type DailyVolumeRepository interface {
	// Upsert replaces the volume record of volume.SessionID
	Upsert(ctx context.Context, volume *DailyVolume) error
	// ListByUser returns the user's records, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*DailyVolume, error)
	// ListByUserAndDateRange returns records within [from, to], oldest first
	ListByUserAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*DailyVolume, error)
	DeleteByUser(ctx context.Context, userID string) error
}
