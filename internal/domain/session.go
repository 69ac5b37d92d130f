package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

var (
	ErrSessionAlreadyOpen = errors.New("an open session already exists for this routine")
)

// Session is one timed attempt at a routine by one user.
// A nil EndTime means the session is still in progress.
type Session struct {
	ID                   string     `json:"id" bson:"_id,omitempty"`
	UserID               string     `json:"user_id" bson:"user_id"`
	RoutineID            string     `json:"routine_id,omitempty" bson:"routine_id"` // empty for ad hoc sessions
	StartTime            time.Time  `json:"start_time" bson:"start_time"`
	EndTime              *time.Time `json:"end_time,omitempty" bson:"end_time"`
	TotalDurationMinutes int        `json:"total_duration_minutes" bson:"total_duration_minutes"`
	Notes                string     `json:"notes" bson:"notes"`
	CreatedAt            time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" bson:"updated_at"`
}

// IsOpen reports whether the session can still accept sets.
func (s *Session) IsOpen() bool {
	return s.EndTime == nil
}

// IsAdHoc reports whether the session runs without a routine.
func (s *Session) IsAdHoc() bool {
	return s.RoutineID == ""
}

// OwnedBy reports whether userID owns the session.
func (s *Session) OwnedBy(userID string) bool {
	return userID != "" && s.UserID == userID
}

// DurationMinutes returns the whole minutes elapsed between start and end.
func DurationMinutes(start, end time.Time) int {
	seconds := end.Sub(start).Seconds()
	if seconds <= 0 {
		return 0
	}
	return int(math.Floor(seconds / 60))
}

type SessionRepository interface {
	// Create stores a new open session. Returns ErrSessionAlreadyOpen when the
	// user already has an open session for the same routine.
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	// FindOpen returns the in-progress session for (user, routine), or nil when none exists.
	FindOpen(ctx context.Context, userID, routineID string) (*Session, error)
	// Close sets the end time, duration and (optionally) notes in one write.
	// Returns ErrSessionClosed if the session already has an end time.
	Close(ctx context.Context, id string, endTime time.Time, durationMinutes int, notes *string) (*Session, error)
	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Session, error)
}
