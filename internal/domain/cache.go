package domain

import (
	"context"
	"time"
)

// CacheRepository defines the caching operations used by the services.
// Implementations should handle Redis operations
type CacheRepository interface {
	// SetSummary caches the summary of a closed session with TTL
	SetSummary(ctx context.Context, summary *SessionSummary, ttl time.Duration) error

	// GetSummary retrieves a cached summary
	// Returns nil if not found or expired
	GetSummary(ctx context.Context, sessionID string) (*SessionSummary, error)

	// InvalidateSummary removes the cached summary of a session
	InvalidateSummary(ctx context.Context, sessionID string) error

	// SetUserRecords caches the personal records of a user with TTL
	SetUserRecords(ctx context.Context, userID string, records []*PersonalRecord, ttl time.Duration) error

	// GetUserRecords retrieves cached personal records
	// Returns nil if not found or expired
	GetUserRecords(ctx context.Context, userID string) ([]*PersonalRecord, error)

	// InvalidateUserRecords removes cached personal records of a user
	InvalidateUserRecords(ctx context.Context, userID string) error
}
