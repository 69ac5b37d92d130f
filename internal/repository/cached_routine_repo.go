package repository

import (
	"context"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
)

const (
	routineByIDKeyPrefix   = "routine:id:"
	routineByUserKeyPrefix = "routine:user:"
	defaultRoutineCacheTTL = 5 * time.Minute
)

// CachedRoutineRepository wraps a RoutineRepository with Redis caching.
// Plans are read on every set logged, so GetByID is the hot path.
type CachedRoutineRepository struct {
	next  domain.RoutineRepository
	cache *RedisCacheRepository
	ttl   time.Duration
}

// NewCachedRoutineRepository creates a new cached routine repository
func NewCachedRoutineRepository(next domain.RoutineRepository, cache *RedisCacheRepository, ttl time.Duration) *CachedRoutineRepository {
	if ttl <= 0 {
		ttl = defaultRoutineCacheTTL
	}
	return &CachedRoutineRepository{
		next:  next,
		cache: cache,
		ttl:   ttl,
	}
}

// GetByID retrieves a routine with caching
func (r *CachedRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	key := routineByIDKeyPrefix + id

	// Try cache first
	var routine domain.Routine
	if err := r.cache.Get(ctx, key, &routine); err == nil {
		return &routine, nil
	}

	// Cache miss - fetch from the store
	result, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, r.ttl)

	return result, nil
}

// ListByUser retrieves a user's routines with caching
func (r *CachedRoutineRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Routine, error) {
	key := routineByUserKeyPrefix + userID

	var routines []*domain.Routine
	if err := r.cache.Get(ctx, key, &routines); err == nil {
		return routines, nil
	}

	result, err := r.next.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, key, result, r.ttl)

	return result, nil
}

// Create creates a routine and invalidates the owner's list
func (r *CachedRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	if err := r.next.Create(ctx, routine); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, routineByUserKeyPrefix+routine.UserID)
	return nil
}

// Update updates a routine and invalidates caches
func (r *CachedRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if err := r.next.Update(ctx, routine); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, routineByIDKeyPrefix+routine.ID, routineByUserKeyPrefix+routine.UserID)
	return nil
}

// Delete deletes a routine and invalidates caches
func (r *CachedRoutineRepository) Delete(ctx context.Context, id string) error {
	// Get routine first to know the owner for list invalidation
	routine, _ := r.next.GetByID(ctx, id)

	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}

	_ = r.cache.Delete(ctx, routineByIDKeyPrefix+id)
	if routine != nil {
		_ = r.cache.Delete(ctx, routineByUserKeyPrefix+routine.UserID)
	}
	return nil
}
