package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisCacheRepository) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCacheRepository(client)
}

func TestRedisCache_Summary(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupRedis(t)

	missing, err := cache.GetSummary(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	summary := &domain.SessionSummary{
		SessionID:      "s1",
		UserID:         "u1",
		TotalSets:      3,
		TotalVolume:    1500,
		CompletionRate: 100,
		Exercises:      []domain.ExerciseSummary{{ExerciseID: "bench", Sets: 3}},
	}
	require.NoError(t, cache.SetSummary(ctx, summary, time.Hour))
	assert.True(t, mr.Exists("session:summary:s1"))

	got, err := cache.GetSummary(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.TotalSets)
	assert.Equal(t, "bench", got.Exercises[0].ExerciseID)

	mr.FastForward(2 * time.Hour)
	expired, err := cache.GetSummary(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, expired)

	require.NoError(t, cache.SetSummary(ctx, summary, time.Hour))
	require.NoError(t, cache.InvalidateSummary(ctx, "s1"))
	assert.False(t, mr.Exists("session:summary:s1"))
}

func TestRedisCache_UserRecords(t *testing.T) {
	ctx := context.Background()
	_, cache := setupRedis(t)

	records := []*domain.PersonalRecord{{UserID: "u1", ExerciseID: "bench", Weight: 110, Reps: 5}}
	require.NoError(t, cache.SetUserRecords(ctx, "u1", records, time.Minute))

	got, err := cache.GetUserRecords(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 110.0, got[0].Weight)

	require.NoError(t, cache.InvalidateUserRecords(ctx, "u1"))
	got, err = cache.GetUserRecords(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_GenericOps(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupRedis(t)

	var out map[string]int
	assert.ErrorIs(t, cache.Get(ctx, "nope", &out), ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "routine:user:u1", map[string]int{"a": 1}, time.Minute))
	require.NoError(t, cache.Set(ctx, "routine:user:u2", map[string]int{"b": 2}, time.Minute))
	require.NoError(t, cache.Set(ctx, "session:summary:s1", map[string]int{"c": 3}, time.Minute))

	require.NoError(t, cache.Get(ctx, "routine:user:u1", &out))
	assert.Equal(t, 1, out["a"])

	require.NoError(t, cache.DeleteByPattern(ctx, "routine:user:*"))
	assert.False(t, mr.Exists("routine:user:u1"))
	assert.False(t, mr.Exists("routine:user:u2"))
	assert.True(t, mr.Exists("session:summary:s1"))

	require.NoError(t, cache.Delete(ctx))
	require.NoError(t, cache.DeleteByPattern(ctx, "none:*"))
}

func TestRedisCache_Unavailable(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupRedis(t)
	mr.Close()

	_, err := cache.GetSummary(ctx, "s1")
	assert.Error(t, err)
}
