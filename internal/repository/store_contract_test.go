package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stores groups the repositories a backend must provide.
type stores struct {
	exercises domain.ExerciseRepository
	routines  domain.RoutineRepository
	sessions  domain.SessionRepository
	sets      domain.CompletedSetRepository
	records   domain.PersonalRecordRepository
	volumes   domain.DailyVolumeRepository
}

func floatPtr(v float64) *float64 { return &v }

// runStoreContract checks the behaviour every backend shares.
func runStoreContract(t *testing.T, s stores) {
	ctx := context.Background()

	t.Run("exercises", func(t *testing.T) {
		global := &domain.Exercise{Name: "Back Squat", MuscleGroup: "Legs"}
		require.NoError(t, s.exercises.Create(ctx, global))
		own := &domain.Exercise{UserID: "u1", Name: "Back Squat", MuscleGroup: "Legs"}
		require.NoError(t, s.exercises.Create(ctx, own), "same name is allowed in a user's own list")
		require.ErrorIs(t, s.exercises.Create(ctx, &domain.Exercise{UserID: "u1", Name: "Back Squat"}), domain.ErrDuplicateExercise)
		require.NoError(t, s.exercises.Create(ctx, &domain.Exercise{UserID: "u2", Name: "Zercher Squat"}))

		visible, err := s.exercises.List(ctx, domain.ExerciseFilter{UserID: "u1", Name: "squat"})
		require.NoError(t, err)
		assert.Len(t, visible, 2)

		_, err = s.exercises.GetByID(ctx, newObjectIDLike())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("routines", func(t *testing.T) {
		routine := &domain.Routine{
			UserID: "u1",
			Name:   "Legs",
			Exercises: []domain.PlannedExercise{
				{ExerciseID: "squat", TargetSets: 3, TargetReps: 5, RestSeconds: 120},
			},
		}
		require.NoError(t, s.routines.Create(ctx, routine))
		require.NotEmpty(t, routine.ID)

		got, err := s.routines.GetByID(ctx, routine.ID)
		require.NoError(t, err)
		assert.Equal(t, "Legs", got.Name)
		require.Len(t, got.Exercises, 1)

		got.Name = "Leg day"
		require.NoError(t, s.routines.Update(ctx, got))
		list, err := s.routines.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Leg day", list[0].Name)

		require.NoError(t, s.routines.Delete(ctx, routine.ID))
		_, err = s.routines.GetByID(ctx, routine.ID)
		assert.ErrorIs(t, err, domain.ErrRoutineNotFound)
		assert.ErrorIs(t, s.routines.Delete(ctx, routine.ID), domain.ErrRoutineNotFound)
	})

	t.Run("sessions", func(t *testing.T) {
		start := time.Now().Add(-time.Hour).UTC().Truncate(time.Millisecond)
		session := &domain.Session{UserID: "u1", RoutineID: "r1", StartTime: start}
		require.NoError(t, s.sessions.Create(ctx, session))

		err := s.sessions.Create(ctx, &domain.Session{UserID: "u1", RoutineID: "r1", StartTime: start})
		assert.ErrorIs(t, err, domain.ErrSessionAlreadyOpen)

		open, err := s.sessions.FindOpen(ctx, "u1", "r1")
		require.NoError(t, err)
		require.NotNil(t, open)
		assert.Equal(t, session.ID, open.ID)

		none, err := s.sessions.FindOpen(ctx, "u1", "other")
		require.NoError(t, err)
		assert.Nil(t, none)

		notes := "felt strong"
		closed, err := s.sessions.Close(ctx, session.ID, start.Add(47*time.Minute), 47, &notes)
		require.NoError(t, err)
		assert.False(t, closed.IsOpen())
		assert.Equal(t, 47, closed.TotalDurationMinutes)
		assert.Equal(t, "felt strong", closed.Notes)

		_, err = s.sessions.Close(ctx, session.ID, time.Now(), 1, nil)
		assert.ErrorIs(t, err, domain.ErrSessionClosed)
		_, err = s.sessions.Close(ctx, newObjectIDLike(), time.Now(), 1, nil)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		// closed sessions no longer block a new one
		require.NoError(t, s.sessions.Create(ctx, &domain.Session{UserID: "u1", RoutineID: "r1", StartTime: time.Now()}))

		history, err := s.sessions.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.True(t, history[0].StartTime.After(history[1].StartTime))
	})

	t.Run("completed sets", func(t *testing.T) {
		base := time.Now().UTC().Truncate(time.Millisecond)
		for i, n := range []int{1, 2} {
			set := &domain.CompletedSet{
				SessionID: "s1", UserID: "u1", ExerciseID: "bench", SetNumber: n,
				Reps: 5, Weight: floatPtr(100), Completed: true, LoggedAt: base.Add(time.Duration(i) * time.Second),
			}
			require.NoError(t, s.sets.Append(ctx, set))
		}
		dup := &domain.CompletedSet{SessionID: "s1", UserID: "u1", ExerciseID: "bench", SetNumber: 2, Reps: 5}
		assert.ErrorIs(t, s.sets.Append(ctx, dup), domain.ErrDuplicateSet)

		found, err := s.sets.Find(ctx, "s1", "bench", 2)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, 100.0, found.WeightOrZero())

		missing, err := s.sets.Find(ctx, "s1", "bench", 3)
		require.NoError(t, err)
		assert.Nil(t, missing)

		list, err := s.sets.ListBySession(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, 1, list[0].SetNumber)
		assert.Equal(t, 2, list[1].SetNumber)

		byExercise, err := s.sets.ListByUserAndExercise(ctx, "u1", "bench")
		require.NoError(t, err)
		assert.Len(t, byExercise, 2)
	})

	t.Run("personal records never degrade", func(t *testing.T) {
		steps := []struct {
			weight  float64
			reps    int
			written bool
		}{
			{100, 5, true},
			{110, 5, true},
			{90, 5, false},
			{110, 5, false},
		}
		for _, step := range steps {
			ok, err := s.records.UpsertIfBetter(ctx, &domain.PersonalRecord{
				UserID: "u1", ExerciseID: "bench", Weight: step.weight, Reps: step.reps,
			})
			require.NoError(t, err)
			assert.Equal(t, step.written, ok, "weight %v", step.weight)
		}

		pr, err := s.records.Get(ctx, "u1", "bench")
		require.NoError(t, err)
		require.NotNil(t, pr)
		assert.Equal(t, 110.0, pr.Weight)
		assert.InDelta(t, 128.33, pr.OneRepMax, 0.01)

		none, err := s.records.Get(ctx, "u1", "deadlift")
		require.NoError(t, err)
		assert.Nil(t, none)

		list, err := s.records.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, list, 1)

		require.NoError(t, s.records.DeleteByUser(ctx, "u1"))
		list, err = s.records.ListByUser(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("daily volumes", func(t *testing.T) {
		day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.volumes.Upsert(ctx, &domain.DailyVolume{UserID: "u1", SessionID: "s1", Date: day, TotalVolume: 1000}))
		require.NoError(t, s.volumes.Upsert(ctx, &domain.DailyVolume{UserID: "u1", SessionID: "s1", Date: day, TotalVolume: 1500}))
		require.NoError(t, s.volumes.Upsert(ctx, &domain.DailyVolume{UserID: "u1", SessionID: "s2", Date: day.AddDate(0, 0, 2), TotalVolume: 800}))

		latest, err := s.volumes.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, "s2", latest[0].SessionID)
		assert.Equal(t, 1500.0, latest[1].TotalVolume)

		ranged, err := s.volumes.ListByUserAndDateRange(ctx, "u1", day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, ranged, 1)
		assert.Equal(t, "s1", ranged[0].SessionID)

		require.NoError(t, s.volumes.DeleteByUser(ctx, "u1"))
		latest, err = s.volumes.ListByUser(ctx, "u1", 10)
		require.NoError(t, err)
		assert.Empty(t, latest)
	})
}

// newObjectIDLike returns an id that is well formed for every backend but unknown to it.
func newObjectIDLike() string {
	return "65f000000000000000000000"
}
