package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationMinutes(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 47, DurationMinutes(start, start.Add(47*time.Minute)))
	assert.Equal(t, 47, DurationMinutes(start, start.Add(47*time.Minute+59*time.Second)))
	assert.Equal(t, 0, DurationMinutes(start, start.Add(59*time.Second)))
	assert.Equal(t, 0, DurationMinutes(start, start.Add(-time.Hour)))
}

func TestSummarize(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(52*time.Minute + 30*time.Second)
	session := &Session{ID: "s1", UserID: "u1", RoutineID: "r1", StartTime: start, EndTime: &end}
	plan := planOf(single("bench", 3, 60), single("plank", 2, 30))

	sets := []*CompletedSet{
		{ExerciseID: "bench", SetNumber: 1, Reps: 10, Weight: floatPtr(100), LoggedAt: start.Add(time.Minute)},
		{ExerciseID: "bench", SetNumber: 2, Reps: 8, Weight: floatPtr(110), LoggedAt: start.Add(3 * time.Minute)},
		{ExerciseID: "plank", SetNumber: 1, Reps: 1, DurationSeconds: intPtr(60), LoggedAt: start.Add(6 * time.Minute)},
		{ExerciseID: "pushup", SetNumber: 1, Reps: 20, LoggedAt: start.Add(8 * time.Minute)},
	}

	summary := Summarize(session, sets, plan)

	assert.Equal(t, 4, summary.TotalSets)
	assert.Equal(t, 39, summary.TotalReps)
	assert.InDelta(t, 1880.0, summary.TotalVolume, 0.001)
	assert.Equal(t, 52, summary.DurationMinutes)
	assert.Equal(t, 5, summary.PlannedSets)
	assert.Equal(t, 60.0, summary.CompletionRate)
	assert.False(t, summary.IsOpen)
	require.NotNil(t, summary.LastSetAt)
	assert.Equal(t, start.Add(8*time.Minute), *summary.LastSetAt)

	require.Len(t, summary.Exercises, 3)
	bench := summary.Exercises[0]
	assert.Equal(t, "bench", bench.ExerciseID)
	assert.Equal(t, "bench", bench.Name)
	assert.Equal(t, 2, bench.Sets)
	assert.Equal(t, 18, bench.Reps)
	assert.InDelta(t, 1880.0, bench.Volume, 0.001)
	assert.Equal(t, 110.0, bench.MaxWeight)
	assert.Equal(t, 105.0, bench.AvgWeight)
	assert.Equal(t, 139.33, bench.BestOneRepMax)

	plank := summary.Exercises[1]
	assert.Equal(t, 60, plank.DurationSeconds)
	assert.Zero(t, plank.AvgWeight)

	assert.Equal(t, "pushup", summary.Exercises[2].ExerciseID)
	assert.Empty(t, summary.Exercises[2].Name)
}

func TestSummarize_OpenSessionReportsStoredDuration(t *testing.T) {
	session := &Session{ID: "s1", UserID: "u1", StartTime: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	summary := Summarize(session, nil, nil)

	assert.True(t, summary.IsOpen)
	assert.Zero(t, summary.DurationMinutes)
	assert.Zero(t, summary.TotalSets)
	assert.NotNil(t, summary.Exercises)
	assert.Nil(t, summary.LastSetAt)
	assert.Equal(t, 100.0, summary.CompletionRate)
}

func TestSummarize_Pure(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	session := &Session{ID: "s1", UserID: "u1", RoutineID: "r1", StartTime: start}
	plan := planOf(single("a", 3, 60), single("b", 3, 60))
	sets := []*CompletedSet{
		logged("a", 1, start.Add(time.Minute)),
		logged("b", 1, start.Add(2*time.Minute)),
		logged("a", 2, start.Add(3*time.Minute)),
	}

	assert.Equal(t, Summarize(session, sets, plan), Summarize(session, sets, plan))
}

func TestCompletionRate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := planOf(single("a", 2, 60), single("b", 1, 60))

	tests := []struct {
		name     string
		plan     *RoutinePlan
		sets     []*CompletedSet
		expected float64
	}{
		{"ad hoc", nil, []*CompletedSet{logged("a", 1, start)}, 100},
		{"nothing logged", plan, nil, 0},
		{"one of three", plan, []*CompletedSet{logged("a", 1, start)}, 33.33},
		{"extra sets do not count", plan, []*CompletedSet{logged("a", 1, start), logged("a", 2, start), logged("a", 3, start)}, 66.67},
		{"all logged", plan, []*CompletedSet{logged("a", 1, start), logged("a", 2, start), logged("b", 1, start)}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompletionRate(tt.plan, tt.sets))
		})
	}
}
