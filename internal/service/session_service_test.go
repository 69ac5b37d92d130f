package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/execution"
	"github.com/Reese408/WorkoutApp-3-sub000/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idleTicker never fires; tests drive state through events only.
type idleTicker struct{}

func (idleTicker) C() <-chan time.Time { return nil }
func (idleTicker) Stop()               {}

// stepClock returns a strictly increasing time on every call.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{now: start, step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func (c *stepClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func floatPtr(v float64) *float64 { return &v }

type fixture struct {
	store    *repository.MemoryStore
	registry *execution.Registry
	records  *RecordUpdater
	clock    *stepClock
	sessions *SessionService
	routines *RoutineService
	history  *HistoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	registry := execution.NewRegistry(func() execution.Ticker { return idleTicker{} })
	records := NewRecordUpdater(store.Records(), 1, 16)
	clock := newStepClock(time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC))
	t.Cleanup(registry.Close)

	return &fixture{
		store:    store,
		registry: registry,
		records:  records,
		clock:    clock,
		sessions: NewSessionService(
			store.Routines(), store.Sessions(), store.Sets(), store.Volumes(), records, registry,
		).WithClock(clock.Now),
		routines: NewRoutineService(store.Routines(), store.Exercises()),
		history: NewHistoryService(
			store.Sessions(), store.Sets(), store.Routines(), store.Records(), store.Volumes(),
		),
	}
}

func (f *fixture) exercise(t *testing.T, name string) string {
	t.Helper()
	ex := &domain.Exercise{Name: name}
	require.NoError(t, f.store.Exercises().Create(context.Background(), ex))
	return ex.ID
}

func (f *fixture) routine(t *testing.T, userID string, exercises ...domain.PlannedExercise) *domain.Routine {
	t.Helper()
	routine, err := f.routines.Create(context.Background(), userID, &domain.Routine{
		Name:      "Test routine",
		Exercises: exercises,
	})
	require.NoError(t, err)
	return routine
}

func (f *fixture) log(t *testing.T, userID, sessionID, exerciseID string, set, reps int, weight float64) *LogSetResult {
	t.Helper()
	res, err := f.sessions.LogSet(context.Background(), userID, LogSetInput{
		SessionID:  sessionID,
		ExerciseID: exerciseID,
		SetNumber:  set,
		Reps:       reps,
		Weight:     floatPtr(weight),
	})
	require.NoError(t, err)
	return res
}

func TestSessionService_SingleExerciseFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{
		ExerciseID: bench, TargetSets: 3, TargetReps: 10, RestSeconds: 60,
	})

	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	require.True(t, start.Created)
	assert.Equal(t, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1}, start.Resume)
	assert.Equal(t, execution.PhaseActive, start.State.Phase)
	sessionID := start.Session.ID

	res := f.log(t, "u1", sessionID, bench, 1, 10, 100)
	require.NotNil(t, res.Transition)
	assert.Equal(t, domain.TransitionRest, res.Transition.Kind)
	assert.Equal(t, execution.PhaseResting, res.State.Phase)
	assert.Equal(t, 60, res.State.RestRemaining)

	state, err := f.sessions.SkipRest(ctx, "u1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, execution.PhaseActive, state.Phase)
	assert.Equal(t, 2, state.SetNumber)

	f.log(t, "u1", sessionID, bench, 2, 10, 100)
	res = f.log(t, "u1", sessionID, bench, 3, 10, 100)
	assert.Equal(t, domain.TransitionDone, res.Transition.Kind)
	assert.Equal(t, execution.PhaseComplete, res.State.Phase)
	assert.True(t, res.Completed)
	require.NotNil(t, res.Session)
	assert.False(t, res.Session.IsOpen())

	stored, err := f.store.Sessions().GetByID(ctx, sessionID)
	require.NoError(t, err)
	assert.NotNil(t, stored.EndTime)
	assert.Equal(t, 0, f.registry.Len())

	volumes, err := f.store.Volumes().ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, volumes, 1)
	assert.InDelta(t, 3000, volumes[0].TotalVolume, 0.001)
}

func TestSessionService_LogSetRejectsZeroReps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3, RestSeconds: 60})
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	before, err := f.sessions.State(ctx, "u1", start.Session.ID)
	require.NoError(t, err)

	_, err = f.sessions.LogSet(ctx, "u1", LogSetInput{
		SessionID: start.Session.ID, ExerciseID: bench, SetNumber: 1, Reps: 0,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reps", verr.Field)
	assert.ErrorIs(t, err, domain.ErrValidation)

	sets, err := f.store.Sets().ListBySession(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Empty(t, sets)

	after, err := f.sessions.State(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSessionService_LogSetValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	other := f.exercise(t, "Deadlift")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3})
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    LogSetInput
		field string
	}{
		{"missing exercise", LogSetInput{SetNumber: 1, Reps: 5}, "exercise_id"},
		{"set zero", LogSetInput{ExerciseID: bench, SetNumber: 0, Reps: 5}, "set_number"},
		{"negative weight", LogSetInput{ExerciseID: bench, SetNumber: 1, Reps: 5, Weight: floatPtr(-1)}, "weight"},
		{"exercise outside plan", LogSetInput{ExerciseID: other, SetNumber: 1, Reps: 5}, "exercise_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.SessionID = start.Session.ID
			_, err := f.sessions.LogSet(ctx, "u1", tt.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestSessionService_PersonalRecordsOnlyImprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 5, RestSeconds: 60})

	_, err := f.store.Records().UpsertIfBetter(ctx, &domain.PersonalRecord{
		UserID: "u1", ExerciseID: bench, Weight: 100, Reps: 5,
	})
	require.NoError(t, err)

	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	f.log(t, "u1", start.Session.ID, bench, 1, 5, 110)
	f.log(t, "u1", start.Session.ID, bench, 2, 5, 90)

	// not started, so Stop evaluates the queue inline
	f.records.Stop()

	pr, err := f.store.Records().Get(ctx, "u1", bench)
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, 110.0, pr.Weight)
	assert.Equal(t, 5, pr.Reps)
	assert.InDelta(t, 128.33, pr.OneRepMax, 0.01)
}

func TestSessionService_CompleteDuration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3})

	startAt := time.Date(2024, 3, 4, 18, 0, 0, 0, time.UTC)
	f.clock.Set(startAt.Add(-time.Second))
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	require.Equal(t, startAt, start.Session.StartTime)

	end := startAt.Add(47*time.Minute + 30*time.Second)
	notes := "felt strong"
	closed, err := f.sessions.Complete(ctx, "u1", start.Session.ID, CompleteInput{EndTime: &end, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, 47, closed.TotalDurationMinutes)
	assert.Equal(t, "felt strong", closed.Notes)

	_, err = f.sessions.Complete(ctx, "u1", start.Session.ID, CompleteInput{})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	_, err = f.sessions.LogSet(ctx, "u1", LogSetInput{SessionID: start.Session.ID, ExerciseID: bench, SetNumber: 1, Reps: 5})
	assert.ErrorIs(t, err, domain.ErrSessionClosed)

	state, err := f.sessions.State(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, execution.PhaseComplete, state.Phase)
}

func TestSessionService_CompleteRejectsEarlyEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3})
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	end := start.Session.StartTime.Add(-time.Minute)
	_, err = f.sessions.Complete(ctx, "u1", start.Session.ID, CompleteInput{EndTime: &end})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSessionService_StartOrResumeReturnsOpenSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3, RestSeconds: 60})

	first, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	f.log(t, "u1", first.Session.ID, bench, 1, 8, 80)

	second, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Session.ID, second.Session.ID)
	assert.Equal(t, first.Session.StartTime, second.Session.StartTime)
	assert.Equal(t, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 2}, second.Resume)

	all, err := f.store.Sessions().ListByUser(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSessionService_ResumeAfterViewDetached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.exercise(t, "Squat")
	b := f.exercise(t, "Row")
	routine := f.routine(t, "u1",
		domain.PlannedExercise{ExerciseID: a, TargetSets: 2, RestSeconds: 60, OrderIndex: 0},
		domain.PlannedExercise{ExerciseID: b, TargetSets: 2, RestSeconds: 45, OrderIndex: 1},
	)
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)
	sessionID := start.Session.ID

	f.log(t, "u1", sessionID, a, 1, 5, 100)
	f.log(t, "u1", sessionID, a, 2, 5, 100)
	require.NoError(t, f.sessions.Detach(ctx, "u1", sessionID))
	assert.Equal(t, 0, f.registry.Len())

	state, err := f.sessions.State(ctx, "u1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, execution.PhaseActive, state.Phase)
	assert.Equal(t, 1, state.ExerciseIndex)
	assert.Equal(t, 1, state.SetNumber)

	// logging without a live view re-attaches from history
	require.NoError(t, f.sessions.Detach(ctx, "u1", sessionID))
	res := f.log(t, "u1", sessionID, b, 1, 10, 50)
	assert.Equal(t, execution.PhaseActive, res.State.Phase)
	assert.Equal(t, 1, res.State.ExerciseIndex)
	assert.Equal(t, 2, res.State.SetNumber)
	assert.Equal(t, domain.TransitionRest, res.Transition.Kind)
}

func TestSessionService_DuplicateSetHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3, RestSeconds: 60})
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	first := f.log(t, "u1", start.Session.ID, bench, 1, 10, 100)
	again := f.log(t, "u1", start.Session.ID, bench, 1, 12, 105)

	assert.True(t, again.Duplicate)
	assert.Equal(t, first.Set.ID, again.Set.ID)
	assert.Equal(t, 10, again.Set.Reps)
	assert.Nil(t, again.Transition)
	assert.Equal(t, first.State.ExerciseIndex, again.State.ExerciseIndex)
	assert.Equal(t, first.State.Phase, again.State.Phase)

	sets, err := f.store.Sets().ListBySession(ctx, start.Session.ID)
	require.NoError(t, err)
	assert.Len(t, sets, 1)
}

func TestSessionService_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "owner", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3})

	_, err := f.sessions.StartOrResume(ctx, "intruder", routine.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	start, err := f.sessions.StartOrResume(ctx, "owner", routine.ID)
	require.NoError(t, err)

	_, err = f.sessions.LogSet(ctx, "intruder", LogSetInput{SessionID: start.Session.ID, ExerciseID: bench, SetNumber: 1, Reps: 5})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.sessions.Summarize(ctx, "intruder", start.Session.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.sessions.Complete(ctx, "intruder", start.Session.ID, CompleteInput{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.sessions.StartOrResume(ctx, "owner", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSessionService_AdHoc(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")

	start, err := f.sessions.StartAdHoc(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, start.Plan)
	assert.True(t, start.Session.IsAdHoc())

	res := f.log(t, "u1", start.Session.ID, bench, 1, 10, 60)
	assert.Nil(t, res.Transition)
	assert.False(t, res.Completed)
	assert.Equal(t, execution.PhaseActive, res.State.Phase)
	assert.Equal(t, 2, res.State.SetNumber)

	again, err := f.sessions.StartAdHoc(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, start.Session.ID, again.Session.ID)

	summary, err := f.sessions.Summarize(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.CompletionRate)
	assert.Equal(t, 1, summary.TotalSets)
}

func TestSessionService_Summarize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.exercise(t, "Squat")
	b := f.exercise(t, "Row")
	routine := f.routine(t, "u1",
		domain.PlannedExercise{ExerciseID: a, TargetSets: 3, OrderIndex: 0},
		domain.PlannedExercise{ExerciseID: b, TargetSets: 2, OrderIndex: 1},
	)
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	f.log(t, "u1", start.Session.ID, a, 1, 5, 100)
	f.log(t, "u1", start.Session.ID, a, 2, 5, 100)
	f.log(t, "u1", start.Session.ID, b, 1, 10, 40)

	open, err := f.sessions.Summarize(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.True(t, open.IsOpen)
	assert.Equal(t, 3, open.TotalSets)
	assert.Equal(t, 20, open.TotalReps)
	assert.InDelta(t, 1400, open.TotalVolume, 0.001)
	assert.Equal(t, 5, open.PlannedSets)
	assert.Equal(t, 60.0, open.CompletionRate)
	require.Len(t, open.Exercises, 2)
	assert.Equal(t, "Squat", open.Exercises[0].Name)

	_, err = f.sessions.Complete(ctx, "u1", start.Session.ID, CompleteInput{})
	require.NoError(t, err)
	closed, err := f.sessions.Summarize(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen)
	assert.Equal(t, open.TotalVolume, closed.TotalVolume)
}

func TestSessionService_RestClockEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	routine := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 3, RestSeconds: 60})
	start, err := f.sessions.StartOrResume(ctx, "u1", routine.ID)
	require.NoError(t, err)

	state, err := f.sessions.PauseRest(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.False(t, state.RestPaused, "pause is ignored outside rest")

	f.log(t, "u1", start.Session.ID, bench, 1, 10, 100)
	state, err = f.sessions.PauseRest(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.True(t, state.RestPaused)
	state, err = f.sessions.ResumeRest(ctx, "u1", start.Session.ID)
	require.NoError(t, err)
	assert.False(t, state.RestPaused)
	assert.Equal(t, execution.PhaseResting, state.Phase)
}

func TestSessionService_ListSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bench := f.exercise(t, "Bench Press")
	r1 := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 1})
	r2 := f.routine(t, "u1", domain.PlannedExercise{ExerciseID: bench, TargetSets: 1})

	s1, err := f.sessions.StartOrResume(ctx, "u1", r1.ID)
	require.NoError(t, err)
	s2, err := f.sessions.StartOrResume(ctx, "u1", r2.ID)
	require.NoError(t, err)

	list, err := f.sessions.ListSessions(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s2.Session.ID, list[0].ID)
	assert.Equal(t, s1.Session.ID, list[1].ID)
}
