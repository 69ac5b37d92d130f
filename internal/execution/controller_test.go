package execution

import (
	"context"
	"testing"
	"time"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain checks that no controller goroutine outlives the tests
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               { close(f.stopped) }

// tick blocks until the controller loop receives the tick.
func (f *fakeTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case f.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("controller did not receive tick")
	}
}

func startController(t *testing.T, plan *domain.RoutinePlan, resume domain.ResumePoint) (*Controller, *fakeTicker) {
	t.Helper()
	ticker := newFakeTicker()
	c := NewController("s1", plan, resume, ticker)
	go c.Run(context.Background())
	t.Cleanup(c.Stop)
	return c, ticker
}

func TestController_RestClock(t *testing.T) {
	plan := oneExercisePlan()
	plan.Exercises[0].RestSeconds = 2
	c, ticker := startController(t, plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})
	ctx := context.Background()

	ticker.tick(t)
	assert.Equal(t, 1, c.Snapshot().Elapsed)

	s, err := c.Dispatch(ctx, SetLogged{ExerciseIndex: 0, SetNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, PhaseResting, s.Phase)
	assert.Equal(t, 2, s.RestRemaining)

	ticker.tick(t)
	ticker.tick(t)
	s = c.Snapshot()
	assert.Equal(t, PhaseActive, s.Phase)
	assert.Equal(t, 2, s.SetNumber)
	assert.Equal(t, 3, s.Elapsed)
}

func TestController_StopsOnComplete(t *testing.T) {
	plan := oneExercisePlan()
	c, ticker := startController(t, plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 3})

	s, err := c.Dispatch(context.Background(), SetLogged{ExerciseIndex: 0, SetNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, s.Phase)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller kept running after completion")
	}
	<-ticker.stopped

	_, err = c.Dispatch(context.Background(), Tick{})
	assert.ErrorIs(t, err, ErrControllerStopped)
	assert.Equal(t, PhaseComplete, c.Snapshot().Phase)
}

func TestController_StopIsIdempotent(t *testing.T) {
	c, ticker := startController(t, oneExercisePlan(), domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})

	c.Stop()
	c.Stop()
	<-ticker.stopped

	assert.Equal(t, PhaseActive, c.Snapshot().Phase)
}

func TestController_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := NewController("s1", oneExercisePlan(), domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1}, newFakeTicker())
	go c.Run(ctx)

	cancel()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("controller ignored context cancellation")
	}
}

func TestRegistry(t *testing.T) {
	tickers := make(chan *fakeTicker, 4)
	r := NewRegistry(func() Ticker {
		ft := newFakeTicker()
		tickers <- ft
		return ft
	})
	defer r.Close()

	plan := oneExercisePlan()
	c1 := r.Attach("s1", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})
	c2 := r.Attach("s1", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 2})
	assert.Same(t, c1, c2, "live controller is reused")
	assert.Equal(t, 1, r.Len())

	s, err := r.Dispatch(context.Background(), "s1", SetLogged{ExerciseIndex: 0, SetNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, PhaseResting, s.Phase)

	_, err = r.Dispatch(context.Background(), "missing", SkipRest{})
	assert.ErrorIs(t, err, ErrNotAttached)

	r.Detach("s1")
	_, ok := r.Get("s1")
	assert.False(t, ok)
	assert.Zero(t, r.Len())

	r.Attach("s2", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})
	r.Attach("s3", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_ReplacesFinishedController(t *testing.T) {
	r := NewRegistry(func() Ticker { return newFakeTicker() })
	defer r.Close()

	plan := oneExercisePlan()
	c1 := r.Attach("s1", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 3})
	_, err := c1.Dispatch(context.Background(), Finished{})
	require.NoError(t, err)
	<-c1.Done()

	c2 := r.Attach("s1", plan, domain.ResumePoint{ExerciseIndex: 0, SetNumber: 1})
	assert.NotSame(t, c1, c2)
	assert.Equal(t, PhaseActive, c2.Snapshot().Phase)
}
