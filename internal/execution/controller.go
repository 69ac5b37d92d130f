package execution

import (
	"context"
	"errors"
	"sync"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
)

var ErrControllerStopped = errors.New("execution controller stopped")

type request struct {
	ev    Event // nil for a read
	reply chan State
}

// Controller owns the execution state of one session. All transitions run
// on the goroutine started by Run; callers talk to it through Dispatch and
// Snapshot.
type Controller struct {
	plan     *domain.RoutinePlan
	ticker   Ticker
	requests chan request
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	mu    sync.RWMutex
	state State // last state, readable after the loop exits
}

// NewController builds a controller already past Loading, positioned at resume.
func NewController(sessionID string, plan *domain.RoutinePlan, resume domain.ResumePoint, ticker Ticker) *Controller {
	initial := Reduce(plan, State{SessionID: sessionID, Phase: PhaseLoading}, Loaded{Resume: resume})
	return &Controller{
		plan:     plan,
		ticker:   ticker,
		requests: make(chan request),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		state:    initial,
	}
}

// Run processes ticks and events until ctx is cancelled, Stop is called, or
// the session completes.
func (c *Controller) Run(ctx context.Context) {
	defer close(c.done)
	defer c.ticker.Stop()

	state := c.current()
	if state.Phase == PhaseComplete {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-c.ticker.C():
			state = c.apply(state, Tick{})
		case req := <-c.requests:
			if req.ev != nil {
				state = c.apply(state, req.ev)
			}
			req.reply <- state
		}
		if state.Phase == PhaseComplete {
			return
		}
	}
}

func (c *Controller) apply(s State, ev Event) State {
	next := Reduce(c.plan, s, ev)
	c.mu.Lock()
	c.state = next
	c.mu.Unlock()
	return next
}

func (c *Controller) current() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Dispatch feeds ev to the loop and returns the resulting state.
func (c *Controller) Dispatch(ctx context.Context, ev Event) (State, error) {
	req := request{ev: ev, reply: make(chan State, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return c.current(), ErrControllerStopped
	case <-ctx.Done():
		return c.current(), ctx.Err()
	}
	return <-req.reply, nil
}

// Snapshot returns the current state. Once the loop has exited it returns
// the final state.
func (c *Controller) Snapshot() State {
	req := request{reply: make(chan State, 1)}
	select {
	case c.requests <- req:
		return <-req.reply
	case <-c.done:
		return c.current()
	}
}

// Stop ends the loop and waits for it to exit. Safe to call more than once.
// The loop must have been started with Run.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
	<-c.done
}

// Done is closed when the loop exits.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}
