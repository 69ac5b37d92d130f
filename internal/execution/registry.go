package execution

import (
	"context"
	"errors"
	"sync"

	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
	log "github.com/sirupsen/logrus"
)

var ErrNotAttached = errors.New("no live view for session")

// Registry keeps one running Controller per session with an open view.
type Registry struct {
	newTicker func() Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry creates a registry whose controllers tick with newTicker.
// A nil newTicker uses SecondTicker.
func NewRegistry(newTicker func() Ticker) *Registry {
	if newTicker == nil {
		newTicker = SecondTicker
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		newTicker:   newTicker,
		ctx:         ctx,
		cancel:      cancel,
		controllers: make(map[string]*Controller),
	}
}

// Attach starts a controller for the session unless a live one already
// exists, in which case the existing one is returned.
func (r *Registry) Attach(sessionID string, plan *domain.RoutinePlan, resume domain.ResumePoint) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.controllers[sessionID]; ok {
		select {
		case <-c.Done():
			// finished loop, replace it
		default:
			return c
		}
	}

	c := NewController(sessionID, plan, resume, r.newTicker())
	r.controllers[sessionID] = c
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		c.Run(r.ctx)
	}()

	log.WithFields(log.Fields{
		"session_id":     sessionID,
		"exercise_index": resume.ExerciseIndex,
		"set_number":     resume.SetNumber,
	}).Debug("execution view attached")
	return c
}

// Get returns the session's controller, if any.
func (r *Registry) Get(sessionID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.controllers[sessionID]
	return c, ok
}

// Dispatch sends ev to the session's controller.
func (r *Registry) Dispatch(ctx context.Context, sessionID string, ev Event) (State, error) {
	c, ok := r.Get(sessionID)
	if !ok {
		return State{}, ErrNotAttached
	}
	return c.Dispatch(ctx, ev)
}

// Detach stops and forgets the session's controller.
func (r *Registry) Detach(sessionID string) {
	r.mu.Lock()
	c, ok := r.controllers[sessionID]
	delete(r.controllers, sessionID)
	r.mu.Unlock()

	if ok {
		c.Stop()
		log.WithField("session_id", sessionID).Debug("execution view detached")
	}
}

// Len returns the number of attached sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Close stops every controller and waits for their goroutines.
func (r *Registry) Close() {
	r.cancel()
	r.wg.Wait()

	r.mu.Lock()
	r.controllers = make(map[string]*Controller)
	r.mu.Unlock()
}
