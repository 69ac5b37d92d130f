package execution

import (
	"github.com/Reese408/WorkoutApp-3-sub000/internal/domain"
)

// Phase is the execution view's position in the session lifecycle.
type Phase string

const (
	PhaseLoading  Phase = "loading"
	PhaseActive   Phase = "active"
	PhaseResting  Phase = "resting"
	PhaseComplete Phase = "complete"
)

// State is everything the execution view renders. Durations are in seconds.
type State struct {
	SessionID       string           `json:"session_id"`
	Phase           Phase            `json:"phase"`
	ExerciseIndex   int              `json:"exercise_index"`
	SetNumber       int              `json:"set_number"`
	PlanLength      int              `json:"plan_length"`
	RestRemaining   int              `json:"rest_remaining"`
	RestTotal       int              `json:"rest_total"`
	RestPaused      bool             `json:"rest_paused"`
	Elapsed         int              `json:"elapsed"`
	ReadyToComplete bool             `json:"ready_to_complete"`
	Step            *domain.StepView `json:"step,omitempty"`
}

// Event is a message fed into Reduce.
type Event interface {
	event()
}

// Loaded carries the resume point once the plan and history are known.
type Loaded struct {
	Resume domain.ResumePoint
}

// SetLogged reports a set that was persisted.
type SetLogged struct {
	ExerciseIndex int
	SetNumber     int
}

// Tick is one second of wall clock.
type Tick struct{}

type SkipRest struct{}

type PauseRest struct{}

type ResumeRest struct{}

// Finished reports that the session was completed.
type Finished struct{}

func (Loaded) event()     {}
func (SetLogged) event()  {}
func (Tick) event()       {}
func (SkipRest) event()   {}
func (PauseRest) event()  {}
func (ResumeRest) event() {}
func (Finished) event()   {}

// Reduce returns the state that follows ev. It never mutates its input and
// ignores events that make no sense in the current phase.
func Reduce(plan *domain.RoutinePlan, s State, ev Event) State {
	switch e := ev.(type) {
	case Loaded:
		if s.Phase != PhaseLoading {
			return s
		}
		s.PlanLength = plan.Len()
		if e.Resume.ReadyToComplete && plan.Len() > 0 {
			s.Phase = PhaseActive
			s.ExerciseIndex = plan.Len()
			s.SetNumber = 0
			s.ReadyToComplete = true
			s.Step = nil
			return s
		}
		return moveTo(plan, s, e.Resume.ExerciseIndex, e.Resume.SetNumber)

	case SetLogged:
		if s.Phase != PhaseActive && s.Phase != PhaseResting {
			return s
		}
		if plan.Len() == 0 {
			// ad hoc sessions have no progression
			return moveTo(plan, s, s.ExerciseIndex, e.SetNumber+1)
		}
		tr := domain.Advance(plan, e.ExerciseIndex, e.SetNumber)
		switch tr.Kind {
		case domain.TransitionRest:
			s = moveTo(plan, s, tr.ExerciseIndex, tr.SetNumber)
			s.Phase = PhaseResting
			s.RestRemaining = tr.RestSeconds
			s.RestTotal = tr.RestSeconds
			return s
		case domain.TransitionNext:
			return moveTo(plan, s, tr.ExerciseIndex, tr.SetNumber)
		default:
			return complete(s, plan.Len())
		}

	case Tick:
		switch s.Phase {
		case PhaseActive:
			s.Elapsed++
		case PhaseResting:
			s.Elapsed++
			if !s.RestPaused {
				s.RestRemaining--
				if s.RestRemaining <= 0 {
					s = endRest(s)
				}
			}
		}
		return s

	case SkipRest:
		if s.Phase == PhaseResting {
			s = endRest(s)
		}
		return s

	case PauseRest:
		if s.Phase == PhaseResting {
			s.RestPaused = true
		}
		return s

	case ResumeRest:
		if s.Phase == PhaseResting {
			s.RestPaused = false
		}
		return s

	case Finished:
		if s.Phase == PhaseComplete {
			return s
		}
		return complete(s, s.ExerciseIndex)
	}
	return s
}

func moveTo(plan *domain.RoutinePlan, s State, index, set int) State {
	s.Phase = PhaseActive
	s.ExerciseIndex = index
	s.SetNumber = set
	s.ReadyToComplete = false
	s.RestRemaining, s.RestTotal, s.RestPaused = 0, 0, false
	s.Step = nil
	if view, err := domain.CurrentStep(plan, index); err == nil {
		s.Step = &view
	}
	return s
}

func endRest(s State) State {
	s.Phase = PhaseActive
	s.RestRemaining, s.RestTotal, s.RestPaused = 0, 0, false
	return s
}

func complete(s State, index int) State {
	s.Phase = PhaseComplete
	s.ExerciseIndex = index
	s.SetNumber = 0
	s.ReadyToComplete = false
	s.RestRemaining, s.RestTotal, s.RestPaused = 0, 0, false
	s.Step = nil
	return s
}
