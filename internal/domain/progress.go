package domain

import (
	"errors"
	"time"
)

var ErrInvalidPosition = errors.New("position is outside the routine plan")

// Step is one unit of traversal: a single exercise, or every member of a
// superset group in plan order. Indexes point into RoutinePlan.Exercises.
type Step struct {
	Indexes []int
}

// Rounds is the number of passes through the step. A single exercise has
// one round per target set.
func (s Step) Rounds(plan *RoutinePlan) int {
	rounds := 0
	for _, i := range s.Indexes {
		if plan.Exercises[i].TargetSets > rounds {
			rounds = plan.Exercises[i].TargetSets
		}
	}
	return rounds
}

// membersIn returns the indexes taking part in round r (1-based).
// Members with fewer target sets drop out of later rounds.
func (s Step) membersIn(plan *RoutinePlan, r int) []int {
	members := make([]int, 0, len(s.Indexes))
	for _, i := range s.Indexes {
		if plan.Exercises[i].TargetSets >= r {
			members = append(members, i)
		}
	}
	return members
}

func (s Step) contains(index int) bool {
	for _, i := range s.Indexes {
		if i == index {
			return true
		}
	}
	return false
}

// Steps splits the plan into traversal steps. A grouped exercise pulls in
// every member of its group the first time the group is reached.
func Steps(plan *RoutinePlan) []Step {
	if plan.Len() == 0 {
		return nil
	}

	steps := make([]Step, 0, len(plan.Exercises))
	seenGroups := make(map[int]bool)
	for i, ex := range plan.Exercises {
		if !ex.InSuperset() {
			steps = append(steps, Step{Indexes: []int{i}})
			continue
		}
		group := *ex.SupersetGroup
		if seenGroups[group] {
			continue
		}
		seenGroups[group] = true

		var indexes []int
		for j := i; j < len(plan.Exercises); j++ {
			other := plan.Exercises[j]
			if other.InSuperset() && *other.SupersetGroup == group {
				indexes = append(indexes, j)
			}
		}
		steps = append(steps, Step{Indexes: indexes})
	}
	return steps
}

// stepOf returns the position in steps of the step holding index, or -1.
func stepOf(steps []Step, index int) int {
	for si, s := range steps {
		if s.contains(index) {
			return si
		}
	}
	return -1
}

// StepView is what the execution view shows for the current position.
type StepView struct {
	Primary       PlannedExercise   `json:"primary"`
	IsSuperset    bool              `json:"is_superset"`
	Exercises     []PlannedExercise `json:"exercises"`
	SupersetTotal int               `json:"superset_total"`
	Indexes       []int             `json:"indexes"`
}

// CurrentStep describes the step the exercise at exerciseIndex belongs to.
func CurrentStep(plan *RoutinePlan, exerciseIndex int) (StepView, error) {
	if exerciseIndex < 0 || exerciseIndex >= plan.Len() {
		return StepView{}, ErrInvalidPosition
	}

	steps := Steps(plan)
	step := steps[stepOf(steps, exerciseIndex)]

	exercises := make([]PlannedExercise, 0, len(step.Indexes))
	for _, i := range step.Indexes {
		exercises = append(exercises, plan.Exercises[i])
	}
	indexes := make([]int, len(step.Indexes))
	copy(indexes, step.Indexes)

	primary := plan.Exercises[exerciseIndex]
	return StepView{
		Primary:       primary,
		IsSuperset:    primary.InSuperset(),
		Exercises:     exercises,
		SupersetTotal: len(exercises),
		Indexes:       indexes,
	}, nil
}

// TransitionKind tells the controller what follows a logged set.
type TransitionKind string

const (
	TransitionRest TransitionKind = "rest"
	TransitionNext TransitionKind = "next"
	TransitionDone TransitionKind = "done"
)

// Transition is the position expected after a set, plus the rest to take first.
type Transition struct {
	Kind          TransitionKind `json:"kind"`
	ExerciseIndex int            `json:"exercise_index"`
	SetNumber     int            `json:"set_number"`
	RestSeconds   int            `json:"rest_seconds,omitempty"`
}

// Advance computes the progression after set setNumber of the exercise at
// exerciseIndex was logged. Rest is taken between rounds of a step, never
// after the final round and never between superset members.
func Advance(plan *RoutinePlan, exerciseIndex, setNumber int) Transition {
	done := Transition{Kind: TransitionDone, ExerciseIndex: plan.Len()}
	if exerciseIndex < 0 || exerciseIndex >= plan.Len() {
		return done
	}
	if setNumber < 1 {
		setNumber = 1
	}

	steps := Steps(plan)
	si := stepOf(steps, exerciseIndex)
	step := steps[si]

	// next member in the same round
	passed := false
	for _, i := range step.Indexes {
		if i == exerciseIndex {
			passed = true
			continue
		}
		if passed && plan.Exercises[i].TargetSets >= setNumber {
			return Transition{Kind: TransitionNext, ExerciseIndex: i, SetNumber: setNumber}
		}
	}

	if setNumber < step.Rounds(plan) {
		next := step.membersIn(plan, setNumber+1)
		return Transition{
			Kind:          TransitionRest,
			ExerciseIndex: next[0],
			SetNumber:     setNumber + 1,
			RestSeconds:   plan.Exercises[exerciseIndex].Rest(),
		}
	}

	if si+1 < len(steps) {
		return Transition{Kind: TransitionNext, ExerciseIndex: steps[si+1].Indexes[0], SetNumber: 1}
	}
	return done
}

// ResumePoint is where an interrupted session picks up.
type ResumePoint struct {
	ExerciseIndex   int  `json:"exercise_index"`
	SetNumber       int  `json:"set_number"`
	ReadyToComplete bool `json:"ready_to_complete"`
}

// InferResumePoint rebuilds the position of a session from its stored sets.
//
// The step of the most recently logged set is searched for its first
// unlogged position. When that step is exhausted the following steps are
// searched in order; when nothing is left the session is ready to complete.
// A last set whose exercise is no longer in the plan restarts the search at
// the first step. An empty plan (ad hoc session) always resumes at (0, 1).
func InferResumePoint(plan *RoutinePlan, sets []*CompletedSet) ResumePoint {
	if plan.Len() == 0 {
		return ResumePoint{ExerciseIndex: 0, SetNumber: 1}
	}
	if len(sets) == 0 {
		return ResumePoint{ExerciseIndex: 0, SetNumber: 1}
	}

	logged := make(map[string]map[int]bool)
	var last *CompletedSet
	for _, s := range sets {
		if s == nil {
			continue
		}
		if logged[s.ExerciseID] == nil {
			logged[s.ExerciseID] = make(map[int]bool)
		}
		logged[s.ExerciseID][s.SetNumber] = true
		if last == nil || !s.LoggedAt.Before(last.LoggedAt) {
			last = s
		}
	}
	if last == nil {
		return ResumePoint{ExerciseIndex: 0, SetNumber: 1}
	}

	steps := Steps(plan)
	start := 0
	if idx := plan.IndexOf(last.ExerciseID); idx >= 0 {
		start = stepOf(steps, idx)
	}

	for _, step := range steps[start:] {
		for r := 1; r <= step.Rounds(plan); r++ {
			for _, i := range step.membersIn(plan, r) {
				if !logged[plan.Exercises[i].ExerciseID][r] {
					return ResumePoint{ExerciseIndex: i, SetNumber: r}
				}
			}
		}
	}
	return ResumePoint{ExerciseIndex: plan.Len(), SetNumber: 0, ReadyToComplete: true}
}

// lastLoggedAt is used by summaries of sessions with no end time.
func lastLoggedAt(sets []*CompletedSet) time.Time {
	var t time.Time
	for _, s := range sets {
		if s != nil && s.LoggedAt.After(t) {
			t = s.LoggedAt
		}
	}
	return t
}
