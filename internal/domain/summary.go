package domain

import (
	"math"
	"time"
)

// ExerciseSummary aggregates the sets of one exercise within a session.
type ExerciseSummary struct {
	ExerciseID      string  `json:"exercise_id"`
	Name            string  `json:"name,omitempty"`
	Sets            int     `json:"sets"`
	Reps            int     `json:"reps"`
	Volume          float64 `json:"volume"`
	MaxWeight       float64 `json:"max_weight"`
	AvgWeight       float64 `json:"avg_weight"`       // Over sets that carried a weight
	DurationSeconds int     `json:"duration_seconds"` // Timed sets only
	BestOneRepMax   float64 `json:"best_one_rep_max"`
}

// SessionSummary is the end-of-session report.
type SessionSummary struct {
	SessionID       string            `json:"session_id"`
	UserID          string            `json:"user_id"`
	RoutineID       string            `json:"routine_id,omitempty"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	IsOpen          bool              `json:"is_open"`
	TotalSets       int               `json:"total_sets"`
	TotalReps       int               `json:"total_reps"`
	TotalVolume     float64           `json:"total_volume"`
	DurationMinutes int               `json:"duration_minutes"`
	PlannedSets     int               `json:"planned_sets"`
	CompletionRate  float64           `json:"completion_rate"`
	LastSetAt       *time.Time        `json:"last_set_at,omitempty"`
	Exercises       []ExerciseSummary `json:"exercises"`
}

// Summarize derives session statistics from the stored session and its sets.
// plan may be nil for ad hoc sessions. The result depends on its inputs only.
func Summarize(session *Session, sets []*CompletedSet, plan *RoutinePlan) *SessionSummary {
	summary := &SessionSummary{
		SessionID:   session.ID,
		UserID:      session.UserID,
		RoutineID:   session.RoutineID,
		StartTime:   session.StartTime,
		EndTime:     session.EndTime,
		IsOpen:      session.IsOpen(),
		PlannedSets: plan.PlannedSets(),
		Exercises:   []ExerciseSummary{},
	}

	if session.EndTime != nil {
		summary.DurationMinutes = DurationMinutes(session.StartTime, *session.EndTime)
	} else {
		summary.DurationMinutes = session.TotalDurationMinutes
	}

	positions := make(map[string]int)
	weighted := make(map[string]int)
	weightSums := make(map[string]float64)
	for _, s := range sets {
		if s == nil {
			continue
		}
		summary.TotalSets++
		summary.TotalReps += s.Reps
		summary.TotalVolume += s.Volume()

		pos, ok := positions[s.ExerciseID]
		if !ok {
			pos = len(summary.Exercises)
			positions[s.ExerciseID] = pos
			es := ExerciseSummary{ExerciseID: s.ExerciseID}
			if idx := plan.IndexOf(s.ExerciseID); idx >= 0 {
				es.Name = plan.Exercises[idx].Name
			}
			summary.Exercises = append(summary.Exercises, es)
		}

		es := &summary.Exercises[pos]
		es.Sets++
		es.Reps += s.Reps
		es.Volume += s.Volume()
		if s.Weight != nil {
			weighted[s.ExerciseID]++
			weightSums[s.ExerciseID] += *s.Weight
			if *s.Weight > es.MaxWeight {
				es.MaxWeight = *s.Weight
			}
			if orm := EstimateOneRepMax(*s.Weight, s.Reps); orm > es.BestOneRepMax {
				es.BestOneRepMax = orm
			}
		}
		if s.DurationSeconds != nil {
			es.DurationSeconds += *s.DurationSeconds
		}
	}

	for i := range summary.Exercises {
		es := &summary.Exercises[i]
		if n := weighted[es.ExerciseID]; n > 0 {
			es.AvgWeight = round2(weightSums[es.ExerciseID] / float64(n))
		}
		es.BestOneRepMax = round2(es.BestOneRepMax)
	}

	if t := lastLoggedAt(sets); !t.IsZero() {
		summary.LastSetAt = &t
	}
	summary.CompletionRate = CompletionRate(plan, sets)
	return summary
}

// CompletionRate is the percentage of planned sets that were logged. Sets
// beyond an exercise's target and sets of unplanned exercises do not count.
// Sessions without a plan, or with nothing planned, report 100.
func CompletionRate(plan *RoutinePlan, sets []*CompletedSet) float64 {
	planned := plan.PlannedSets()
	if planned == 0 {
		return 100
	}

	logged := make(map[string]map[int]bool)
	for _, s := range sets {
		if s == nil {
			continue
		}
		if logged[s.ExerciseID] == nil {
			logged[s.ExerciseID] = make(map[int]bool)
		}
		logged[s.ExerciseID][s.SetNumber] = true
	}

	done := 0
	for _, ex := range plan.Exercises {
		for n := range logged[ex.ExerciseID] {
			if n >= 1 && n <= ex.TargetSets {
				done++
			}
		}
	}
	return math.Min(100, round2(float64(done)/float64(planned)*100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
