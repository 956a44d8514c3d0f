package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Plan dimensions. A full plan covers every (week, day) pair exactly once.
const (
	PlanWeeks       = 12
	PlanDaysPerWeek = 5
	PlanSize        = PlanWeeks * PlanDaysPerWeek
)

// Goal is the user's primary training goal.
type Goal string

const (
	GoalBuildMuscle     Goal = "build_muscle"
	GoalLoseWeight      Goal = "lose_weight"
	GoalMaintainFitness Goal = "maintain_fitness"
)

// GoalLabels maps goals to the wording used in generation prompts.
var GoalLabels = map[Goal]string{
	GoalBuildMuscle:     "Build Muscle",
	GoalLoseWeight:      "Lose Weight",
	GoalMaintainFitness: "Maintain Fitness",
}

// Physique is the user's desired physique target.
type Physique string

const (
	PhysiqueLean     Physique = "lean"
	PhysiqueToned    Physique = "toned"
	PhysiqueMuscular Physique = "muscular"
)

// PhysiqueLabels maps physique targets to prompt wording.
var PhysiqueLabels = map[Physique]string{
	PhysiqueLean:     "Lean",
	PhysiqueToned:    "Toned",
	PhysiqueMuscular: "Muscular",
}

// Height is a height in feet and inches.
type Height struct {
	Feet   int `json:"feet"`
	Inches int `json:"inches"`
}

// Profile describes one user. Created once by the profile flow; plan edits
// never touch it.
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Height        Height     `json:"height"`
	Weight        float64    `json:"weight"`
	GoalWeight    float64    `json:"goalWeight"`
	Goal          Goal       `json:"goal"`
	Physique      Physique   `json:"physique"`
	PlanStartDate *time.Time `json:"plan_start_date,omitempty"`
}

// Exercise is one weight-training exercise. Completed is the only field that
// mutates after generation.
type Exercise struct {
	Name        string `json:"name"`
	Sets        int    `json:"sets"`
	Reps        string `json:"reps"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Cardio is the cardio block attached to a workout.
type Cardio struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// Workout is one day's session, keyed by (Week, Day).
type Workout struct {
	Week            int        `json:"week"`
	Day             int        `json:"day"`
	Focus           string     `json:"focus"`
	WeightExercises []Exercise `json:"weightExercises"`
	Cardio          Cardio     `json:"cardio"`
}

// Clone returns a deep copy of the workout.
func (w Workout) Clone() Workout {
	out := w
	out.WeightExercises = make([]Exercise, len(w.WeightExercises))
	copy(out.WeightExercises, w.WeightExercises)
	return out
}

// AllCompleted reports whether every weight exercise is checked off.
func (w Workout) AllCompleted() bool {
	for _, ex := range w.WeightExercises {
		if !ex.Completed {
			return false
		}
	}
	return true
}

// Plan is a full 12-week schedule: 60 workouts, one per (week, day) pair.
type Plan []Workout

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for i, w := range p {
		out[i] = w.Clone()
	}
	return out
}

// Sort orders the plan ascending by week, then day.
func (p Plan) Sort() {
	sort.Slice(p, func(i, j int) bool {
		if p[i].Week != p[j].Week {
			return p[i].Week < p[j].Week
		}
		return p[i].Day < p[j].Day
	})
}

// Validate checks the plan covers exactly PlanSize workouts with unique
// in-range (week, day) keys.
func (p Plan) Validate() error {
	if len(p) != PlanSize {
		return fmt.Errorf("plan has %d workouts, want %d", len(p), PlanSize)
	}
	seen := make(map[[2]int]bool, len(p))
	for _, w := range p {
		if w.Week < 1 || w.Week > PlanWeeks {
			return fmt.Errorf("workout week %d out of range 1-%d", w.Week, PlanWeeks)
		}
		if w.Day < 1 || w.Day > PlanDaysPerWeek {
			return fmt.Errorf("workout day %d out of range 1-%d", w.Day, PlanDaysPerWeek)
		}
		key := [2]int{w.Week, w.Day}
		if seen[key] {
			return fmt.Errorf("duplicate workout for week %d day %d", w.Week, w.Day)
		}
		seen[key] = true
	}
	return nil
}

// Workout returns the workout at (week, day). No fallback when absent.
func (p Plan) Workout(week, day int) (Workout, bool) {
	for _, w := range p {
		if w.Week == week && w.Day == day {
			return w, true
		}
	}
	return Workout{}, false
}

// ToggleExercise returns a new plan where, within the workout at (week, day),
// every exercise named name has its completed flag inverted. Exercises are
// matched by name — the generated data carries no stable exercise ID.
func (p Plan) ToggleExercise(week, day int, name string) Plan {
	out := p.Clone()
	for i := range out {
		if out[i].Week != week || out[i].Day != day {
			continue
		}
		for j := range out[i].WeightExercises {
			if out[i].WeightExercises[j].Name == name {
				out[i].WeightExercises[j].Completed = !out[i].WeightExercises[j].Completed
			}
		}
	}
	return out
}

// HistoryEntry is a logged workout: completion instant plus a snapshot of the
// workout as it stood when logged. Entries are never mutated after creation.
type HistoryEntry struct {
	CompletedDate time.Time `json:"completedDate"`
	Workout       Workout   `json:"workout"`
}

// Record is one user's row in the remote record store.
type Record struct {
	Profile Profile
	Plan    Plan // nil when the profile exists but no plan has been generated
}
