package models

import (
	"reflect"
	"testing"
)

// fullPlan builds a valid 60-workout plan with two exercises per day.
func fullPlan() Plan {
	var p Plan
	for week := 1; week <= PlanWeeks; week++ {
		for day := 1; day <= PlanDaysPerWeek; day++ {
			p = append(p, Workout{
				Week:  week,
				Day:   day,
				Focus: "Upper Body Push",
				WeightExercises: []Exercise{
					{Name: "Bench Press", Sets: 3, Reps: "8-12", Description: "Barbell press on flat bench"},
					{Name: "Overhead Press", Sets: 3, Reps: "8-10", Description: "Standing barbell press"},
				},
				Cardio: Cardio{Type: "Treadmill", Duration: 30},
			})
		}
	}
	return p
}

// TestValidateFullPlan verifies a complete 60-workout plan passes validation.
func TestValidateFullPlan(t *testing.T) {
	if err := fullPlan().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestValidateWrongCount verifies a plan missing a workout is rejected.
func TestValidateWrongCount(t *testing.T) {
	p := fullPlan()[:59]
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for 59-workout plan")
	}
}

// TestValidateDuplicateKey verifies duplicate (week, day) pairs are rejected
// even at the correct total count.
func TestValidateDuplicateKey(t *testing.T) {
	p := fullPlan()
	p[1] = p[0]
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for duplicate (week, day)")
	}
}

// TestValidateOutOfRange verifies week and day bounds are enforced.
func TestValidateOutOfRange(t *testing.T) {
	p := fullPlan()
	p[0].Week = 13
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for week 13")
	}

	p = fullPlan()
	p[0].Day = 0
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for day 0")
	}
}

// TestSortOrdersByWeekThenDay verifies Sort produces ascending (week, day)
// order from shuffled input.
func TestSortOrdersByWeekThenDay(t *testing.T) {
	p := fullPlan()
	// Reverse the plan to scramble the order.
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}

	p.Sort()

	i := 0
	for week := 1; week <= PlanWeeks; week++ {
		for day := 1; day <= PlanDaysPerWeek; day++ {
			if p[i].Week != week || p[i].Day != day {
				t.Fatalf("position %d = (%d,%d), want (%d,%d)", i, p[i].Week, p[i].Day, week, day)
			}
			i++
		}
	}
}

// TestWorkoutLookup verifies exact-match lookup with no fallback.
func TestWorkoutLookup(t *testing.T) {
	p := fullPlan()

	w, ok := p.Workout(3, 4)
	if !ok {
		t.Fatal("expected workout at (3,4)")
	}
	if w.Week != 3 || w.Day != 4 {
		t.Errorf("got (%d,%d), want (3,4)", w.Week, w.Day)
	}

	if _, ok := p.Workout(13, 1); ok {
		t.Error("expected no workout at (13,1)")
	}
}

// TestToggleExerciseInvertsByName verifies every exercise with the matching
// name flips, others are untouched, and the original plan is not mutated.
func TestToggleExerciseInvertsByName(t *testing.T) {
	p := fullPlan()

	toggled := p.ToggleExercise(2, 3, "Bench Press")

	w, _ := toggled.Workout(2, 3)
	if !w.WeightExercises[0].Completed {
		t.Error("Bench Press not toggled")
	}
	if w.WeightExercises[1].Completed {
		t.Error("Overhead Press should be untouched")
	}

	// Other workouts untouched.
	other, _ := toggled.Workout(2, 4)
	if other.WeightExercises[0].Completed {
		t.Error("workout (2,4) should be untouched")
	}

	// Original plan not mutated.
	orig, _ := p.Workout(2, 3)
	if orig.WeightExercises[0].Completed {
		t.Error("original plan mutated")
	}
}

// TestToggleExerciseInvolution verifies toggling twice restores the original
// completion state.
func TestToggleExerciseInvolution(t *testing.T) {
	p := fullPlan()

	twice := p.ToggleExercise(5, 1, "Overhead Press").ToggleExercise(5, 1, "Overhead Press")

	if !reflect.DeepEqual(p, twice) {
		t.Error("double toggle did not restore the original plan")
	}
}

// TestToggleExerciseUnknownName verifies toggling a name not in the workout
// changes nothing.
func TestToggleExerciseUnknownName(t *testing.T) {
	p := fullPlan()
	toggled := p.ToggleExercise(1, 1, "Deadlift")
	if !reflect.DeepEqual(p, toggled) {
		t.Error("toggling an unknown exercise changed the plan")
	}
}

// TestAllCompleted verifies completion requires every exercise checked off.
func TestAllCompleted(t *testing.T) {
	w := fullPlan()[0]
	if w.AllCompleted() {
		t.Error("fresh workout reported complete")
	}

	w.WeightExercises[0].Completed = true
	if w.AllCompleted() {
		t.Error("half-done workout reported complete")
	}

	w.WeightExercises[1].Completed = true
	if !w.AllCompleted() {
		t.Error("fully-done workout reported incomplete")
	}
}

// TestCloneIsDeep verifies mutating a clone leaves the source untouched.
func TestCloneIsDeep(t *testing.T) {
	p := fullPlan()
	c := p.Clone()
	c[0].WeightExercises[0].Completed = true

	if p[0].WeightExercises[0].Completed {
		t.Error("clone shares exercise storage with source")
	}
}
