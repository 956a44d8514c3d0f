// Package schedule maps wall-clock time onto plan coordinates.
package schedule

import (
	"time"

	"github.com/claude/gymgenie/internal/models"
)

// Clock supplies the current time. Injected so the session and tests control
// "today".
type Clock func() time.Time

// DayIndex maps now's weekday to a plan day. Monday through Friday map to
// days 1-5. Saturday and Sunday both map to day 1 — a deliberate default, so
// weekend visits highlight Monday's workout.
func DayIndex(now time.Time) int {
	wd := int(now.Weekday()) // Sunday = 0 .. Saturday = 6
	if wd >= 1 && wd <= models.PlanDaysPerWeek {
		return wd
	}
	return 1
}

// CurrentWeek computes which plan week now falls in, given the plan start
// date. A nil or future start date yields week 1. Elapsed weeks are whole
// 7-day periods from the start date, not calendar week numbers, so a plan
// started midweek still advances every 7 days. Clamped to [1, 12].
func CurrentWeek(start *time.Time, now time.Time) int {
	if start == nil {
		return 1
	}
	s := truncateToDay(*start)
	n := truncateToDay(now)
	if s.After(n) {
		return 1
	}
	weeks := int(n.Sub(s).Hours()/24) / 7
	week := weeks + 1
	if week > models.PlanWeeks {
		return models.PlanWeeks
	}
	if week < 1 {
		return 1
	}
	return week
}

// SameDay reports whether a and b fall on the same calendar day, ignoring
// time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
