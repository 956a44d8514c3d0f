// Package session orchestrates the per-user workout session: which workout
// is active right now, exercise toggles with optimistic persistence, and
// workout logging.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/gymgenie/internal/history"
	"github.com/claude/gymgenie/internal/models"
	"github.com/claude/gymgenie/internal/schedule"
	"github.com/claude/gymgenie/internal/storage"
	"github.com/google/uuid"
)

// State is the observable session state.
type State int

const (
	// Unauthenticated means no user session is established.
	Unauthenticated State = iota
	// NoProfile means the user is known but has no stored record yet.
	NoProfile
	// NoPlan means a profile exists but no plan has been generated.
	NoPlan
	// Active means profile and plan are both present.
	Active
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case NoProfile:
		return "no_profile"
	case NoPlan:
		return "no_plan"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotActive is returned for operations that need a profile and plan.
	ErrNotActive = errors.New("no active plan for this session")
	// ErrNoWorkout means the plan has no workout at the selected (week, day).
	ErrNoWorkout = errors.New("no workout for the selected week and day")
	// ErrWorkoutIncomplete rejects logging a workout with unchecked exercises.
	ErrWorkoutIncomplete = errors.New("workout has incomplete exercises")
	// ErrAlreadyLogged rejects a second log of the same workout on the same
	// calendar day.
	ErrAlreadyLogged = errors.New("workout already logged today")
)

// RecordStore is the remote record store the session persists to.
type RecordStore interface {
	FetchRecord(ctx context.Context, id uuid.UUID) (*models.Record, error)
	UpsertProfileAndPlan(ctx context.Context, profile models.Profile, plan models.Plan) error
	UpdatePlan(ctx context.Context, id uuid.UUID, plan models.Plan) error
}

// PlanGenerator produces and modifies plans.
type PlanGenerator interface {
	GenerateInitialPlan(ctx context.Context, profile models.Profile) (models.Plan, error)
	ModifyPlan(ctx context.Context, current models.Plan, request string) (models.Plan, error)
}

// Manager holds one user's session state. The remote record store is the
// source of truth; the in-memory profile and plan mirror it and may diverge
// only transiently during an optimistic update.
type Manager struct {
	store   RecordStore
	gen     PlanGenerator
	history *history.Log
	now     schedule.Clock
	log     *slog.Logger

	mu      sync.Mutex
	state   State
	userID  uuid.UUID
	profile *models.Profile
	plan    models.Plan
	week    int
	day     int
	// epoch increments on every auth transition. A fetch or generation that
	// resolves after the epoch moved on is discarded, so a completed logout
	// is never overwritten by stale data.
	epoch uint64
}

// ProfileInput is the user-supplied part of a new profile.
type ProfileInput struct {
	Name       string          `json:"name"`
	Height     models.Height   `json:"height"`
	Weight     float64         `json:"weight"`
	GoalWeight float64         `json:"goalWeight"`
	Goal       models.Goal     `json:"goal"`
	Physique   models.Physique `json:"physique"`
}

// NewManager creates an unauthenticated session manager.
func NewManager(store RecordStore, gen PlanGenerator, hist *history.Log, now schedule.Clock, log *slog.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:   store,
		gen:     gen,
		history: hist,
		now:     now,
		log:     log,
		state:   Unauthenticated,
		week:    1,
		day:     1,
	}
}

// Begin establishes a session for userID and resolves the state from the
// record store: no record means NoProfile, a record without a plan means
// NoPlan, otherwise Active with the current week and day computed from the
// plan start date. If the session ends while the fetch is in flight, the
// result is discarded.
func (m *Manager) Begin(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	m.epoch++
	e := m.epoch
	m.userID = userID
	m.mu.Unlock()

	rec, err := m.store.FetchRecord(ctx, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != e {
		// The session changed under us; whatever we fetched is stale.
		return nil
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		m.state = NoProfile
		m.profile = nil
		m.plan = nil
	case err != nil:
		return fmt.Errorf("fetching profile: %w", err)
	case rec.Plan == nil:
		m.state = NoPlan
		m.profile = &rec.Profile
		m.plan = nil
	default:
		m.state = Active
		m.profile = &rec.Profile
		m.plan = rec.Plan
		now := m.now()
		m.week = schedule.CurrentWeek(rec.Profile.PlanStartDate, now)
		m.day = schedule.DayIndex(now)
	}
	return nil
}

// End terminates the session. Profile and plan are cleared unconditionally;
// any in-flight fetch or generation resolves against a moved epoch and is
// dropped.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.state = Unauthenticated
	m.profile = nil
	m.plan = nil
	m.week = 1
	m.day = 1
}

// CreateProfile builds a profile for the session user, generates the initial
// plan, and persists both. State moves to Active only when generation and
// persistence both succeed; on any failure nothing is applied locally.
func (m *Manager) CreateProfile(ctx context.Context, input ProfileInput) error {
	m.mu.Lock()
	if m.state != NoProfile {
		m.mu.Unlock()
		return fmt.Errorf("cannot create profile in state %s", m.state)
	}
	e := m.epoch
	start := m.now()
	profile := models.Profile{
		ID:            m.userID,
		Name:          input.Name,
		Height:        input.Height,
		Weight:        input.Weight,
		GoalWeight:    input.GoalWeight,
		Goal:          input.Goal,
		Physique:      input.Physique,
		PlanStartDate: &start,
	}
	m.mu.Unlock()

	plan, err := m.gen.GenerateInitialPlan(ctx, profile)
	if err != nil {
		return fmt.Errorf("generating initial plan: %w", err)
	}
	if err := m.store.UpsertProfileAndPlan(ctx, profile, plan); err != nil {
		return fmt.Errorf("persisting profile and plan: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != e {
		return nil
	}
	m.state = Active
	m.profile = &profile
	m.plan = plan
	m.week = 1
	m.day = schedule.DayIndex(m.now())
	return nil
}

// ModifyPlan sends a free-text modification request to the generator and
// persists the result before replacing the in-memory plan.
func (m *Manager) ModifyPlan(ctx context.Context, request string) error {
	m.mu.Lock()
	if m.state != Active {
		m.mu.Unlock()
		return ErrNotActive
	}
	e := m.epoch
	userID := m.userID
	current := m.plan.Clone()
	m.mu.Unlock()

	modified, err := m.gen.ModifyPlan(ctx, current, request)
	if err != nil {
		return fmt.Errorf("modifying plan: %w", err)
	}
	if err := m.store.UpdatePlan(ctx, userID, modified); err != nil {
		return fmt.Errorf("persisting modified plan: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != e {
		return nil
	}
	m.plan = modified
	return nil
}

// ToggleExercise inverts the completion flag of every exercise named name in
// the workout at (week, day), applies it locally, then mirrors it to the
// record store. On a write failure the in-memory plan reverts exactly to its
// pre-toggle value and the error is surfaced.
//
// The mutex is held across the remote write, so concurrent toggles resolve
// strictly in request order with at most one update in flight.
func (m *Manager) ToggleExercise(ctx context.Context, week, day int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return ErrNotActive
	}

	snapshot := m.plan
	m.plan = m.plan.ToggleExercise(week, day, name)

	if err := m.store.UpdatePlan(ctx, m.userID, m.plan); err != nil {
		m.plan = snapshot
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// ActiveWorkout returns the workout at the session's current (week, day).
// There is no fallback when the plan has no such workout.
func (m *Manager) ActiveWorkout() (models.Workout, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return models.Workout{}, false
	}
	return m.plan.Workout(m.week, m.day)
}

// CanLog reports whether the workout is eligible for logging: every weight
// exercise checked off. Vacuously true for a workout with no exercises.
func CanLog(w models.Workout) bool {
	return w.AllCompleted()
}

// LogWorkout appends the active workout to the history. Refused when the
// workout is incomplete or when the same (week, day) was already logged
// today; history is never touched on refusal.
func (m *Manager) LogWorkout(ctx context.Context) ([]models.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return nil, ErrNotActive
	}

	w, ok := m.plan.Workout(m.week, m.day)
	if !ok {
		return nil, ErrNoWorkout
	}
	if !CanLog(w) {
		return nil, ErrWorkoutIncomplete
	}

	entries, err := m.history.Load()
	if err != nil {
		return nil, err
	}
	now := m.now()
	if history.HasLoggedToday(entries, w.Week, w.Day, now) {
		return nil, ErrAlreadyLogged
	}
	return m.history.Append(w, now)
}

// LoggedToday reports whether the workout at the session's current
// (week, day) was already logged today.
func (m *Manager) LoggedToday() (bool, error) {
	m.mu.Lock()
	week, day := m.week, m.day
	now := m.now()
	m.mu.Unlock()

	entries, err := m.history.Load()
	if err != nil {
		return false, err
	}
	return history.HasLoggedToday(entries, week, day, now), nil
}

// History returns the full workout history, newest first.
func (m *Manager) History() ([]models.HistoryEntry, error) {
	return m.history.Load()
}

// StartOver discards the in-memory profile and plan and returns to
// NoProfile. The persisted remote record is left untouched.
func (m *Manager) StartOver() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return
	}
	m.state = NoProfile
	m.profile = nil
	m.plan = nil
	m.week = 1
	m.day = schedule.DayIndex(m.now())
}

// SelectWeek navigates the session to another plan week.
func (m *Manager) SelectWeek(week int) error {
	if week < 1 || week > models.PlanWeeks {
		return fmt.Errorf("week %d out of range 1-%d", week, models.PlanWeeks)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.week = week
	return nil
}

// SelectDay navigates the session to another plan day.
func (m *Manager) SelectDay(day int) error {
	if day < 1 || day > models.PlanDaysPerWeek {
		return fmt.Errorf("day %d out of range 1-%d", day, models.PlanDaysPerWeek)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.day = day
	return nil
}

// Snapshot is a read-only view of the session for the HTTP and MCP surfaces.
type Snapshot struct {
	State      string          `json:"state"`
	Profile    *models.Profile `json:"profile,omitempty"`
	Plan       models.Plan     `json:"plan,omitempty"`
	Week       int             `json:"week"`
	Day        int             `json:"day"`
	TodayIndex int             `json:"todayIndex"`
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:      m.state.String(),
		Profile:    m.profile,
		Plan:       m.plan.Clone(),
		Week:       m.week,
		Day:        m.day,
		TodayIndex: schedule.DayIndex(m.now()),
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}
