package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/claude/gymgenie/internal/history"
	"github.com/claude/gymgenie/internal/schedule"
	"github.com/google/uuid"
)

// Registry hands out one Manager per user, creating and resuming sessions on
// first access.
type Registry struct {
	store   RecordStore
	gen     PlanGenerator
	history *history.Log
	now     schedule.Clock
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Manager
}

// NewRegistry creates an empty registry.
func NewRegistry(store RecordStore, gen PlanGenerator, hist *history.Log, now schedule.Clock, log *slog.Logger) *Registry {
	return &Registry{
		store:    store,
		gen:      gen,
		history:  hist,
		now:      now,
		log:      log,
		sessions: make(map[uuid.UUID]*Manager),
	}
}

// Get returns the session manager for userID, establishing the session on
// first access. A manager whose session could not be established is dropped
// from the registry, so a transient fetch failure is retried on the next
// request instead of wedging the user.
func (r *Registry) Get(ctx context.Context, userID uuid.UUID) (*Manager, error) {
	r.mu.Lock()
	m, ok := r.sessions[userID]
	if !ok {
		m = NewManager(r.store, r.gen, r.history, r.now, r.log)
		r.sessions[userID] = m
	}
	r.mu.Unlock()

	// A cached manager can still be unauthenticated when its initial fetch
	// failed or another request is mid-Begin. Re-running Begin covers both;
	// the epoch guard discards whichever result loses the race.
	if m.State() == Unauthenticated {
		if err := m.Begin(ctx, userID); err != nil {
			r.mu.Lock()
			if r.sessions[userID] == m {
				delete(r.sessions, userID)
			}
			r.mu.Unlock()
			return nil, err
		}
	}
	return m, nil
}

// Drop removes a user's session, ending it first.
func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.sessions[userID]; ok {
		m.End()
		delete(r.sessions, userID)
	}
}
