package history

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/gymgenie/internal/models"
	"github.com/claude/gymgenie/internal/schedule"
)

// Key is the blob key holding the workout history sequence.
const Key = "gymgenie_workout_history"

// Log reads and appends workout history entries over a BlobStore. Entries
// are kept newest-first and never mutated once written.
type Log struct {
	store BlobStore
	key   string
	log   *slog.Logger
}

// NewLog creates a history log over the given store.
func NewLog(store BlobStore, log *slog.Logger) *Log {
	return &Log{store: store, key: Key, log: log}
}

// Load returns all history entries, newest first. A blob that fails to parse
// is deleted and an empty history returned; corruption resets the log rather
// than wedging it.
func (l *Log) Load() ([]models.HistoryEntry, error) {
	data, err := l.store.Load(l.key)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	if data == nil {
		return nil, nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.log.Warn("history blob corrupt, resetting", "error", err)
		if delErr := l.store.Delete(l.key); delErr != nil {
			return nil, fmt.Errorf("clearing corrupt history: %w", delErr)
		}
		return nil, nil
	}
	return entries, nil
}

// Append stamps a deep copy of the workout with now, prepends it, persists
// the full sequence, and returns it.
func (l *Log) Append(workout models.Workout, now time.Time) ([]models.HistoryEntry, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	entry := models.HistoryEntry{
		CompletedDate: now,
		Workout:       workout.Clone(),
	}
	entries = append([]models.HistoryEntry{entry}, entries...)

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}
	if err := l.store.Save(l.key, data); err != nil {
		return nil, fmt.Errorf("saving history: %w", err)
	}
	return entries, nil
}

// HasLoggedToday reports whether some entry matches (week, day) and was
// completed on the same calendar day as now.
func HasLoggedToday(entries []models.HistoryEntry, week, day int, now time.Time) bool {
	for _, e := range entries {
		if e.Workout.Week == week && e.Workout.Day == day &&
			schedule.SameDay(e.CompletedDate, now) {
			return true
		}
	}
	return false
}
