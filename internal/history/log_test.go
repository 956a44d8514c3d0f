package history

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/gymgenie/internal/models"
)

func testLog() *Log {
	return NewLog(NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testWorkout(week, day int) models.Workout {
	return models.Workout{
		Week:  week,
		Day:   day,
		Focus: "Upper Body Pull",
		WeightExercises: []models.Exercise{
			{Name: "Pull Up", Sets: 3, Reps: "8-12", Description: "Bodyweight pull up", Completed: true},
		},
		Cardio: models.Cardio{Type: "Treadmill", Duration: 30},
	}
}

// TestLoadEmpty verifies an empty store yields an empty history.
func TestLoadEmpty(t *testing.T) {
	entries, err := testLog().Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

// TestAppendPrepends verifies new entries go to the front: newest first.
func TestAppendPrepends(t *testing.T) {
	l := testLog()
	base := time.Date(2025, time.April, 7, 18, 0, 0, 0, time.UTC)

	if _, err := l.Append(testWorkout(1, 1), base); err != nil {
		t.Fatal(err)
	}
	entries, err := l.Append(testWorkout(1, 2), base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Workout.Day != 2 || entries[1].Workout.Day != 1 {
		t.Errorf("entries not newest-first: days %d, %d", entries[0].Workout.Day, entries[1].Workout.Day)
	}

	// Reloading preserves the order.
	reloaded, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if reloaded[0].Workout.Day != 2 {
		t.Error("order lost after reload")
	}
}

// TestAppendSnapshotsWorkout verifies the logged entry is a deep copy:
// later plan mutations do not reach into history.
func TestAppendSnapshotsWorkout(t *testing.T) {
	l := testLog()
	w := testWorkout(3, 2)

	if _, err := l.Append(w, time.Now()); err != nil {
		t.Fatal(err)
	}
	w.WeightExercises[0].Completed = false

	entries, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].Workout.WeightExercises[0].Completed {
		t.Error("history entry shares storage with the logged workout")
	}
}

// TestCorruptBlobResets verifies an unparseable blob is cleared and an
// empty history returned instead of an error.
func TestCorruptBlobResets(t *testing.T) {
	store := NewMemStore()
	if err := store.Save(Key, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	l := NewLog(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	entries, err := l.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}

	// The corrupt blob is gone.
	data, err := store.Load(Key)
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Error("corrupt blob not cleared")
	}
}

// TestHasLoggedToday verifies the (week, day, calendar-day) match: true for
// an entry logged earlier today at the same key, false for yesterday at the
// same key, false for today at a different key.
func TestHasLoggedToday(t *testing.T) {
	now := time.Date(2025, time.April, 8, 20, 0, 0, 0, time.UTC)
	entries := []models.HistoryEntry{
		{CompletedDate: now.Add(-3 * time.Hour), Workout: testWorkout(2, 3)},
		{CompletedDate: now.AddDate(0, 0, -1), Workout: testWorkout(2, 4)},
	}

	if !HasLoggedToday(entries, 2, 3, now) {
		t.Error("same key logged earlier today: want true")
	}
	if HasLoggedToday(entries, 2, 4, now) {
		t.Error("same key logged yesterday: want false")
	}
	if HasLoggedToday(entries, 2, 5, now) {
		t.Error("different key today: want false")
	}
}

// TestSQLiteStoreRoundTrip verifies the sqlite-backed store persists blobs
// across reopens and deletes cleanly.
func TestSQLiteStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenSQLiteStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save("k", []byte(`[{"a":1}]`)); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = OpenSQLiteStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	data, err := store.Load("k")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"a":1}]` {
		t.Errorf("data = %q", data)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatal(err)
	}
	data, err = store.Load("k")
	if err != nil {
		t.Fatal(err)
	}
	if data != nil {
		t.Error("blob survived delete")
	}
}
