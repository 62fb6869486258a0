package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/tasktraq/backend/apperr"
	"github.com/tasktraq/backend/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(NewMemorySnapshotter(), zap.NewNop())
}

func TestUpsertLogSecondCallWins(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.UpsertLog("u1", "h1", "2024-03-01", 1); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if _, err := s.UpsertLog("u1", "h1", "2024-03-01", 0); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	logs := s.QueryLogs(LogFilter{UserID: "u1", HabitID: "h1"}, 2024, 3)
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry after duplicate upsert, got %d", len(logs))
	}
	if logs[0].Completed != 0 {
		t.Fatalf("expected second value to win, got completed=%d", logs[0].Completed)
	}
}

func TestQueryLogsFiltersByMonthAndKey(t *testing.T) {
	s := newTestStore(t)

	seed := []struct {
		user, habit, date string
	}{
		{"u1", "h1", "2024-03-05"},
		{"u1", "h1", "2024-04-05"},
		{"u1", "h2", "2024-03-06"},
		{"u2", "h3", "2024-03-07"},
	}
	for _, e := range seed {
		if _, err := s.UpsertLog(e.user, e.habit, e.date, 1); err != nil {
			t.Fatalf("seed %v: %v", e, err)
		}
	}

	byHabit := s.QueryLogs(LogFilter{HabitID: "h1"}, 2024, 3)
	if len(byHabit) != 1 || byHabit[0].Date != "2024-03-05" {
		t.Fatalf("habit filter: got %+v", byHabit)
	}

	byUser := s.QueryLogs(LogFilter{UserID: "u1"}, 2024, 3)
	if len(byUser) != 2 {
		t.Fatalf("user filter: expected 2 entries, got %d", len(byUser))
	}
	// insertion order is preserved
	if byUser[0].HabitID != "h1" || byUser[1].HabitID != "h2" {
		t.Fatalf("unexpected order: %+v", byUser)
	}

	all := s.QueryLogs(LogFilter{}, 2024, 3)
	if len(all) != 3 {
		t.Fatalf("no filter: expected 3 entries, got %d", len(all))
	}
}

func TestDeleteLogsForHabit(t *testing.T) {
	s := newTestStore(t)

	s.UpsertLog("u1", "h1", "2024-03-01", 1)
	s.UpsertLog("u1", "h1", "2024-03-02", 1)
	s.UpsertLog("u1", "h2", "2024-03-01", 1)

	if err := s.DeleteLogsForHabit("h1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := s.QueryLogs(LogFilter{HabitID: "h1"}, 2024, 3); len(got) != 0 {
		t.Fatalf("expected no h1 entries, got %d", len(got))
	}
	if got := s.QueryLogs(LogFilter{HabitID: "h2"}, 2024, 3); len(got) != 1 {
		t.Fatalf("h2 entries should survive, got %d", len(got))
	}

	// idempotent
	if err := s.DeleteLogsForHabit("h1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestFileSnapshotterRoundTrip(t *testing.T) {
	dir := t.TempDir()

	snap, err := NewFileSnapshotter(dir)
	if err != nil {
		t.Fatalf("new snapshotter: %v", err)
	}
	s := Open(snap, zap.NewNop())

	habit := models.Habit{ID: "h1", UserID: "u1", Name: "Read", CreatedAt: time.Now().UTC()}
	if _, err := s.AddHabit(habit); err != nil {
		t.Fatalf("add habit: %v", err)
	}
	if _, err := s.UpsertLog("u1", "h1", "2024-03-01", 1); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	reopened := Open(snap, zap.NewNop())
	if got := reopened.UserHabits("u1"); len(got) != 1 || got[0].Name != "Read" {
		t.Fatalf("habits did not survive reopen: %+v", got)
	}
	if got := reopened.QueryLogs(LogFilter{HabitID: "h1"}, 2024, 3); len(got) != 1 {
		t.Fatalf("logs did not survive reopen: %+v", got)
	}
}

func TestCorruptSnapshotLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "habits.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	snap, err := NewFileSnapshotter(dir)
	if err != nil {
		t.Fatalf("new snapshotter: %v", err)
	}
	s := Open(snap, zap.NewNop())

	if got := s.UserHabits("u1"); len(got) != 0 {
		t.Fatalf("corrupt collection should load empty, got %+v", got)
	}

	// the store must stay usable after a corrupt load
	if _, err := s.AddHabit(models.Habit{ID: "h1", UserID: "u1", Name: "Run"}); err != nil {
		t.Fatalf("add after corrupt load: %v", err)
	}
	if got := s.UserHabits("u1"); len(got) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(got))
	}
}

type failingSnapshotter struct {
	inner Snapshotter
	fail  bool
}

func (f *failingSnapshotter) Load(name string, v any) error { return f.inner.Load(name, v) }

func (f *failingSnapshotter) Save(name string, v any) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.inner.Save(name, v)
}

func TestWriteFailureRollsBack(t *testing.T) {
	snap := &failingSnapshotter{inner: NewMemorySnapshotter()}
	s := Open(snap, zap.NewNop())

	snap.fail = true
	_, err := s.UpsertLog("u1", "h1", "2024-03-01", 1)
	if err == nil {
		t.Fatal("expected error from failed save")
	}
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected StoreError, got %T", err)
	}

	snap.fail = false
	if got := s.QueryLogs(LogFilter{}, 2024, 3); len(got) != 0 {
		t.Fatalf("failed write must not leave the entry behind, got %d", len(got))
	}
}
