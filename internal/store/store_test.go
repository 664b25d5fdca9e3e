package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/abhisek/linuxstory/internal/progress"
	"github.com/abhisek/linuxstory/internal/story"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	for _, table := range []string{tableSnapshots, tableEvents, "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st := progress.NewState(story.StepID{Challenge: "town", Index: 1})
	if err := s.ProgressRepo(5).Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.ProgressRepo(5).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || got.Cursor != st.Cursor {
		t.Fatalf("cursor after reopen = %v, want %v", got, st.Cursor)
	}
}

func TestProgressLoadEmpty(t *testing.T) {
	s := openTestStore(t)

	st, err := s.ProgressRepo(5).Load(context.Background())
	if err != nil {
		t.Fatalf("load (empty): %v", err)
	}
	if st != nil {
		t.Fatal("expected nil state when nothing saved")
	}
}

func TestProgressRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo(5)
	ctx := context.Background()

	want := progress.NewState(story.StepID{Challenge: "town", Index: 2})
	want.Attempts[story.StepID{Challenge: "town", Index: 2}] = 3
	want.HintsShown[story.StepID{Challenge: "town", Index: 2}] = 1
	want.Completed["intro"] = true
	want.UpdatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestProgressLatestWinsAndPrunes(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo(3)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		st := progress.NewState(story.StepID{Challenge: "intro", Index: i})
		if err := repo.Save(ctx, st); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("remaining snapshots = %d, want 3", count)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Cursor.Index != 6 {
		t.Errorf("latest cursor index = %d, want 6", got.Cursor.Index)
	}
}

func TestProgressClear(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo(5)
	ctx := context.Background()

	if err := repo.Save(ctx, progress.NewState(story.StepID{Challenge: "intro"})); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil state after clear, got %+v", st)
	}
}

func TestProgressSaveCancelledKeepsPrevious(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo(5)

	first := progress.NewState(story.StepID{Challenge: "intro", Index: 1})
	if err := repo.Save(context.Background(), first); err != nil {
		t.Fatalf("save: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repo.Save(ctx, progress.NewState(story.StepID{Challenge: "town"})); err == nil {
		t.Fatal("expected error saving with cancelled context")
	}

	got, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Cursor != first.Cursor {
		t.Errorf("cursor = %v, want %v", got.Cursor, first.Cursor)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	db := s.db
	ctx := context.Background()

	sc, err := newSequenceCounter(db)
	if err != nil {
		t.Fatalf("new sequence counter: %v", err)
	}

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "story.db")
		t.Setenv("LINUXSTORY_DB", want)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("LINUXSTORY_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatalf("DefaultDBPath: %v", err)
		}
		want := filepath.Join(dir, "linuxstory", "linuxstory.db")
		if got != want {
			t.Errorf("path = %q, want %q", got, want)
		}
	})
}
