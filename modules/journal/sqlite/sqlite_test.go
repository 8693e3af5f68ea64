package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/modules/journal/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(context.Background(), sqlite.Config{
		Path: filepath.Join(t.TempDir(), "journal.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesDirectory(t *testing.T) {
	t.Parallel()

	s, err := sqlite.Open(context.Background(), sqlite.Config{
		Path: filepath.Join(t.TempDir(), "nested", "dir", "journal.db"),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = s.Close()
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := sqlite.Open(context.Background(), sqlite.Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := sqlite.Open(ctx, sqlite.Config{Path: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Append(ctx, journal.NewEntry("create_file", "a.txt", "/d", "ok", 5)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_ = s.Close()

	s, err = sqlite.Open(ctx, sqlite.Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Filename != "a.txt" || got[0].Bytes != 5 {
		t.Errorf("Recent after reopen = %+v", got)
	}
}

func TestStore_RecentAndPrune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now().UTC()

	old := journal.NewEntry("append_note", "notes.txt", "/d", "ok", 2)
	old.Time = now.Add(-72 * time.Hour)
	mid := journal.NewEntry("read_notes", "notes.txt", "/d", "file_not_found", 0)
	mid.Time = now.Add(-time.Hour)
	latest := journal.NewEntry("create_file", "todo.txt", "/d", "ok", 11)
	latest.Time = now

	for _, e := range []journal.Entry{old, mid, latest} {
		if err := s.Append(ctx, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != latest.ID || got[1].ID != mid.ID {
		t.Fatalf("Recent(2) = %+v, want latest then mid", got)
	}
	if got[1].Outcome != "file_not_found" {
		t.Errorf("Outcome = %q", got[1].Outcome)
	}
	if !got[0].Time.Equal(latest.Time) {
		t.Errorf("Time = %v, want %v", got[0].Time, latest.Time)
	}

	n, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	all, _ := s.Recent(ctx, 10)
	if len(all) != 2 {
		t.Errorf("len after prune = %d, want 2", len(all))
	}
}

func TestStore_Closed(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	err := s.Append(context.Background(), journal.NewEntry("create_file", "a", "/d", "ok", 0))
	if !errors.Is(err, journal.ErrClosed) {
		t.Errorf("Append after Close = %v, want ErrClosed", err)
	}
}
