package journal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemStore_RecentNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if err := s.Append(ctx, NewEntry("create_file", name, "/home/alice", "ok", 1)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Filename != "c.txt" || got[1].Filename != "b.txt" {
		t.Errorf("Recent order = %s, %s; want c.txt, b.txt", got[0].Filename, got[1].Filename)
	}

	all, _ := s.Recent(ctx, 10)
	if len(all) != 3 {
		t.Errorf("Recent(10) len = %d, want 3", len(all))
	}
	none, _ := s.Recent(ctx, 0)
	if none != nil {
		t.Errorf("Recent(0) = %v, want nil", none)
	}
}

func TestMemStore_Prune(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()
	now := time.Now()

	old := NewEntry("append_note", "notes.txt", "/d", "ok", 3)
	old.Time = now.Add(-48 * time.Hour)
	fresh := NewEntry("append_note", "notes.txt", "/d", "ok", 3)
	fresh.Time = now

	_ = s.Append(ctx, old)
	_ = s.Append(ctx, fresh)

	n, err := s.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	left, _ := s.Recent(ctx, 10)
	if len(left) != 1 || left[0].ID != fresh.ID {
		t.Errorf("remaining = %+v, want only the fresh entry", left)
	}
}

func TestMemStore_Closed(t *testing.T) {
	t.Parallel()

	s := NewMemStore()
	_ = s.Close()

	if err := s.Append(context.Background(), Entry{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Append after Close = %v, want ErrClosed", err)
	}
	if _, err := s.Recent(context.Background(), 1); !errors.Is(err, ErrClosed) {
		t.Errorf("Recent after Close = %v, want ErrClosed", err)
	}
}

func TestNewEntry(t *testing.T) {
	t.Parallel()

	a := NewEntry("read_notes", "notes.txt", "/d", "file_not_found", 0)
	b := NewEntry("read_notes", "notes.txt", "/d", "file_not_found", 0)
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs not unique: %q %q", a.ID, b.ID)
	}
	if a.Time.IsZero() || a.Time.Location() != time.UTC {
		t.Errorf("Time = %v, want non-zero UTC", a.Time)
	}
}
