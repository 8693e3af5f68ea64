package journal

import (
	"context"
	"testing"
	"time"
)

func TestPruneJob_Defaults(t *testing.T) {
	t.Parallel()

	j := NewPruneJob(NewMemStore(), time.Hour, "", nil)
	if j.Name() != "journal.prune" {
		t.Errorf("Name() = %q", j.Name())
	}
	if j.Schedule() != DefaultPruneSchedule {
		t.Errorf("Schedule() = %q, want %q", j.Schedule(), DefaultPruneSchedule)
	}
}

func TestPruneJob_Run(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	s := NewMemStore()

	old := NewEntry("create_file", "a.txt", "/d", "ok", 1)
	old.Time = now.Add(-31 * 24 * time.Hour)
	recent := NewEntry("create_file", "b.txt", "/d", "ok", 1)
	recent.Time = now.Add(-time.Hour)
	_ = s.Append(ctx, old)
	_ = s.Append(ctx, recent)

	j := NewPruneJob(s, 30*24*time.Hour, "*/5 * * * *", nil)
	j.now = func() time.Time { return now }

	if err := j.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	left, _ := s.Recent(ctx, 10)
	if len(left) != 1 || left[0].Filename != "b.txt" {
		t.Errorf("remaining = %+v, want only b.txt", left)
	}
}

func TestPruneJob_ZeroRetentionKeepsAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemStore()
	e := NewEntry("create_file", "a.txt", "/d", "ok", 1)
	e.Time = time.Unix(0, 0)
	_ = s.Append(ctx, e)

	if err := NewPruneJob(s, 0, "", nil).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if left, _ := s.Recent(ctx, 10); len(left) != 1 {
		t.Errorf("len = %d, want 1", len(left))
	}
}
