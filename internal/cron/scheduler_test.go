package cron_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/flemzord/notekeeper/internal/cron"
	"github.com/flemzord/notekeeper/internal/cron/crontest"
	"github.com/flemzord/notekeeper/internal/journal"
)

func TestScheduler_RegisterJob_DuplicateName(t *testing.T) {
	t.Parallel()

	s := cron.NewScheduler(slog.Default())
	if err := s.RegisterJob(&crontest.MockJob{NameVal: "test", ScheduleVal: "* * * * *"}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := s.RegisterJob(&crontest.MockJob{NameVal: "test", ScheduleVal: "* * * * *"}); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestScheduler_Start_InvalidSchedule(t *testing.T) {
	t.Parallel()

	s := cron.NewScheduler(nil)
	_ = s.RegisterJob(&crontest.MockJob{NameVal: "bad", ScheduleVal: "invalid"})
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestScheduler_StartStopAndNext(t *testing.T) {
	t.Parallel()

	s := cron.NewScheduler(nil)
	_ = s.RegisterJob(&crontest.MockJob{NameVal: "noop", ScheduleVal: "0 3 * * *"})

	if !s.Next("noop").IsZero() {
		t.Error("Next before Start should be zero")
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	next := s.Next("noop")
	if next.IsZero() || next.Local().Hour() != 3 || next.Minute() != 0 {
		t.Errorf("Next = %v, want 03:00", next)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop failed: %v", err)
	}
}

func TestScheduler_StopWithoutStart(t *testing.T) {
	t.Parallel()

	if err := cron.NewScheduler(nil).Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestScheduler_RunNow(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	s := cron.NewScheduler(nil)
	ok := &crontest.MockJob{NameVal: "ok", ScheduleVal: "* * * * *"}
	failing := &crontest.MockJob{
		NameVal:     "failing",
		ScheduleVal: "* * * * *",
		RunFunc:     func(context.Context) error { return boom },
	}
	_ = s.RegisterJob(ok)
	_ = s.RegisterJob(failing)

	if err := s.RunNow(context.Background(), "ok"); err != nil {
		t.Fatalf("RunNow(ok): %v", err)
	}
	if ok.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", ok.CallCount())
	}
	if err := s.RunNow(context.Background(), "failing"); !errors.Is(err, boom) {
		t.Errorf("RunNow(failing) = %v, want boom", err)
	}
	if err := s.RunNow(context.Background(), "missing"); !errors.Is(err, cron.ErrJobNotFound) {
		t.Errorf("RunNow(missing) = %v, want ErrJobNotFound", err)
	}
}

func TestScheduler_NoOverlap(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	s := cron.NewScheduler(nil)
	_ = s.RegisterJob(&crontest.MockJob{
		NameVal:     "slow",
		ScheduleVal: "* * * * *",
		RunFunc: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- s.RunNow(context.Background(), "slow") }()
	<-started

	if err := s.RunNow(context.Background(), "slow"); !errors.Is(err, cron.ErrJobRunning) {
		t.Errorf("overlapping RunNow = %v, want ErrJobRunning", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first RunNow: %v", err)
	}
}

func TestScheduler_JournalPruneJob(t *testing.T) {
	t.Parallel()

	store := journal.NewMemStore()
	ctx := context.Background()
	old := journal.NewEntry("create_file", "a.txt", "/h", "ok", 1)
	old.Time = time.Now().Add(-48 * time.Hour)
	_ = store.Append(ctx, old)
	_ = store.Append(ctx, journal.NewEntry("read_notes", "a.txt", "/h", "ok", 1))

	s := cron.NewScheduler(nil)
	if err := s.RegisterJob(journal.NewPruneJob(store, 24*time.Hour, "", nil)); err != nil {
		t.Fatalf("RegisterJob: %v", err)
	}
	if err := s.RunNow(ctx, "journal.prune"); err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	left, _ := store.Recent(ctx, 10)
	if len(left) != 1 || left[0].Operation != "read_notes" {
		t.Errorf("remaining entries = %+v", left)
	}
}

func FuzzParseSchedule(f *testing.F) {
	for _, seed := range []string{"*/5 * * * *", "0 3 * * *", "0 0 1 1 *", "invalid", "", "60 * * * *"} {
		f.Add(seed)
	}
	f.Fuzz(func(_ *testing.T, expr string) {
		_ = cron.ParseSchedule(expr)
	})
}
