package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var (
	// ErrJobNotFound is returned by RunNow for unknown job names.
	ErrJobNotFound = errors.New("cron: job not found")

	// ErrJobRunning is returned by RunNow when the job is already running.
	ErrJobRunning = errors.New("cron: job already running")
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseSchedule validates a 5-field cron expression.
func ParseSchedule(expr string) error {
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("cron: invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Scheduler runs registered jobs on their schedules. A job never overlaps
// with itself: a tick that finds the previous run still going is skipped.
type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   map[string]*entry
	order  []string
	logger *slog.Logger
	cancel context.CancelFunc
}

type entry struct {
	job  Job
	lock sync.Mutex
	id   cron.EntryID
}

// NewScheduler creates a scheduler. Jobs must be registered before Start.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		jobs:   make(map[string]*entry),
		logger: logger.With("component", "cron"),
	}
}

// RegisterJob adds a job. Names must be unique.
func (s *Scheduler) RegisterJob(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := j.Name()
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("cron: duplicate job name %q", name)
	}
	s.jobs[name] = &entry{job: j}
	s.order = append(s.order, name)
	return nil
}

// Start schedules every registered job. Jobs receive a context derived from
// ctx that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithParser(parser))

	for _, name := range s.order {
		e := s.jobs[name]
		id, err := c.AddFunc(e.job.Schedule(), func() {
			if err := s.run(runCtx, e); errors.Is(err, ErrJobRunning) {
				s.logger.Warn("job still running, skipping tick", "job", e.job.Name())
			}
		})
		if err != nil {
			cancel()
			return fmt.Errorf("cron: invalid schedule for job %q: %w", name, err)
		}
		e.id = id
	}

	s.cron = c
	s.cancel = cancel
	c.Start()
	s.logger.Info("scheduler started", "jobs", len(s.order))
	return nil
}

// RunNow runs the named job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	e, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.run(ctx, e)
}

// Next returns the next scheduled run of the named job, or the zero time
// when the scheduler is not started.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.jobs[name]
	if !ok || s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(e.id).Next
}

func (s *Scheduler) run(ctx context.Context, e *entry) error {
	if !e.lock.TryLock() {
		return fmt.Errorf("%w: %s", ErrJobRunning, e.job.Name())
	}
	defer e.lock.Unlock()

	start := time.Now()
	s.logger.Debug("job started", "job", e.job.Name())
	if err := e.job.Run(ctx); err != nil {
		s.logger.Error("job failed", "job", e.job.Name(), "error", err)
		return err
	}
	s.logger.Debug("job completed", "job", e.job.Name(), "elapsed", time.Since(start))
	return nil
}

// Stop cancels running jobs' contexts and waits for them to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.cron == nil {
		return nil
	}
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
