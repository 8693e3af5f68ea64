package journal

import (
	"context"
	"log/slog"
	"time"
)

// DefaultPruneSchedule runs retention pruning daily at 03:00.
const DefaultPruneSchedule = "0 3 * * *"

// PruneJob deletes entries older than a retention window. It satisfies the
// cron.Job interface.
type PruneJob struct {
	store     Store
	retention time.Duration
	schedule  string
	logger    *slog.Logger
	now       func() time.Time
}

// NewPruneJob creates a retention job. An empty schedule selects
// DefaultPruneSchedule.
func NewPruneJob(store Store, retention time.Duration, schedule string, logger *slog.Logger) *PruneJob {
	if schedule == "" {
		schedule = DefaultPruneSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PruneJob{
		store:     store,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       time.Now,
	}
}

// Name implements cron.Job.
func (j *PruneJob) Name() string { return "journal.prune" }

// Schedule implements cron.Job.
func (j *PruneJob) Schedule() string { return j.schedule }

// Run implements cron.Job. A zero retention keeps everything.
func (j *PruneJob) Run(ctx context.Context) error {
	if j.retention <= 0 {
		return nil
	}
	cutoff := j.now().Add(-j.retention)
	n, err := j.store.Prune(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger.Info("journal pruned", "removed", n, "cutoff", cutoff)
	}
	return nil
}
