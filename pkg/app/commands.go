package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/notes"
)

// ResolvePath runs GetResolvedPath against cfg's sandbox without touching
// the journal.
func ResolvePath(ctx context.Context, cfg *config.Config, filename, directory string) (notes.Result, error) {
	resolver, err := NewResolver(cfg)
	if err != nil {
		return notes.Result{}, err
	}
	svc := notes.NewService(resolver, notes.Options{Logger: slog.New(slog.DiscardHandler)})
	return svc.ResolvedPath(ctx, filename, directory), nil
}

// TailJournal returns the n most recent journal entries, newest first.
func TailJournal(ctx context.Context, cfg *config.Config, n int) ([]journal.Entry, error) {
	store, err := OpenJournal(ctx, cfg.Journal)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Recent(ctx, n)
}

// PruneJournal deletes entries older than the configured retention and
// returns how many were removed. A zero retention removes nothing.
func PruneJournal(ctx context.Context, cfg *config.Config, now time.Time) (int64, error) {
	if cfg.Journal.Retention <= 0 {
		return 0, nil
	}
	store, err := OpenJournal(ctx, cfg.Journal)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	return store.Prune(ctx, now.Add(-cfg.Journal.Retention))
}
