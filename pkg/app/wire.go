package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/notes"
	"github.com/flemzord/notekeeper/internal/security"
	"github.com/flemzord/notekeeper/internal/tool"
	"github.com/flemzord/notekeeper/modules/journal/sqlite"
)

// JournalPath returns the SQLite journal location for cfg.
func JournalPath(cfg config.JournalConfig) string {
	if cfg.Path != "" {
		return cfg.Path
	}
	return sqlite.DefaultPath(config.DefaultDataDir())
}

// OpenJournal opens the persistent journal described by cfg.
func OpenJournal(ctx context.Context, cfg config.JournalConfig) (*sqlite.Store, error) {
	return sqlite.Open(ctx, sqlite.Config{Path: JournalPath(cfg)})
}

// openJournal opens the SQLite journal, falling back to an in-memory store
// when it cannot be opened. Journaling never blocks startup.
func openJournal(ctx context.Context, cfg config.JournalConfig, logger *slog.Logger) journal.Store {
	store, err := OpenJournal(ctx, cfg)
	if err != nil {
		logger.Warn("journal unavailable, keeping entries in memory", "path", JournalPath(cfg), "error", err)
		return journal.NewMemStore()
	}
	return store
}

// buildRegistry registers the file tools behind the configured policy,
// rate limiter and audit logger.
func buildRegistry(cfg *config.Config, svc *notes.Service, audit *security.AuditLogger) (*tool.Registry, error) {
	registry := tool.NewRegistry()
	registry.SetPolicy(cfg.Tools)
	registry.SetAuditLogger(audit)
	registry.SetRateLimiter(security.NewRateLimiter(cfg.RateLimit))
	if err := notes.RegisterTools(registry, svc); err != nil {
		return nil, fmt.Errorf("app: registering tools: %w", err)
	}
	return registry, nil
}

func openAuditFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("app: creating audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("app: opening audit log: %w", err)
	}
	return f, nil
}
