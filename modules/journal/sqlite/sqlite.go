// Package sqlite implements a persistent journal.Store on SQLite using
// modernc.org/sqlite (pure Go, no CGO).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/flemzord/notekeeper/internal/journal"

	_ "modernc.org/sqlite" // SQLite driver registration
)

var _ journal.Store = (*Store)(nil)

// Store is a journal.Store backed by a single SQLite database.
type Store struct {
	db     *sql.DB
	closed atomic.Bool
}

// Open opens (creating if needed) the database described by cfg and
// migrates its schema. SQLite serialises writes, so a single connection
// is used.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	if cfg.walEnabled() {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Append implements journal.Store.
func (s *Store) Append(ctx context.Context, e journal.Entry) error {
	if s.closed.Load() {
		return journal.ErrClosed
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entries (id, created_at, operation, filename, directory, outcome, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UnixNano(), e.Operation, e.Filename, e.Directory, e.Outcome, e.Bytes,
	)
	if err != nil {
		return fmt.Errorf("sqlite: append entry: %w", err)
	}
	return nil
}

// Recent implements journal.Store.
func (s *Store) Recent(ctx context.Context, n int) ([]journal.Entry, error) {
	if s.closed.Load() {
		return nil, journal.ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, operation, filename, directory, outcome, bytes
		FROM entries
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query recent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []journal.Entry
	for rows.Next() {
		var (
			e  journal.Entry
			ns int64
		)
		if err := rows.Scan(&e.ID, &ns, &e.Operation, &e.Filename, &e.Directory, &e.Outcome, &e.Bytes); err != nil {
			return nil, fmt.Errorf("sqlite: scan entry: %w", err)
		}
		e.Time = time.Unix(0, ns).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate entries: %w", err)
	}
	return out, nil
}

// Prune implements journal.Store.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	if s.closed.Load() {
		return 0, journal.ErrClosed
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM entries WHERE created_at < ?", cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune rows affected: %w", err)
	}
	return n, nil
}

// Close implements journal.Store. Closing twice is a no-op.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("sqlite: close: %w", err)
	}
	return nil
}
