// Package journal records a history of file operations: which operation ran,
// on which file and directory, with which outcome and how many bytes were
// involved. File contents are never stored.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded operation.
type Entry struct {
	ID        string
	Time      time.Time
	Operation string
	Filename  string
	Directory string
	Outcome   string
	Bytes     int
}

// NewEntry returns an Entry stamped with a fresh ID and the current UTC time.
func NewEntry(operation, filename, directory, outcome string, bytes int) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Time:      time.Now().UTC(),
		Operation: operation,
		Filename:  filename,
		Directory: directory,
		Outcome:   outcome,
		Bytes:     bytes,
	}
}

// Store persists journal entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append records an entry.
	Append(ctx context.Context, e Entry) error

	// Recent returns up to n entries, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)

	// Prune deletes entries recorded strictly before cutoff and returns
	// how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	// Close releases the store. Further calls return ErrClosed.
	Close() error
}
