package journal

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemStore is an in-memory Store, used when no persistent journal is
// configured and in tests.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	closed  bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

var _ Store = (*MemStore)(nil)

// Append implements Store.
func (s *MemStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.entries = append(s.entries, e)
	return nil
}

// Recent implements Store.
func (s *MemStore) Recent(_ context.Context, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}

	n = min(n, len(s.entries))
	out := make([]Entry, n)
	copy(out, s.entries[len(s.entries)-n:])
	slices.Reverse(out)
	return out, nil
}

// Prune implements Store.
func (s *MemStore) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e Entry) bool {
		return e.Time.Before(cutoff)
	})
	return int64(before - len(s.entries)), nil
}

// Close implements Store.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
