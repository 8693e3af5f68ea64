// Package journaltest provides test doubles for the journal package.
package journaltest

import (
	"context"
	"sync"
	"time"

	"github.com/flemzord/notekeeper/internal/journal"
)

// FailingStore is a journal.Store whose every call fails with Err.
// It counts Append calls so tests can assert that recording was attempted.
type FailingStore struct {
	Err error

	mu          sync.Mutex
	AppendCalls int
}

var _ journal.Store = (*FailingStore)(nil)

// Append implements journal.Store.
func (s *FailingStore) Append(context.Context, journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AppendCalls++
	return s.Err
}

// Recent implements journal.Store.
func (s *FailingStore) Recent(context.Context, int) ([]journal.Entry, error) {
	return nil, s.Err
}

// Prune implements journal.Store.
func (s *FailingStore) Prune(context.Context, time.Time) (int64, error) {
	return 0, s.Err
}

// Close implements journal.Store.
func (s *FailingStore) Close() error { return nil }

// Calls returns the number of Append calls so far.
func (s *FailingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AppendCalls
}
