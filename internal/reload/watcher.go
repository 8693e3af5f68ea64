// Package reload applies configuration changes to a running notekeeper:
// a Watcher polls the config file and a Handler loads, validates and hands
// the new configuration to an Applier.
package reload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"sync"
	"time"
)

const defaultPollInterval = 5 * time.Second

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Path is the configuration file to watch.
	Path string

	// PollInterval defaults to 5 seconds.
	PollInterval time.Duration
}

// Event reports that the watched file's content changed.
type Event struct {
	Path string
}

// Watcher polls a file and emits an Event when its content changes.
// Comparing content rather than mtimes catches rewrites within the
// filesystem's timestamp granularity and ignores touch-only updates.
type Watcher struct {
	path     string
	interval time.Duration
	events   chan Event

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewWatcher creates a watcher. Call Start to begin polling.
func NewWatcher(cfg WatcherConfig) *Watcher {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Watcher{
		path:     cfg.Path,
		interval: interval,
		events:   make(chan Event, 1),
	}
}

// Events returns the change notifications. Changes that arrive while an
// event is still pending are coalesced into it.
func (w *Watcher) Events() <-chan Event { return w.events }

// Start begins polling until ctx is cancelled or Stop is called. Extra
// calls are no-ops.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.stopped = make(chan struct{})
	go w.poll(ctx, w.stopped)
}

// Stop halts polling and waits for the poller to exit. Safe before Start
// and more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, stopped := w.cancel, w.stopped
	w.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (w *Watcher) poll(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	last := w.digest()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.digest()
			// A missing or unreadable file is usually an editor mid-save.
			if current == nil || bytes.Equal(current, last) {
				continue
			}
			last = current
			select {
			case w.events <- Event{Path: w.path}:
			default:
			}
		}
	}
}

func (w *Watcher) digest() []byte {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return sum[:]
}
