// Package gateway serves notekeeper over HTTP: the streamable MCP endpoint,
// a public health probe, Prometheus metrics, and a small authenticated
// admin surface.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/security"
)

// Options carries the handlers and collaborators the gateway mounts.
type Options struct {
	// MCP serves the MCP endpoint. Required.
	MCP http.Handler

	// Metrics serves /metrics. Nil leaves the route unmounted.
	Metrics http.Handler

	// HomeRoot is reported by /health.
	HomeRoot string

	// Tools lists the announced tools for /health and /status. It is
	// called per request so reloads show up.
	Tools func() []string

	// Journal backs /api/journal. Nil leaves the route unmounted.
	Journal journal.Store

	Audit  *security.AuditLogger
	Logger *slog.Logger
}

// Gateway is the HTTP server.
type Gateway struct {
	config    Config
	opts      Options
	logger    *slog.Logger
	counters  *Counters
	startedAt time.Time

	mu     sync.Mutex
	server *http.Server
	addr   net.Addr
	done   chan struct{}
}

// New creates a gateway. Call Start to begin serving.
func New(cfg Config, opts Options) *Gateway {
	cfg.defaults()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		config:   cfg,
		opts:     opts,
		logger:   logger.With("component", "gateway"),
		counters: &Counters{},
	}
}

func (g *Gateway) tools() []string {
	if g.opts.Tools == nil {
		return []string{}
	}
	if names := g.opts.Tools(); names != nil {
		return names
	}
	return []string{}
}

// Counters returns the gateway request counters.
func (g *Gateway) Counters() *Counters { return g.counters }

// Start listens on the configured address and serves in the background.
func (g *Gateway) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.server != nil {
		return errors.New("gateway: already started")
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", g.config.Bind)
	if err != nil {
		return fmt.Errorf("gateway: listen %s: %w", g.config.Bind, err)
	}

	g.startedAt = time.Now()
	g.server = &http.Server{
		Handler:      g.Handler(),
		ReadTimeout:  g.config.ReadTimeout,
		WriteTimeout: g.config.WriteTimeout,
	}
	g.addr = ln.Addr()
	g.done = make(chan struct{})

	srv, done := g.server, g.done
	go func() {
		defer close(done)
		g.logger.Info("gateway listening", "addr", ln.Addr().String(), "endpoint", g.config.Endpoint)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addr
}

// Stop shuts the server down gracefully within the configured timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	g.mu.Lock()
	srv, done := g.server, g.done
	g.mu.Unlock()
	if srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	err := srv.Shutdown(shutdownCtx)
	<-done
	return err
}
