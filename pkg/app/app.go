// Package app is the composition root shared by every notekeeper entry
// point: it turns a validated Config into wired components and runs them.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/cron"
	"github.com/flemzord/notekeeper/internal/gateway"
	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/mcpserver"
	"github.com/flemzord/notekeeper/internal/notes"
	"github.com/flemzord/notekeeper/internal/prompt"
	"github.com/flemzord/notekeeper/internal/sandbox"
	"github.com/flemzord/notekeeper/internal/security"
	"github.com/flemzord/notekeeper/internal/telemetry"
	"github.com/flemzord/notekeeper/internal/tool"
)

const serviceName = "notekeeper"

const instructions = "Local file notes. Every directory is resolved inside the user's home directory; " +
	"when no directory is given, files go to a default notes folder."

// Options carries what Build cannot derive from the Config.
type Options struct {
	// Version is announced to MCP hosts and tagged on spans.
	Version string

	// Logger is the root logger. Defaults to slog.Default().
	Logger *slog.Logger

	// AuditWriter overrides the audit.path file. Used by tests.
	AuditWriter io.Writer

	// Redactor is applied to audit records. Defaults to a fresh one.
	Redactor *security.Redactor

	// Level, when set, follows log.level on configuration reloads.
	Level *slog.LevelVar
}

// App holds every wired component of a running notekeeper.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Resolver  *sandbox.Resolver
	Notes     *notes.Service
	Registry  *tool.Registry
	MCP       *mcpserver.Server
	Journal   journal.Store
	Metrics   *telemetry.Metrics
	Scheduler *cron.Scheduler
	Gateway   *gateway.Gateway

	level   *slog.LevelVar
	tracing *telemetry.Tracing
	closers []io.Closer
}

// ResolveHomeRoot returns the absolute, cleaned sandbox root: the configured
// home_root when set, the current user's home directory otherwise.
func ResolveHomeRoot(cfg *config.Config) (string, error) {
	root := cfg.HomeRoot
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("app: determining home directory: %w", err)
		}
		root = home
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("app: home root %q: %w", root, err)
	}
	return filepath.Clean(abs), nil
}

// NewResolver builds the sandbox resolver described by cfg.
func NewResolver(cfg *config.Config) (*sandbox.Resolver, error) {
	home, err := ResolveHomeRoot(cfg)
	if err != nil {
		return nil, err
	}
	return sandbox.New(sandbox.Config{HomeRoot: home, DefaultSubpath: cfg.DefaultSubpath})
}

// Build wires every component from cfg. Nothing is started; call Start or
// ServeStdio, then Close.
func Build(ctx context.Context, cfg *config.Config, opts Options) (_ *App, err error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	redactor := opts.Redactor
	if redactor == nil {
		redactor = security.NewRedactor(cfg.HTTP.BearerToken)
	}

	a := &App{Config: cfg, Logger: logger, level: opts.Level}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.Resolver, err = NewResolver(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.Journal.IsEnabled() {
		a.Journal = openJournal(ctx, cfg.Journal, logger)
		a.closers = append(a.closers, a.Journal)
	}

	a.Metrics = telemetry.NewMetrics()
	a.tracing, err = telemetry.NewTracing(ctx, cfg.Tracing, serviceName, opts.Version)
	if err != nil {
		return nil, err
	}

	a.Notes = notes.NewService(a.Resolver, notes.Options{
		Logger:  logger,
		Journal: a.Journal,
		Metrics: a.Metrics,
		Tracer:  a.tracing.Tracer("github.com/flemzord/notekeeper/internal/notes"),
	})

	auditWriter := opts.AuditWriter
	if auditWriter == nil && cfg.Audit.Path != "" {
		f, err := openAuditFile(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f)
		auditWriter = f
	}
	auditLogger := security.NewAuditLogger(security.AuditLoggerConfig{
		Writer:   auditWriter,
		Redactor: redactor,
	})

	a.Registry, err = buildRegistry(cfg, a.Notes, auditLogger)
	if err != nil {
		return nil, err
	}

	a.MCP = mcpserver.New(mcpserver.Config{
		Name:         serviceName,
		Version:      opts.Version,
		Instructions: instructions,
	}, a.Registry, prompt.NewCatalog(prompt.Defaults()...), logger)

	a.Scheduler = cron.NewScheduler(logger)
	if a.Journal != nil {
		job := journal.NewPruneJob(a.Journal, cfg.Journal.Retention, cfg.Journal.PruneSchedule, logger.With("component", "journal"))
		if err := a.Scheduler.RegisterJob(job); err != nil {
			return nil, err
		}
	}

	if cfg.Transport == config.TransportHTTP {
		a.Gateway = gateway.New(gateway.Config{
			Bind:            cfg.HTTP.Bind,
			Endpoint:        cfg.HTTP.Endpoint,
			BearerToken:     cfg.HTTP.BearerToken,
			ReadTimeout:     cfg.HTTP.ReadTimeout,
			WriteTimeout:    cfg.HTTP.WriteTimeout,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
		}, gateway.Options{
			MCP:      a.MCP.HTTPHandler(cfg.HTTP.Endpoint),
			Metrics:  a.Metrics.Handler(),
			HomeRoot: a.Resolver.HomeRoot(),
			Tools:    a.MCP.Tools,
			Journal:  a.Journal,
			Audit:    auditLogger,
			Logger:   logger,
		})
	}

	logger.Info("notekeeper ready",
		"home_root", a.Resolver.HomeRoot(),
		"default_dir", a.Resolver.DefaultDir(),
		"transport", cfg.Transport,
		"tools", a.MCP.Tools(),
		"journal", a.Journal != nil,
	)
	return a, nil
}

// ApplyConfig implements reload.Applier. Tool policy, rate limit and log
// level take effect immediately; other changed settings are reported and
// wait for a restart.
func (a *App) ApplyConfig(cfg *config.Config) error {
	level, err := ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if a.level != nil {
		a.level.Set(level)
	}
	a.Registry.SetPolicy(cfg.Tools)
	// A fresh limiter starts with a full bucket.
	if cfg.RateLimit != a.Config.RateLimit {
		a.Registry.SetRateLimiter(security.NewRateLimiter(cfg.RateLimit))
	}
	a.MCP.SyncTools()

	for _, name := range restartRequired(a.Config, cfg) {
		a.Logger.Warn("setting changed, restart to apply", "setting", name)
	}
	a.Config.Log.Level = cfg.Log.Level
	a.Config.Tools = cfg.Tools
	a.Config.RateLimit = cfg.RateLimit
	return nil
}

// restartRequired lists the settings that differ between the running and
// the reloaded configuration but are fixed at startup. Transport is left
// out: the command line may override it.
func restartRequired(running, next *config.Config) []string {
	var changed []string
	check := func(name string, differs bool) {
		if differs {
			changed = append(changed, name)
		}
	}
	check("home_root", running.HomeRoot != next.HomeRoot)
	check("default_subpath", running.DefaultSubpath != next.DefaultSubpath)
	check("http", running.HTTP != next.HTTP)
	check("log.format", running.Log.Format != next.Log.Format)
	check("journal", running.Journal.IsEnabled() != next.Journal.IsEnabled() ||
		running.Journal.Path != next.Journal.Path ||
		running.Journal.Retention != next.Journal.Retention ||
		running.Journal.PruneSchedule != next.Journal.PruneSchedule)
	check("audit", running.Audit != next.Audit)
	check("tracing", running.Tracing != next.Tracing)
	return changed
}

// Start launches background components: the scheduler and, in HTTP mode,
// the gateway. It does not block.
func (a *App) Start(ctx context.Context) error {
	if err := a.Scheduler.Start(ctx); err != nil {
		return err
	}
	if a.Gateway != nil {
		if err := a.Gateway.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ServeStdio speaks MCP over in/out until in is closed or ctx is cancelled.
func (a *App) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return a.MCP.ServeStdio(ctx, in, out)
}

// Close stops every started component and releases resources. It is safe
// to call on a partially built App.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Gateway != nil {
		errs = append(errs, a.Gateway.Stop(ctx))
	}
	if a.Scheduler != nil {
		errs = append(errs, a.Scheduler.Stop(ctx))
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
