package app

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/reload"
	"github.com/flemzord/notekeeper/internal/security"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, the standard locations are searched and built-in defaults
	// are used when none exists.
	ConfigPath string

	// Transport overrides the configured transport when non-empty.
	Transport string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// Stdin and Stdout carry the stdio transport. Default to the process
	// streams. Logs always go to Stderr.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (p *RunParams) defaults() {
	if p.Stdin == nil {
		p.Stdin = os.Stdin
	}
	if p.Stdout == nil {
		p.Stdout = os.Stdout
	}
	if p.Stderr == nil {
		p.Stderr = os.Stderr
	}
}

// LoadConfig loads and validates the configuration. transport, when set,
// replaces the configured transport before validation. The returned path
// is the file used, or empty when built-in defaults apply.
func LoadConfig(path, transport string) (*config.Config, string, error) {
	cfg, used, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	if transport != "" {
		cfg.Transport = transport
	}
	if err := config.Validate(cfg); err != nil {
		return nil, "", err
	}
	return cfg, used, nil
}

// Run loads configuration, builds and starts every component, and serves
// until the host disconnects (stdio), ctx is cancelled, or SIGINT/SIGTERM
// is received. SIGHUP and edits to the config file reload the settings
// that can change at runtime.
func Run(ctx context.Context, params RunParams) error {
	params.defaults()

	cfg, cfgPath, err := LoadConfig(params.ConfigPath, params.Transport)
	if err != nil {
		return err
	}

	// The bearer token is a known secret: keep it out of logs and audit.
	redactor := security.NewRedactor(cfg.HTTP.BearerToken)
	logger, level, err := NewLogger(cfg.Log, params.Stderr, redactor)
	if err != nil {
		return err
	}
	if cfgPath == "" {
		logger.Info("no configuration file found, using defaults", "searched", config.Candidates())
	} else {
		logger.Info("configuration loaded", "path", cfgPath)
	}
	logger.Debug("build info", "version", params.Version, "commit", params.Commit, "date", params.Date)

	a, err := Build(ctx, cfg, Options{
		Version:  params.Version,
		Logger:   logger,
		Redactor: redactor,
		Level:    level,
	})
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		_ = a.Close(context.Background())
		return err
	}

	// --- signal handling ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	// --- config watcher ---
	var (
		handler *reload.Handler
		changes <-chan reload.Event
	)
	if cfgPath != "" {
		handler = reload.NewHandler(cfgPath, a, logger)
		watcher := reload.NewWatcher(reload.WatcherConfig{Path: cfgPath})
		watcher.Start(ctx)
		defer watcher.Stop()
		changes = watcher.Events()
	}

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- a.serve(serveCtx, params.Stdin, params.Stdout)
	}()

	// --- main event loop ---
	var serveErr error
loop:
	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				if handler == nil {
					logger.Warn("SIGHUP ignored, running without a configuration file")
					continue
				}
				logger.Info("SIGHUP received, reloading configuration")
				if err := handler.Reload(); err != nil {
					logger.Error("reload failed", "error", err)
				}
				continue
			}
			logger.Info("shutdown signal received", "signal", sig.String())
			cancel()
			serveErr = <-done
			break loop
		case evt := <-changes:
			logger.Info("config file changed, reloading", "path", evt.Path)
			if err := handler.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			}
		case serveErr = <-done:
			break loop
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer stop()
	closeErr := a.Close(shutdownCtx)
	logger.Info("shutdown complete")
	return errors.Join(serveErr, closeErr)
}

// serve blocks for the lifetime of the transport.
func (a *App) serve(ctx context.Context, in io.Reader, out io.Writer) error {
	if a.Gateway != nil {
		<-ctx.Done()
		return nil
	}
	return a.ServeStdio(ctx, in, out)
}
