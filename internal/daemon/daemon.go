// Package daemon runs notekeeper's HTTP gateway under the host's service
// manager (systemd, launchd, Windows SCM) through kardianos/service.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/kardianos/service"
)

// Service identity.
const (
	Name        = "notekeeper"
	DisplayName = "Notekeeper"
	Description = "Sandboxed local notes served over the Model Context Protocol."
)

const defaultStopTimeout = 10 * time.Second

// ErrUnknownAction is returned by Control for actions the service manager
// does not support.
var ErrUnknownAction = errors.New("daemon: unknown action")

// Config describes how the installed service launches notekeeper.
type Config struct {
	// ConfigPath is passed as --config when set.
	ConfigPath string

	// Executable overrides the binary path. Empty uses the running binary.
	Executable string

	// UserService installs a per-user service where supported.
	UserService bool

	// StopTimeout bounds how long Stop waits for the runner. Defaults to 10s.
	StopTimeout time.Duration
}

// Runner serves until ctx is cancelled.
type Runner func(ctx context.Context) error

// ServiceConfig builds the service manager definition. The service always
// runs the HTTP transport: a background service has no stdio host.
func ServiceConfig(cfg Config) *service.Config {
	args := []string{"serve", "--transport", "http"}
	if cfg.ConfigPath != "" {
		args = append(args, "--config", cfg.ConfigPath)
	}
	return &service.Config{
		Name:        Name,
		DisplayName: DisplayName,
		Description: Description,
		Executable:  cfg.Executable,
		Arguments:   args,
		Option: service.KeyValue{
			"UserService": cfg.UserService,
		},
	}
}

// program adapts a Runner to service.Interface.
type program struct {
	run     Runner
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
}

func newProgram(run Runner, timeout time.Duration, logger *slog.Logger) *program {
	if timeout <= 0 {
		timeout = defaultStopTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &program{run: run, timeout: timeout, logger: logger.With("component", "daemon")}
}

// Start implements service.Interface. It must not block.
func (p *program) Start(service.Service) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("daemon: already started")
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	done := p.done
	go func() {
		err := p.run(ctx)
		if err != nil {
			p.logger.Error("service runner exited", "error", err)
		}
		done <- err
	}()
	p.logger.Info("service started")
	return nil
}

// Stop implements service.Interface.
func (p *program) Stop(service.Service) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	select {
	case err := <-done:
		p.logger.Info("service stopped")
		return err
	case <-time.After(p.timeout):
		return fmt.Errorf("daemon: runner did not stop within %s", p.timeout)
	}
}

// New creates the service handle for cfg. run is what the service executes
// once the manager starts it.
func New(cfg Config, run Runner, logger *slog.Logger) (service.Service, error) {
	s, err := service.New(newProgram(run, cfg.StopTimeout, logger), ServiceConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("daemon: %w", err)
	}
	return s, nil
}

// Interactive reports whether the process was started from a terminal
// rather than by a service manager.
func Interactive() bool { return service.Interactive() }

// Actions lists the verbs accepted by Control.
func Actions() []string { return service.ControlAction[:] }

// Control runs a service manager action: start, stop, restart, install or
// uninstall.
func Control(s service.Service, action string) error {
	if !slices.Contains(Actions(), action) {
		return fmt.Errorf("%w %q (valid: %v)", ErrUnknownAction, action, Actions())
	}
	if err := service.Control(s, action); err != nil {
		return fmt.Errorf("daemon: %s: %w", action, err)
	}
	return nil
}

// Status reports the installed service state as a word: running, stopped,
// not installed or unknown.
func Status(s service.Service) (string, error) {
	st, err := s.Status()
	return describeStatus(st, err)
}

func describeStatus(st service.Status, err error) (string, error) {
	if errors.Is(err, service.ErrNotInstalled) {
		return "not installed", nil
	}
	if err != nil {
		return "", fmt.Errorf("daemon: status: %w", err)
	}
	switch st {
	case service.StatusRunning:
		return "running", nil
	case service.StatusStopped:
		return "stopped", nil
	default:
		return "unknown", nil
	}
}

// Run hands control to the service manager and blocks until it stops the
// service. Call it only when Interactive reports false.
func Run(cfg Config, run Runner, logger *slog.Logger) error {
	s, err := New(cfg, run, logger)
	if err != nil {
		return err
	}
	if err := s.Run(); err != nil {
		return fmt.Errorf("daemon: run: %w", err)
	}
	return nil
}
