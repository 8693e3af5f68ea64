package reload

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/flemzord/notekeeper/internal/config"
)

// Applier applies the hot-reloadable part of a configuration.
type Applier interface {
	ApplyConfig(cfg *config.Config) error
}

// Handler reloads the configuration file into an Applier. Reloads are
// serialized.
type Handler struct {
	path    string
	applier Applier
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewHandler creates a reload handler for the file at path.
func NewHandler(path string, applier Applier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		path:    path,
		applier: applier,
		logger:  logger.With("component", "reload"),
	}
}

// Path returns the watched configuration file.
func (h *Handler) Path() string { return h.path }

// Reload loads and validates the file, then applies it. An unreadable or
// invalid file leaves the running configuration untouched.
func (h *Handler) Reload() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := config.Load(h.path)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if err := h.applier.ApplyConfig(cfg); err != nil {
		return fmt.Errorf("reload: applying configuration: %w", err)
	}
	h.logger.Info("configuration reloaded", "path", h.path)
	return nil
}
