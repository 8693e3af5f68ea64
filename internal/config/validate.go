package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"slices"
	"strings"

	"github.com/flemzord/notekeeper/internal/cron"
)

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Validate checks the structural validity of a Config after defaults are
// applied. All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Version == "" {
		errs = append(errs, errors.New("config: version field is required"))
	} else if cfg.Version != "1" {
		errs = append(errs, fmt.Errorf("config: unsupported version %q (supported: \"1\")", cfg.Version))
	}

	if cfg.HomeRoot != "" && !filepath.IsAbs(cfg.HomeRoot) {
		errs = append(errs, fmt.Errorf("config: home_root %q must be absolute", cfg.HomeRoot))
	}
	errs = append(errs, validateSubpath(cfg.DefaultSubpath)...)

	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("config: transport %q must be %q or %q", cfg.Transport, TransportStdio, TransportHTTP))
	}

	errs = append(errs, validateHTTP(cfg.HTTP)...)

	if !slices.Contains(validLevels, cfg.Log.Level) {
		errs = append(errs, fmt.Errorf("config: log.level %q must be one of %v", cfg.Log.Level, validLevels))
	}
	if !slices.Contains(validFormats, cfg.Log.Format) {
		errs = append(errs, fmt.Errorf("config: log.format %q must be one of %v", cfg.Log.Format, validFormats))
	}

	for i, name := range cfg.Tools.Deny {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("config: tools.deny[%d]: empty tool name", i))
		}
	}

	if cfg.RateLimit.ToolCallsPerMin < 0 || cfg.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("config: rate_limit values must not be negative"))
	}

	if cfg.Journal.Retention < 0 {
		errs = append(errs, errors.New("config: journal.retention must not be negative"))
	}
	if err := cron.ParseSchedule(cfg.Journal.PruneSchedule); err != nil {
		errs = append(errs, fmt.Errorf("config: journal.prune_schedule: %w", err))
	}

	if r := cfg.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("config: tracing.sample_ratio %v must be within [0, 1]", r))
	}

	return errors.Join(errs...)
}

func validateSubpath(sub string) []error {
	if sub == "" {
		return nil
	}
	if filepath.IsAbs(sub) {
		return []error{fmt.Errorf("config: default_subpath %q must be relative", sub)}
	}
	clean := filepath.Clean(filepath.FromSlash(sub))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return []error{fmt.Errorf("config: default_subpath %q escapes the home root", sub)}
	}
	return nil
}

func validateHTTP(h HTTPConfig) []error {
	var errs []error
	if _, err := net.ResolveTCPAddr("tcp", h.Bind); err != nil {
		errs = append(errs, fmt.Errorf("config: http.bind %q: %w", h.Bind, err))
	}
	if !strings.HasPrefix(h.Endpoint, "/") {
		errs = append(errs, fmt.Errorf("config: http.endpoint %q must start with /", h.Endpoint))
	}
	if h.Endpoint == "/health" || h.Endpoint == "/metrics" {
		errs = append(errs, fmt.Errorf("config: http.endpoint %q collides with a built-in route", h.Endpoint))
	}
	if h.ReadTimeout < 0 || h.WriteTimeout < 0 || h.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("config: http timeouts must not be negative"))
	}
	return errs
}
