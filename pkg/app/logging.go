package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/flemzord/notekeeper/internal/config"
	"github.com/flemzord/notekeeper/internal/security"
)

// ParseLevel maps a config level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("app: unknown log level %q", name)
	}
}

// NewLogger builds the root logger writing to w. The handler is wrapped in
// a RedactingHandler so secrets never reach the output. In stdio mode w
// must not be stdout. The returned LevelVar changes the level at runtime.
func NewLogger(cfg config.LogConfig, w io.Writer, redactor *security.Redactor) (*slog.Logger, *slog.LevelVar, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	opts := &slog.HandlerOptions{Level: levelVar}

	var inner slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		inner = slog.NewTextHandler(w, opts)
	case "json":
		inner = slog.NewJSONHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("app: unknown log format %q", cfg.Format)
	}
	return slog.New(security.NewRedactingHandler(inner, redactor)), levelVar, nil
}
