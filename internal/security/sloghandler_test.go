package security

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, literals ...string) *slog.Logger {
	inner := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactingHandler(inner, NewRedactor(literals...)))
}

func TestRedactingHandler_MessageAndAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, "tok-123456")
	logger.Info("key is sk-abcdefghijklmnopqrstuvwxyz", "token", "tok-123456", "safe", "visible")

	out := buf.String()
	if strings.Contains(out, "sk-abcdefghijklmnopqrstuvwxyz") || strings.Contains(out, "tok-123456") {
		t.Errorf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("safe value missing: %s", out)
	}
}

func TestRedactingHandler_WithAttrsAndGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, "s3cr3t-value").
		With("component", "s3cr3t-value").
		WithGroup("req")
	logger.Info("call", slog.Group("auth", "header", "s3cr3t-value"))

	if strings.Contains(buf.String(), "s3cr3t-value") {
		t.Errorf("secret leaked: %s", buf.String())
	}
}

func TestRedactingHandler_Errors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newTestLogger(&buf, "p4ssw0rd-xyz")
	logger.Error("failed", "error", errors.New("login with p4ssw0rd-xyz refused"))

	if strings.Contains(buf.String(), "p4ssw0rd-xyz") {
		t.Errorf("secret leaked from error: %s", buf.String())
	}
}

func TestRedactingHandler_Enabled(t *testing.T) {
	t.Parallel()

	inner := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	h := NewRedactingHandler(inner, NewRedactor())
	if h.Enabled(t.Context(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !h.Enabled(t.Context(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
