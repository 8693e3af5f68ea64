package reload

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/flemzord/notekeeper/internal/config"
)

type recordingApplier struct {
	applied []*config.Config
	err     error
}

func (r *recordingApplier) ApplyConfig(cfg *config.Config) error {
	r.applied = append(r.applied, cfg)
	return r.err
}

func newHandler(t *testing.T, body string) (*Handler, *recordingApplier) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notekeeper.yaml")
	writeFile(t, path, body)
	a := &recordingApplier{}
	return NewHandler(path, a, slog.New(slog.DiscardHandler)), a
}

func TestHandler_Reload(t *testing.T) {
	t.Parallel()

	h, a := newHandler(t, "version: \"1\"\ntools:\n  read_only: true\n")
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(a.applied) != 1 || !a.applied[0].Tools.ReadOnly {
		t.Errorf("applied = %+v", a.applied)
	}
}

func TestHandler_InvalidConfigNotApplied(t *testing.T) {
	t.Parallel()

	h, a := newHandler(t, "version: \"9\"\n")
	if err := h.Reload(); err == nil {
		t.Fatal("expected validation error")
	}
	if len(a.applied) != 0 {
		t.Errorf("invalid config was applied: %+v", a.applied)
	}
}

func TestHandler_MissingFile(t *testing.T) {
	t.Parallel()

	a := &recordingApplier{}
	h := NewHandler("/nonexistent/notekeeper.yaml", a, nil)
	if err := h.Reload(); err == nil {
		t.Fatal("expected error for missing file")
	}
	if h.Path() != "/nonexistent/notekeeper.yaml" {
		t.Errorf("Path() = %q", h.Path())
	}
}

func TestHandler_ApplierError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	h, a := newHandler(t, "version: \"1\"\n")
	a.err = boom
	if err := h.Reload(); !errors.Is(err, boom) {
		t.Errorf("Reload error = %v, want %v", err, boom)
	}
}
