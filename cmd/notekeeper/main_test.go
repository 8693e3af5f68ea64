package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/notekeeper/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig writes a minimal config with a temp home root and journal.
func writeConfig(t *testing.T) (path, home string) {
	t.Helper()
	dir := t.TempDir()
	home = filepath.Join(dir, "home")
	if err := os.Mkdir(home, 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	path = filepath.Join(dir, "notekeeper.yaml")
	body := "version: \"1\"\nhome_root: " + home + "\njournal:\n  path: " + filepath.Join(dir, "journal.db") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, home
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "notekeeper dev") {
		t.Errorf("output = %q", out)
	}
}

func TestResolveCmd(t *testing.T) {
	t.Parallel()

	cfgPath, home := writeConfig(t)

	out, err := execute(t, "resolve", "Documents/MyFiles", "--filename", "todo.txt", "--config", cfgPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(home, "Documents", "MyFiles", "todo.txt")
	if strings.TrimSpace(out) != want {
		t.Errorf("resolve = %q, want %q", out, want)
	}
}

func TestResolveCmd_Escape(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeConfig(t)

	_, err := execute(t, "resolve", "/etc", "--config", cfgPath)
	if err == nil || !strings.Contains(err.Error(), "must be within your home directory") {
		t.Fatalf("resolve /etc error = %v", err)
	}
}

func TestConfigCheckCmd(t *testing.T) {
	t.Parallel()

	cfgPath, home := writeConfig(t)

	out, err := execute(t, "config", "check", cfgPath)
	if err != nil {
		t.Fatalf("config check: %v", err)
	}
	if !strings.Contains(out, "Configuration OK") || !strings.Contains(out, home) {
		t.Errorf("output = %q", out)
	}
}

func TestConfigCheckCmd_Invalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("version: \"1\"\ntransport: smoke-signals\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := execute(t, "config", "check", path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInitCmd_Defaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "notekeeper.yaml")

	out, err := execute(t, "init", "--yes", "--path", path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load written config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Errorf("written config invalid: %v", err)
	}

	if _, err := execute(t, "init", "--yes", "--path", path); !errors.Is(err, os.ErrExist) {
		t.Errorf("second init error = %v, want os.ErrExist", err)
	}
	if _, err := execute(t, "init", "--yes", "--force", "--path", path); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestJournalCmds(t *testing.T) {
	t.Parallel()

	cfgPath, _ := writeConfig(t)

	out, err := execute(t, "journal", "tail", "-n", "5", "--config", cfgPath)
	if err != nil {
		t.Fatalf("journal tail: %v", err)
	}
	if !strings.HasPrefix(out, "TIME") {
		t.Errorf("tail output = %q", out)
	}

	out, err = execute(t, "journal", "prune", "--config", cfgPath)
	if err != nil {
		t.Fatalf("journal prune: %v", err)
	}
	if !strings.HasPrefix(out, "Removed 0 entries") {
		t.Errorf("prune output = %q", out)
	}
}

func TestServiceCmd_RejectsUnknownAction(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "service", "explode"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
