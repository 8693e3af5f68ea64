// Package sandbox confines notekeeper's file operations to the subtree of a
// trusted home root. A Resolver turns an optional, untrusted directory string
// into a normalized absolute directory that is guaranteed to be the home root
// or one of its descendants, creating it on disk when missing.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSubpath is used below the home root when no directory is supplied.
const DefaultSubpath = "Desktop/LOCAL_MCP/claude_local_notes"

const dirPerm = 0o755

// Config fixes the sandbox for the lifetime of a process.
type Config struct {
	// HomeRoot is the absolute trusted root. Every resolved directory is
	// HomeRoot itself or lies below it.
	HomeRoot string

	// DefaultSubpath is a relative path under HomeRoot used when the caller
	// supplies no directory. Defaults to DefaultSubpath.
	DefaultSubpath string
}

// Resolver validates and materializes directories inside the home root.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	home       string
	defaultDir string
}

// New builds a Resolver. The home root must be absolute; the default subpath
// must be relative and must not climb out of the home root.
func New(cfg Config) (*Resolver, error) {
	if cfg.HomeRoot == "" || !filepath.IsAbs(cfg.HomeRoot) {
		return nil, fmt.Errorf("sandbox: %w: %q", ErrInvalidHomeRoot, cfg.HomeRoot)
	}
	home := filepath.Clean(cfg.HomeRoot)

	sub := cfg.DefaultSubpath
	if sub == "" {
		sub = DefaultSubpath
	}
	sub = filepath.FromSlash(sub)
	if filepath.IsAbs(sub) {
		return nil, fmt.Errorf("sandbox: %w: %q is absolute", ErrInvalidSubpath, cfg.DefaultSubpath)
	}
	defaultDir := filepath.Join(home, sub)
	if !Within(home, defaultDir) {
		return nil, fmt.Errorf("sandbox: %w: %q", ErrInvalidSubpath, cfg.DefaultSubpath)
	}

	return &Resolver{home: home, defaultDir: defaultDir}, nil
}

// HomeRoot returns the cleaned absolute home root.
func (r *Resolver) HomeRoot() string { return r.home }

// DefaultDir returns the directory used when no directory is supplied.
func (r *Resolver) DefaultDir() string { return r.defaultDir }

// Check normalizes input and applies the sandbox check without creating
// anything on disk. An empty input selects the default directory.
//
// Relative inputs are taken relative to the home root, a leading "~" or "~/"
// expands to the home root, and "." / ".." segments are collapsed before the
// segment-aware prefix test. The deepest existing ancestor of the result is
// also resolved through symlinks and must still lie inside the home root.
func (r *Resolver) Check(input string) (string, error) {
	candidate := r.defaultDir
	if input != "" {
		expanded, err := expandHome(input, r.home)
		if err != nil {
			return "", &PathEscapeError{Input: input, Reason: err.Error()}
		}
		if filepath.IsAbs(expanded) {
			candidate = filepath.Clean(expanded)
		} else {
			candidate = filepath.Join(r.home, expanded)
		}
	}

	if !Within(r.home, candidate) {
		return "", &PathEscapeError{Input: input, Resolved: candidate}
	}
	if err := r.checkSymlinks(candidate); err != nil {
		return "", &PathEscapeError{Input: input, Resolved: candidate, Reason: err.Error()}
	}
	return candidate, nil
}

// Resolve runs Check and then creates the directory and any missing
// ancestors. Creating an existing directory is not an error.
func (r *Resolver) Resolve(input string) (string, error) {
	dir, err := r.Check(input)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", &DirectoryCreationError{Path: dir, Err: err}
	}
	return dir, nil
}

// checkSymlinks resolves the deepest existing ancestor of candidate that lies
// inside the home root and verifies it does not point outside it.
func (r *Resolver) checkSymlinks(candidate string) error {
	existing := candidate
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return nil
		}
		existing = parent
	}
	// Nothing below the home root exists yet, so there is no link to follow.
	if !Within(r.home, existing) {
		return nil
	}

	realHome, err := filepath.EvalSymlinks(r.home)
	if err != nil {
		return fmt.Errorf("resolving home root: %w", err)
	}
	real, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", existing, err)
	}
	if !Within(realHome, real) {
		return fmt.Errorf("%s resolves to %s", existing, real)
	}
	return nil
}

// Within reports whether p equals root or lies below it. Both paths must be
// clean and absolute. The comparison is on whole path segments, so
// "/home/alicex" is not within "/home/alice".
func Within(root, p string) bool {
	if p == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(p, prefix)
}

// ErrInvalidFilename is returned by Resolver.Target for empty filenames and filenames
// that leave the directory they are joined to.
var ErrInvalidFilename = errors.New("invalid filename")

// Target joins filename onto a directory returned by Resolve. The result must
// lie strictly inside dir, and following symlinks along it, including a
// symlinked final component, must not leave the home root.
func (r *Resolver) Target(dir, filename string) (string, error) {
	p, err := joinFile(dir, filename)
	if err != nil {
		return "", err
	}
	if !Within(r.home, p) {
		return "", &PathEscapeError{Input: filename, Resolved: p, File: true}
	}
	if err := r.checkSymlinks(p); err != nil {
		return "", &PathEscapeError{Input: filename, Resolved: p, Reason: err.Error(), File: true}
	}
	return p, nil
}

func joinFile(dir, filename string) (string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", fmt.Errorf("%w: filename must not be empty", ErrInvalidFilename)
	}
	if filepath.IsAbs(filename) {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidFilename, filename)
	}
	p := filepath.Join(dir, filename)
	if p == dir || !Within(dir, p) {
		return "", fmt.Errorf("%w: %q leaves %s", ErrInvalidFilename, filename, dir)
	}
	return p, nil
}

// expandHome expands "~" and "~/..." to home. "~user" forms name another
// account's home and are refused.
func expandHome(p, home string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	if p == "~" {
		return home, nil
	}
	if p[1] == '/' || p[1] == filepath.Separator {
		return filepath.Join(home, p[2:]), nil
	}
	return "", fmt.Errorf("unsupported home reference %q", p)
}
