package sandbox

import (
	"errors"
	"fmt"
)

var (
	// ErrPathEscape is matched by every *PathEscapeError.
	ErrPathEscape = errors.New("path escapes home root")

	// ErrDirectoryCreation is matched by every *DirectoryCreationError.
	ErrDirectoryCreation = errors.New("directory creation failed")

	// ErrInvalidHomeRoot is returned by New when the home root is empty or relative.
	ErrInvalidHomeRoot = errors.New("home root must be an absolute path")

	// ErrInvalidSubpath is returned by New when the default subpath is absolute
	// or climbs out of the home root.
	ErrInvalidSubpath = errors.New("default subpath must stay inside the home root")
)

// PathEscapeError reports a requested directory, or a file below one, that
// normalizes or links outside the home root. Input is the caller's original
// string.
type PathEscapeError struct {
	Input    string
	Resolved string
	Reason   string
	File     bool
}

func (e *PathEscapeError) Error() string {
	what := "directory"
	if e.File {
		what = "file"
	}
	msg := fmt.Sprintf("invalid %s path: '%s'. For security, target %s must be within your home directory", what, e.Input, what)
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

// Is lets errors.Is(err, ErrPathEscape) match.
func (e *PathEscapeError) Is(target error) bool { return target == ErrPathEscape }

// DirectoryCreationError reports a failure to materialize a resolved directory.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("creating directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDirectoryCreation) match.
func (e *DirectoryCreationError) Is(target error) bool { return target == ErrDirectoryCreation }
