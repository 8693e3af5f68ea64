// Package notes implements notekeeper's file operations: create, append,
// read and path introspection. Every operation resolves its directory through
// a sandbox.Resolver, performs at most one filesystem action, and reports the
// outcome as a Result instead of an error.
package notes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/notekeeper/internal/journal"
	"github.com/flemzord/notekeeper/internal/sandbox"
)

// Default filenames.
const (
	DefaultNotesFile = "notes.txt"
	DefaultPathFile  = "default_file.txt"
)

// Operation names, used for journal entries, metrics and span names.
const (
	OpCreateFile   = "create_file"
	OpAppendNote   = "append_note"
	OpReadNotes    = "read_notes"
	OpResolvedPath = "get_resolved_path"
)

const filePerm = 0o644

// Observer receives one call per finished operation.
type Observer interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration, written int)
}

// Options carries the optional collaborators of a Service. Nil fields
// disable the corresponding concern.
type Options struct {
	Logger  *slog.Logger
	Journal journal.Store
	Metrics Observer
	Tracer  trace.Tracer
}

// Service runs file operations inside one sandbox.
// It is stateless between calls and safe for concurrent use; concurrent
// writers to the same file get whatever ordering the filesystem provides.
type Service struct {
	resolver *sandbox.Resolver
	logger   *slog.Logger
	journal  journal.Store
	metrics  Observer
	tracer   trace.Tracer
}

// NewService creates a Service over resolver.
func NewService(resolver *sandbox.Resolver, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Service{
		resolver: resolver,
		logger:   logger.With("component", "notes"),
		journal:  opts.Journal,
		metrics:  opts.Metrics,
		tracer:   tracer,
	}
}

// HomeRoot returns the sandbox root.
func (s *Service) HomeRoot() string { return s.resolver.HomeRoot() }

// CreateFile writes content to filename in directory, replacing any existing
// content. No trailing newline is added.
func (s *Service) CreateFile(ctx context.Context, filename, content, directory string) Result {
	return s.run(ctx, OpCreateFile, filename, func() (Result, int) {
		dir, target, res, ok := s.locate(filename, directory, "Error creating file")
		if !ok {
			return res, 0
		}
		if err := os.WriteFile(target, []byte(content), filePerm); err != nil {
			return ioFailure("Error creating file", filename, dir, target, err), 0
		}
		return Result{
			Text: fmt.Sprintf("File '%s' created successfully in '%s'.", filename, dir),
			Dir:  dir,
			Path: target,
		}, len(content)
	})
}

// AppendNote appends content and exactly one newline to filename in
// directory, creating the file when absent. An empty filename selects
// DefaultNotesFile.
func (s *Service) AppendNote(ctx context.Context, content, filename, directory string) Result {
	if filename == "" {
		filename = DefaultNotesFile
	}
	return s.run(ctx, OpAppendNote, filename, func() (Result, int) {
		dir, target, res, ok := s.locate(filename, directory, "Error appending to file")
		if !ok {
			return res, 0
		}
		n, err := appendLine(target, content)
		if err != nil {
			return ioFailure("Error appending to file", filename, dir, target, err), n
		}
		return Result{
			Text: fmt.Sprintf("Content appended to '%s' in '%s'.", filename, dir),
			Dir:  dir,
			Path: target,
		}, n
	})
}

// ReadNotes returns the full content of filename in directory. An absent
// file yields KindFileNotFound with an informational message; an empty file
// yields "No notes found." as a success. An empty filename selects
// DefaultNotesFile.
func (s *Service) ReadNotes(ctx context.Context, filename, directory string) Result {
	if filename == "" {
		filename = DefaultNotesFile
	}
	return s.run(ctx, OpReadNotes, filename, func() (Result, int) {
		dir, target, res, ok := s.locate(filename, directory, "Error reading file")
		if !ok {
			return res, 0
		}
		data, err := os.ReadFile(target)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return Result{
				Text: fmt.Sprintf("No file named '%s' found in '%s'.", filename, dir),
				Kind: KindFileNotFound,
				Dir:  dir,
				Path: target,
			}, 0
		case err != nil:
			return ioFailure("Error reading file", filename, dir, target, err), 0
		case !utf8.Valid(data):
			return ioFailure("Error reading file", filename, dir, target, errors.New("content is not valid UTF-8 text")), 0
		case len(data) == 0:
			return Result{Text: "No notes found.", Dir: dir, Path: target}, 0
		}
		return Result{Text: string(data), Dir: dir, Path: target}, len(data)
	})
}

// ResolvedPath returns where filename would be stored in directory. Only
// directory materialization touches the disk. An empty filename selects
// DefaultPathFile.
func (s *Service) ResolvedPath(ctx context.Context, filename, directory string) Result {
	if filename == "" {
		filename = DefaultPathFile
	}
	return s.run(ctx, OpResolvedPath, filename, func() (Result, int) {
		dir, err := s.resolver.Resolve(directory)
		if err != nil {
			kind := classify(err)
			if kind == KindPathEscape {
				return Result{Text: "Error: " + err.Error(), Kind: kind, Err: err}, 0
			}
			return Result{Text: "Error resolving path: " + err.Error(), Kind: kind, Err: err}, 0
		}
		target, err := s.resolver.Target(dir, filename)
		if err != nil {
			kind := classify(err)
			if kind == KindPathEscape {
				return Result{Text: "Error: " + err.Error(), Kind: kind, Dir: dir, Err: err}, 0
			}
			return Result{Text: "Error resolving path: " + err.Error(), Kind: kind, Dir: dir, Err: err}, 0
		}
		return Result{Text: target, Dir: dir, Path: target}, 0
	})
}

// locate resolves directory and joins filename, following symlinks on both.
// On failure it returns a
// ready-made Result and ok=false.
func (s *Service) locate(filename, directory, prefix string) (dir, target string, res Result, ok bool) {
	dir, err := s.resolver.Resolve(directory)
	if err != nil {
		var dce *sandbox.DirectoryCreationError
		if errors.As(err, &dce) {
			return "", "", Result{
				Text: fmt.Sprintf("%s '%s' in '%s': %v", prefix, filename, dce.Path, err),
				Kind: KindDirectoryCreation,
				Err:  err,
			}, false
		}
		return "", "", Result{Text: prefix + ": " + err.Error(), Kind: classify(err), Err: err}, false
	}

	target, err = s.resolver.Target(dir, filename)
	if err != nil {
		return dir, "", Result{Text: prefix + ": " + err.Error(), Kind: classify(err), Dir: dir, Err: err}, false
	}
	return dir, target, Result{}, true
}

// run wraps an operation with tracing, metrics, journaling and logging.
// None of these can change the Result.
func (s *Service) run(ctx context.Context, op, filename string, fn func() (Result, int)) Result {
	ctx, span := s.tracer.Start(ctx, "notes."+op, trace.WithAttributes(
		attribute.String("notes.filename", filename),
	))
	defer span.End()

	start := time.Now()
	res, n := fn()
	elapsed := time.Since(start)
	outcome := res.Kind.String()

	span.SetAttributes(
		attribute.String("notes.outcome", outcome),
		attribute.String("notes.directory", res.Dir),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, outcome)
	}

	if s.metrics != nil {
		written := 0
		if op == OpCreateFile || op == OpAppendNote {
			written = n
		}
		s.metrics.ObserveOperation(op, outcome, elapsed, written)
	}

	if s.journal != nil {
		if err := s.journal.Append(ctx, journal.NewEntry(op, filename, res.Dir, outcome, n)); err != nil {
			s.logger.Warn("journal append failed", "operation", op, "error", err)
		}
	}

	attrs := []any{"operation", op, "filename", filename, "dir", res.Dir, "outcome", outcome, "elapsed", elapsed}
	switch res.Kind {
	case KindNone, KindFileNotFound:
		s.logger.Debug("operation completed", attrs...)
	case KindPathEscape, KindInvalidInput:
		s.logger.Warn("operation rejected", append(attrs, "error", res.Err)...)
	default:
		s.logger.Error("operation failed", append(attrs, "error", res.Err)...)
	}
	return res
}

func ioFailure(prefix, filename, dir, target string, err error) Result {
	return Result{
		Text: fmt.Sprintf("%s '%s' in '%s': %v", prefix, filename, dir, err),
		Kind: KindIO,
		Dir:  dir,
		Path: target,
		Err:  err,
	}
}

func appendLine(target, content string) (int, error) {
	f, err := os.OpenFile(target, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return 0, err
	}
	n, err := f.WriteString(content + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func classify(err error) Kind {
	switch {
	case errors.Is(err, sandbox.ErrPathEscape):
		return KindPathEscape
	case errors.Is(err, sandbox.ErrDirectoryCreation):
		return KindDirectoryCreation
	case errors.Is(err, sandbox.ErrInvalidFilename):
		return KindInvalidInput
	default:
		return KindIO
	}
}
