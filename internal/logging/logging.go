// Package logging builds the process logger: an optional colored console
// stream and an optional size-rotated log file, fanned out from one
// slog.Logger tagged with a per-run id.
package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

const (
	// DefaultMaxBytes is the log file size that triggers rotation.
	DefaultMaxBytes = 1 << 20
	// DefaultBackups is the number of rotated files kept.
	DefaultBackups = 2
)

// Options selects the log sinks.
type Options struct {
	// Console, when non-nil, receives human-readable records.
	Console io.Writer
	Verbose bool
	// File is the log file path; empty disables file logging.
	File     string
	MaxBytes int64
	Backups  int
	// RunID tags every record; a random one is generated when empty.
	RunID string
}

// Logger is a configured slog.Logger plus the resources behind it.
type Logger struct {
	*slog.Logger
	RunID   string
	closers []io.Closer
}

// New builds a logger from opts. With no sinks selected records are
// discarded.
func New(opts Options) (*Logger, error) {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var (
		handlers []slog.Handler
		closers  []io.Closer
	)
	if opts.Console != nil {
		level := slog.LevelInfo
		if opts.Verbose {
			level = slog.LevelDebug
		}
		handlers = append(handlers, newConsoleHandler(opts.Console, level))
	}
	if opts.File != "" {
		maxBytes := opts.MaxBytes
		if maxBytes == 0 {
			maxBytes = DefaultMaxBytes
		}
		backups := opts.Backups
		if backups == 0 {
			backups = DefaultBackups
		}
		f, err := OpenRotating(opts.File, maxBytes, backups)
		if err != nil {
			return nil, err
		}
		closers = append(closers, f)
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}

	var h slog.Handler
	switch len(handlers) {
	case 0:
		h = slog.DiscardHandler
	case 1:
		h = handlers[0]
	default:
		h = multiHandler(handlers)
	}

	return &Logger{
		Logger:  slog.New(h).With("run", runID),
		RunID:   runID,
		closers: closers,
	}, nil
}

// Close releases open log files.
func (l *Logger) Close() error {
	var errs []error
	for _, c := range l.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return errors.Join(errs...)
}

// multiHandler sends each record to every handler that accepts its level.
type multiHandler []slog.Handler

func (m multiHandler) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range m {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = h.WithGroup(name)
	}
	return out
}
