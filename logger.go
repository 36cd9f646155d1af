package simdex

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-specific helpers so operations log
// with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(127),
	}))}
}

// LogAdd logs an add operation.
func (l *Logger) LogAdd(ctx context.Context, itemID int64, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"item_id", itemID,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"item_id", itemID,
			"dimension", dimension,
		)
	}
}

// LogRemove logs a remove operation. rebuilt is false for absent-id no-ops.
func (l *Logger) LogRemove(ctx context.Context, itemID int64, rebuilt bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"item_id", itemID,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"item_id", itemID,
			"rebuilt", rebuilt,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogSnapshot logs a snapshot persistence operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "snapshot saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogReconcile logs a startup reconciliation rebuild.
func (l *Logger) LogReconcile(ctx context.Context, snapshotCount, catalogCount int) {
	l.WarnContext(ctx, "snapshot disagrees with catalog, rebuilding",
		"snapshot_vectors", snapshotCount,
		"catalog_records", catalogCount,
	)
}
