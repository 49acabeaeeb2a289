package chronidx

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with index-store specific helpers.
// This provides structured logging with consistent field names.
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
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogOverRelease logs a Release with no borrow outstanding.
func (l *Logger) LogOverRelease(ctx context.Context, path string) {
	l.WarnContext(ctx, "index file released more often than borrowed",
		"path", path,
	)
}

// LogOpen logs an index file open.
func (l *Logger) LogOpen(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index file open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index file opened",
			"path", path,
		)
	}
}

// LogEviction logs an index file leaving the cache.
func (l *Logger) LogEviction(ctx context.Context, path string, usage int64, err error) {
	if err != nil {
		l.WarnContext(ctx, "index file close failed on eviction",
			"path", path,
			"usage", usage,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "index file evicted",
			"path", path,
			"usage", usage,
		)
	}
}

// LogBlockFull logs an append moving past an exhausted block.
func (l *Logger) LogBlockFull(ctx context.Context, cycle, block int) {
	l.DebugContext(ctx, "index block full",
		"cycle", cycle,
		"block", block,
	)
}

// LogCeiling logs an append that found no free slot below the ceiling.
func (l *Logger) LogCeiling(ctx context.Context, cycle, ceiling int) {
	l.ErrorContext(ctx, "no free index slot below block ceiling, cache poisoned",
		"cycle", cycle,
		"ceiling", ceiling,
	)
}

// LogClose logs the cache shutdown.
func (l *Logger) LogClose(ctx context.Context, root string, files int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index cache close failed",
			"root", root,
			"files", files,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index cache closed",
			"root", root,
			"files", files,
		)
	}
}
