package msgcache

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with msgcache-specific context.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithCapacity adds a capacity field to the logger.
func (l *Logger) WithCapacity(capacity int) *Logger {
	return &Logger{
		Logger: l.Logger.With("capacity", capacity),
	}
}

// LogTryAlloc logs a non-blocking allocation attempt.
func (l *Logger) LogTryAlloc(size int, ok bool) {
	if ok {
		l.Debug("slot allocated",
			"size", size,
		)
	} else {
		l.Debug("allocation deferred",
			"size", size,
		)
	}
}

// LogWait logs a blocking allocation once it completes.
func (l *Logger) LogWait(ctx context.Context, size int, waited time.Duration, err error) {
	if err != nil {
		l.WarnContext(ctx, "blocking allocation failed",
			"size", size,
			"waited", waited,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "blocking allocation completed",
			"size", size,
			"waited", waited,
		)
	}
}

// LogClose logs cache shutdown.
func (l *Logger) LogClose(waiters int) {
	if waiters > 0 {
		l.Warn("cache closed with parked waiters",
			"waiters", waiters,
		)
	} else {
		l.Info("cache closed")
	}
}
