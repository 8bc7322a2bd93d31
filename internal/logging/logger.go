// Package logging provides structured logging for planpilot sync runs.
// It wraps Go's log/slog package to emit JSON-formatted log lines to a
// per-run log file, with run/plan/phase context carried through
// WithRun/WithPlanID/WithPhase so every line in a run's log can be
// correlated back to it.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Log levels supported by the logger.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger emits JSON log lines via slog, optionally to a run's log file.
// Child loggers created via With/WithRun/WithPlanID/WithPhase share the
// same underlying file handle, so only the root Logger returned by
// NewLogger needs to be Closed.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// NewLogger creates a Logger that writes JSON lines to {runDir}/sync.log.
// If runDir is empty, it writes to stderr instead.
//
// level controls the minimum severity written: DEBUG logs everything,
// ERROR logs only errors. An unrecognized level defaults to INFO.
func NewLogger(runDir string, level string) (*Logger, error) {
	var file *os.File
	writer := os.Stderr

	if runDir != "" {
		if err := os.MkdirAll(runDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create run directory: %w", err)
		}
		var err error
		file, err = os.OpenFile(filepath.Join(runDir, "sync.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	}

	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: parseSlogLevel(level)})
	return &Logger{slog: slog.New(handler), file: file}, nil
}

// NopLogger returns a Logger that discards all log output.
func NopLogger() *Logger {
	return &Logger{slog: slog.New(slog.NewJSONHandler(discard{}, nil))}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func parseSlogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRun returns a child Logger with the run ID attached to every entry.
func (l *Logger) WithRun(runID string) *Logger {
	return l.with("run_id", runID)
}

// WithPlanID returns a child Logger with the plan ID attached to every entry.
func (l *Logger) WithPlanID(planID string) *Logger {
	return l.with("plan_id", planID)
}

// WithPhase returns a child Logger with the phase name attached to every
// entry. Phases are: "discover", "upsert", "enrich", "relate", "clean",
// "map-sync".
func (l *Logger) WithPhase(phase string) *Logger {
	return l.with("phase", phase)
}

// With returns a child Logger with arbitrary key-value pairs attached to
// every entry. Keys and values alternate, same as slog.Logger.With.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	return &Logger{slog: l.slog.With(args...), file: l.file}
}

func (l *Logger) with(key string, value any) *Logger {
	return &Logger{slog: l.slog.With(key, value), file: l.file}
}

// Debug logs a message at DEBUG level with optional key-value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.slog.Log(context.Background(), slog.LevelDebug, msg, args...) }

// Info logs a message at INFO level with optional key-value pairs.
func (l *Logger) Info(msg string, args ...any) { l.slog.Log(context.Background(), slog.LevelInfo, msg, args...) }

// Warn logs a message at WARN level with optional key-value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.slog.Log(context.Background(), slog.LevelWarn, msg, args...) }

// Error logs a message at ERROR level with optional key-value pairs.
func (l *Logger) Error(msg string, args ...any) { l.slog.Log(context.Background(), slog.LevelError, msg, args...) }

// Close flushes and closes the run's log file. A no-op for loggers
// writing to stderr or for NopLogger.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	l.file = nil
	return nil
}

// ParseLevel normalizes a level string to one of the Level constants,
// defaulting to LevelInfo when unrecognized.
func ParseLevel(level string) string {
	switch strings.ToUpper(level) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// ValidLevels returns the list of valid log level strings.
func ValidLevels() []string {
	return []string{LevelDebug, LevelInfo, LevelWarn, LevelError}
}
