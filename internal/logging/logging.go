// Package logging configures the process-wide slog logger. The TUI
// owns the terminal, so the default setup writes to a log file instead
// of stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	loggerMu sync.RWMutex
)

// Init points the global logger at w.
func Init(w io.Writer, level slog.Level) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	defaultLogger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// InitFile opens (or creates) a log file and directs the global logger
// to it. The file handle is kept for the life of the process.
func InitFile(path string, level slog.Level) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	Init(f, level)
	return nil
}

// Logger returns the current global logger.
func Logger() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return defaultLogger
}

// With returns the global logger with extra attributes attached.
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}
