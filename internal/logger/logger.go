package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu  sync.RWMutex
	log = slog.New(slog.NewJSONHandler(io.Discard, nil))
)

// Init routes all package-level logging to a rotating JSON log file.
// An empty path logs to stderr instead. Level is one of debug, info,
// warn, error (default info).
func Init(path, level string) error {
	var w io.Writer = os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     30, // days
			Compress:   true,
		}
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})

	mu.Lock()
	log = slog.New(handler)
	mu.Unlock()
	return nil
}

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a debug message with key-value pairs.
func Debug(msg string, args ...any) { current().Debug(msg, args...) }

// Info logs an informational message with key-value pairs.
func Info(msg string, args ...any) { current().Info(msg, args...) }

// Warn logs a warning message with key-value pairs.
func Warn(msg string, args ...any) { current().Warn(msg, args...) }

// Error logs an error message with key-value pairs.
func Error(msg string, args ...any) { current().Error(msg, args...) }
