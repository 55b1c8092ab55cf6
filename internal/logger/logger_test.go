package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")
	if err := Init(path, "debug"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Info("connection saved", "name", "A")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"connection saved"`) {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"name":"A"`) {
		t.Errorf("log file missing attribute: %s", data)
	}
}

func TestInit_LevelFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := Init(path, "error"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	Debug("should be filtered")
	Error("should appear")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "should be filtered") {
		t.Error("debug entry written at error level")
	}
	if !strings.Contains(string(data), "should appear") {
		t.Error("error entry missing")
	}
}
