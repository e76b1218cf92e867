package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{" DEBUG ", zerolog.DebugLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"off", zerolog.Disabled},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	log.Debug().Msg("hidden")
	log.Info().Str("component", "test").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "shown" || entry["component"] != "test" {
		t.Errorf("Unexpected entry %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected a timestamp")
	}
}

func TestInitWithOptionsLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companion.log")
	log, closeLog, err := InitWithOptions(Options{LogFile: path, Level: "debug"})
	if err != nil {
		t.Fatalf("InitWithOptions returned error: %v", err)
	}
	log.Info().Msg("hello")
	if err := closeLog(); err != nil {
		t.Fatalf("close log: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Errorf("Expected message in log file, got %q", data)
	}
}

func TestInitWithOptionsBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "companion.log")
	if _, _, err := InitWithOptions(Options{LogFile: path}); err == nil {
		t.Error("Expected error for unwritable log path")
	}
}

func TestInitWithOptionsLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	log, closeLog, err := InitWithOptions(Options{})
	if err != nil {
		t.Fatalf("InitWithOptions returned error: %v", err)
	}
	defer closeLog() //nolint:errcheck
	if log.GetLevel() != zerolog.ErrorLevel {
		t.Errorf("Expected error level, got %s", log.GetLevel())
	}
}
