package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase INFO", "INFO", slog.LevelInfo},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"uppercase TRACE", "TRACE", LevelTrace},
		{"mixed case Debug", "Debug", slog.LevelDebug},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"info level", "info"},
		{"debug level", "debug"},
		{"trace level", "trace"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)
			if logger == nil {
				t.Fatal("NewLogger returned nil")
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			hasDebug := strings.Contains(buf.String(), "debug message")
			if hasDebug != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", hasDebug, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			hasInfo := strings.Contains(buf.String(), "info message")
			if hasInfo != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", hasInfo, tt.logAtInfo, buf.String())
			}
		})
	}
}

func TestLevelTrace(t *testing.T) {
	// Trace should be below debug (more verbose)
	if LevelTrace >= slog.LevelDebug {
		t.Errorf("LevelTrace (%d) should be less than LevelDebug (%d)", LevelTrace, slog.LevelDebug)
	}
}

func TestNewRunTrace_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "info")

	// At info level, decision logger should be nil
	if rt != nil {
		t.Error("expected nil RunTrace at info level")
	}

	// Nil logger should still be safe to use
	rt.Log(map[string]any{"event": "test"})

	path := filepath.Join(dir, "trace.jsonl")
	if _, err := os.Stat(path); err == nil {
		t.Error("trace.jsonl should not exist at info level")
	}
}

func TestNewRunTrace_DebugLevel(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")
	defer rt.Close()

	rt.Log(map[string]any{"event": "run_started", "seed": 42.0})

	path := filepath.Join(dir, "trace.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace.jsonl: %v", err)
	}

	// Parse the JSONL line
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("failed to parse JSONL entry: %v", err)
	}

	if entry["event"] != "run_started" {
		t.Errorf("event = %v, want run_started", entry["event"])
	}
	if entry["seed"] != 42.0 {
		t.Errorf("seed = %v, want 42", entry["seed"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected 'time' field in trace entry")
	}
}

func TestNewRunTrace_TraceLevel(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "trace")
	defer rt.Close()

	rt.Log(map[string]any{"event": "pulse_applied"})

	path := filepath.Join(dir, "trace.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace.jsonl: %v", err)
	}

	if !strings.Contains(string(data), "pulse_applied") {
		t.Error("expected pulse_applied in trace.jsonl")
	}
}

func TestNewRunTrace_MultipleWrites(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")
	defer rt.Close()

	rt.Log(map[string]any{"event": "first"})
	rt.Log(map[string]any{"event": "second"})

	path := filepath.Join(dir, "trace.jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read trace.jsonl: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), string(data))
	}

	var first, second map[string]any
	json.Unmarshal([]byte(lines[0]), &first)
	json.Unmarshal([]byte(lines[1]), &second)

	if first["event"] != "first" {
		t.Errorf("first event = %v, want 'first'", first["event"])
	}
	if second["event"] != "second" {
		t.Errorf("second event = %v, want 'second'", second["event"])
	}
}

func TestRunTrace_NilSafety(t *testing.T) {
	// nil RunTrace should not panic
	var rt *RunTrace
	rt.Log(map[string]any{"event": "should_not_panic"})
	rt.Close()
}

func TestRunTrace_DoesNotMutateCallerMap(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")
	defer rt.Close()

	event := map[string]any{"event": "test"}
	rt.Log(event)

	if _, hasTime := event["time"]; hasTime {
		t.Error("Log() should not mutate caller's map, but 'time' was injected")
	}
}

func TestRunTrace_LogAfterClose(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")

	rt.Log(map[string]any{"event": "before_close"})
	rt.Close()

	// Should be a no-op, not panic or error
	rt.Log(map[string]any{"event": "after_close"})
}

func TestNewRunTrace_CreatesDir(t *testing.T) {
	base := t.TempDir()
	nestedDir := filepath.Join(base, "sub", "dir")

	rt := NewRunTrace(nestedDir, "debug")
	if rt == nil {
		t.Fatal("expected non-nil RunTrace when dir needs creation")
	}
	defer rt.Close()

	rt.Log(map[string]any{"event": "dir_create_test"})

	path := filepath.Join(nestedDir, "trace.jsonl")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("trace.jsonl should exist after dir creation: %v", err)
	}
}

func TestRunTrace_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")
	defer rt.Close()

	rt.Log(map[string]any{"event": "perm_test"})

	path := filepath.Join(dir, "trace.jsonl")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat trace.jsonl: %v", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestRunTrace_Event(t *testing.T) {
	dir := t.TempDir()
	rt := NewRunTrace(dir, "debug")
	defer rt.Close()

	fields := map[string]any{"step": 12, "magnitude": 0.3}
	rt.Event("pulse_applied", fields)

	if _, ok := fields["event"]; ok {
		t.Error("Event() should not mutate the caller's fields")
	}

	data, err := os.ReadFile(filepath.Join(dir, TraceFile))
	if err != nil {
		t.Fatalf("failed to read trace: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("failed to parse entry: %v", err)
	}
	if entry["event"] != "pulse_applied" || entry["step"] != 12.0 {
		t.Errorf("entry = %v", entry)
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Info("dropped")
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Discard logger should not enable debug")
	}
}
