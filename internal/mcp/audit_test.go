package mcp

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestAuditLogger_NilSafety(t *testing.T) {
	t.Run("nil logger Log is no-op", func(t *testing.T) {
		var logger *AuditLogger
		logger.Log(AuditEntry{Tool: "test"})
	})

	t.Run("nil logger Close is no-op", func(t *testing.T) {
		var logger *AuditLogger
		if err := logger.Close(); err != nil {
			t.Errorf("Close() on nil logger returned error: %v", err)
		}
	})
}

func TestAuditLogger_WritesJSONL(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()

	now := time.Now()
	logger.Log(AuditEntry{
		Timestamp:  now,
		Tool:       "dopasim_oxidation",
		DurationMs: 42,
		Status:     "success",
		RunID:      "run-1",
		Params:     map[string]string{"policy": "sum"},
	})

	data, err := os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}

	var entry AuditEntry
	if err := json.Unmarshal(data[:len(data)-1], &entry); err != nil {
		t.Fatalf("parsing audit entry: %v", err)
	}
	if entry.Tool != "dopasim_oxidation" {
		t.Errorf("tool = %q, want dopasim_oxidation", entry.Tool)
	}
	if entry.DurationMs != 42 {
		t.Errorf("duration_ms = %d, want 42", entry.DurationMs)
	}
	if entry.RunID != "run-1" {
		t.Errorf("run_id = %q, want run-1", entry.RunID)
	}
	if entry.Params["policy"] != "sum" {
		t.Errorf("params[policy] = %q, want sum", entry.Params["policy"])
	}
}

func TestAuditLogger_AppendsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		logger := NewAuditLogger(dir)
		logger.Log(AuditEntry{Tool: "dopasim_runs", Status: "success"})
		logger.Close()
	}

	data, err := os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("line count = %d, want 2", n)
	}
}

func TestAuditLogger_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()

	logger.Log(AuditEntry{Tool: "test"})

	info, err := os.Stat(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}

func TestAuditLogger_ConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	logger := NewAuditLogger(dir)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
	defer logger.Close()

	const goroutines = 10
	const entriesPerGoroutine = 5

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < entriesPerGoroutine; i++ {
				logger.Log(AuditEntry{
					Timestamp:  time.Now(),
					Tool:       "dopasim_fscv",
					DurationMs: int64(id*100 + i),
					Status:     "success",
				})
			}
		}(g)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != goroutines*entriesPerGoroutine {
		t.Fatalf("line count = %d, want %d", len(lines), goroutines*entriesPerGoroutine)
	}
	for i, line := range lines {
		var entry AuditEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestAuditLogger_BadPath(t *testing.T) {
	dir := t.TempDir()
	blockPath := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blockPath, []byte("file"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	logger := NewAuditLogger(blockPath)
	if logger != nil {
		logger.Close()
		t.Error("expected nil logger when the directory cannot be created")
	}
}

func TestAuditLogger_LogAfterClose(t *testing.T) {
	logger := NewAuditLogger(t.TempDir())
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	logger.Log(AuditEntry{Tool: "after_close"})
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestAuditParams(t *testing.T) {
	seed := uint64(9)
	dt := 0.25
	pulses := 3
	noise := false
	var unset *float64

	got := auditParams(map[string]any{
		"seed":     &seed,
		"dt":       &dt,
		"pulses":   &pulses,
		"noise":    &noise,
		"duration": unset,
		"policy":   "first",
		"variant":  "",
		"limit":    10,
	})

	want := map[string]string{
		"seed":   "9",
		"dt":     "0.25",
		"pulses": "3",
		"noise":  "false",
		"policy": "first",
		"limit":  "10",
	}
	if len(got) != len(want) {
		t.Errorf("auditParams() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("auditParams()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestAuditTool(t *testing.T) {
	dir := t.TempDir()
	s := &Server{auditLogger: NewAuditLogger(dir)}
	defer s.auditLogger.Close()

	start := time.Now().Add(-5 * time.Millisecond)
	s.auditTool("dopasim_run", start, "abc", errors.New("run not found: abc"), nil)

	data, err := os.ReadFile(filepath.Join(dir, AuditFile))
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	var entry AuditEntry
	if err := json.Unmarshal(data[:len(data)-1], &entry); err != nil {
		t.Fatalf("parsing audit entry: %v", err)
	}
	if entry.Status != "error" || entry.Error != "run not found: abc" {
		t.Errorf("entry = %+v", entry)
	}
	if entry.RunID != "abc" {
		t.Errorf("run_id = %q, want abc", entry.RunID)
	}
	if entry.DurationMs < 5 {
		t.Errorf("duration_ms = %d, want >= 5", entry.DurationMs)
	}
}
