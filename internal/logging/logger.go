// Package logging provides leveled logging and run tracing for dopasim.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A RunTrace for structured JSONL run milestones (.dopasim/trace.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-step output.
const LevelTrace = slog.LevelDebug - 4

// TraceFile is the name of the JSONL trace inside the trace directory.
const TraceFile = "trace.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RunTrace writes run milestones (start, applied pulses, finish) to a JSONL
// file. It is safe for concurrent use. A nil RunTrace is safe to use; all
// methods are no-ops on nil receiver.
type RunTrace struct {
	mu   sync.Mutex
	file *os.File
}

// NewRunTrace creates a trace writing to dir/trace.jsonl.
// At "info" level (the default), returns nil and no file is created.
// At "debug" or "trace" level, the file is opened for append.
// Returns nil if the file cannot be opened.
func NewRunTrace(dir string, level string) *RunTrace {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, TraceFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &RunTrace{file: f}
}

// Log writes an entry as a single JSONL line.
// A "time" field is added automatically. The caller's map is not mutated.
func (rt *RunTrace) Log(entry map[string]any) {
	if rt == nil || rt.file == nil {
		return
	}

	line := make(map[string]any, len(entry)+1)
	for k, v := range entry {
		line[k] = v
	}
	line["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(line)
	if err != nil {
		return
	}
	data = append(data, '\n')

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.file == nil {
		return
	}
	_, _ = rt.file.Write(data)
}

// Event logs an entry with the given "event" name merged into fields.
func (rt *RunTrace) Event(name string, fields map[string]any) {
	if rt == nil {
		return
	}
	entry := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = name
	rt.Log(entry)
}

// Close closes the underlying file.
func (rt *RunTrace) Close() {
	if rt == nil {
		return
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.file != nil {
		rt.file.Close()
		rt.file = nil
	}
}
