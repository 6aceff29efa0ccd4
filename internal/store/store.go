// Package store defines the RunStore interface for persisting finished
// simulation runs and their series.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one persisted simulation run.
type Run struct {
	ID        string            `json:"id"`
	Kind      constants.RunKind `json:"kind"`
	Name      string            `json:"name,omitempty"`
	Seed      uint64            `json:"seed"`
	CreatedAt time.Time         `json:"created_at"`

	// Params is the scenario that produced the run, as JSON.
	Params json.RawMessage `json:"params,omitempty"`

	Summary map[string]float64 `json:"summary,omitempty"`
	Series  series.Table       `json:"series,omitempty"`
}

// RunInfo is the listing view of a run: everything except the series values.
type RunInfo struct {
	ID        string             `json:"id"`
	Kind      constants.RunKind  `json:"kind"`
	Name      string             `json:"name,omitempty"`
	Seed      uint64             `json:"seed"`
	CreatedAt time.Time          `json:"created_at"`
	Samples   int                `json:"samples"`
	Columns   []string           `json:"columns"`
	Summary   map[string]float64 `json:"summary,omitempty"`
}

// Info returns the listing view of r.
func (r *Run) Info() RunInfo {
	return RunInfo{
		ID:        r.ID,
		Kind:      r.Kind,
		Name:      r.Name,
		Seed:      r.Seed,
		CreatedAt: r.CreatedAt,
		Samples:   r.Series.Rows(),
		Columns:   r.Series.Names(),
		Summary:   r.Summary,
	}
}

// FiniteSummary returns a copy of summary without NaN or infinite values,
// which JSON cannot represent. Overflowed runs still record their
// non-finite sample count in the series.
func FiniteSummary(summary map[string]float64) map[string]float64 {
	if summary == nil {
		return nil
	}
	out := make(map[string]float64, len(summary))
	for k, v := range summary {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

// ListOptions filters ListRuns. Zero values mean no filter.
type ListOptions struct {
	Kind  constants.RunKind
	Limit int
}

// RunStore defines the interface for storing and querying runs.
type RunStore interface {
	// SaveRun persists run. An empty ID is replaced with a new UUID and a
	// zero CreatedAt with the current time. Returns the stored ID.
	SaveRun(ctx context.Context, run Run) (string, error)

	// GetRun returns the run with all of its series, or ErrNotFound.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs newest first, without series values.
	ListRuns(ctx context.Context, opts ListOptions) ([]RunInfo, error)

	// DeleteRun removes a run and its series, or returns ErrNotFound.
	DeleteRun(ctx context.Context, id string) error

	Close() error
}
