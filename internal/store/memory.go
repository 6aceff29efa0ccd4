package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// InMemoryRunStore implements RunStore for testing and development.
type InMemoryRunStore struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewInMemoryRunStore creates a new in-memory store.
func NewInMemoryRunStore() *InMemoryRunStore {
	return &InMemoryRunStore{runs: make(map[string]Run)}
}

// SaveRun stores a deep copy of run.
func (s *InMemoryRunStore) SaveRun(ctx context.Context, run Run) (string, error) {
	if err := ValidateRun(run); err != nil {
		return "", err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return "", fmt.Errorf("run %s already exists", run.ID)
	}
	s.runs[run.ID] = cloneRun(run)
	return run.ID, nil
}

// GetRun returns a copy of the stored run.
func (s *InMemoryRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c := cloneRun(run)
	return &c, nil
}

// ListRuns returns run metadata newest first.
func (s *InMemoryRunStore) ListRuns(ctx context.Context, opts ListOptions) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]RunInfo, 0, len(s.runs))
	for _, run := range s.runs {
		if opts.Kind != "" && run.Kind != opts.Kind {
			continue
		}
		out = append(out, run.Info())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// DeleteRun removes a run.
func (s *InMemoryRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.runs, id)
	return nil
}

// Close is a no-op for in-memory store.
func (s *InMemoryRunStore) Close() error {
	return nil
}

func cloneRun(r Run) Run {
	c := r
	if r.Params != nil {
		c.Params = append([]byte(nil), r.Params...)
	}
	c.Summary = FiniteSummary(r.Summary)
	c.Series = make(series.Table, len(r.Series))
	for i, col := range r.Series {
		c.Series[i] = series.Column{Name: col.Name, Values: append([]float64(nil), col.Values...)}
	}
	return c
}
