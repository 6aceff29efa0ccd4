// Package backup archives the run database to a single checksummed file and
// restores it into any RunStore.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/store"
)

// DirName is the backup directory under the data directory.
const DirName = "backups"

// filePrefix and fileExt name generated archives; ListBackups only
// considers files that match both.
const (
	filePrefix = "dopasim-backup-"
	fileExt    = ".bak"
)

// Archive is the decoded payload of a backup file.
type Archive struct {
	Version   int               `json:"version"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Runs      []ArchivedRun     `json:"runs"`
}

// ArchivedRun is a run with its series packed as binary float64 blobs, so
// overflowed samples survive JSON encoding.
type ArchivedRun struct {
	ID        string             `json:"id"`
	Kind      constants.RunKind  `json:"kind"`
	Name      string             `json:"name,omitempty"`
	Seed      uint64             `json:"seed"`
	CreatedAt time.Time          `json:"created_at"`
	Params    json.RawMessage    `json:"params,omitempty"`
	Summary   map[string]float64 `json:"summary,omitempty"`
	Columns   []ArchivedColumn   `json:"columns"`
}

// ArchivedColumn is one series column. Data is base64 in JSON.
type ArchivedColumn struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

func newArchivedRun(r *store.Run) ArchivedRun {
	cols := make([]ArchivedColumn, len(r.Series))
	for i, c := range r.Series {
		cols[i] = ArchivedColumn{Name: c.Name, Data: store.EncodeSeries(c.Values)}
	}
	return ArchivedRun{
		ID:        r.ID,
		Kind:      r.Kind,
		Name:      r.Name,
		Seed:      r.Seed,
		CreatedAt: r.CreatedAt,
		Params:    r.Params,
		Summary:   store.FiniteSummary(r.Summary),
		Columns:   cols,
	}
}

// Run decodes the archived run.
func (a ArchivedRun) Run() (store.Run, error) {
	tab := make(series.Table, len(a.Columns))
	for i, c := range a.Columns {
		values, err := store.DecodeSeries(c.Data)
		if err != nil {
			return store.Run{}, fmt.Errorf("run %s column %s: %w", a.ID, c.Name, err)
		}
		tab[i] = series.Column{Name: c.Name, Values: values}
	}
	return store.Run{
		ID:        a.ID,
		Kind:      a.Kind,
		Name:      a.Name,
		Seed:      a.Seed,
		CreatedAt: a.CreatedAt,
		Params:    a.Params,
		Summary:   a.Summary,
		Series:    tab,
	}, nil
}

func (a *Archive) samples() int {
	n := 0
	for _, r := range a.Runs {
		if len(r.Columns) > 0 {
			n += len(r.Columns[0].Data) / 8
		}
	}
	return n
}

// DefaultDir returns the backup directory for dataDir.
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, DirName)
}

// GeneratePath returns a timestamped archive path in dir.
func GeneratePath(dir string, now time.Time) string {
	return filepath.Join(dir, filePrefix+now.UTC().Format("20060102-150405")+fileExt)
}

// Backup reads every run from st and writes them, oldest first, to path.
func Backup(ctx context.Context, st store.RunStore, path string, meta map[string]string) (*Archive, error) {
	infos, err := st.ListRuns(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Metadata:  meta,
		Runs:      make([]ArchivedRun, 0, len(infos)),
	}
	for i := len(infos) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		run, err := st.GetRun(ctx, infos[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to read run %s: %w", infos[i].ID, err)
		}
		a.Runs = append(a.Runs, newArchivedRun(run))
	}

	if err := WriteArchive(path, a); err != nil {
		return nil, err
	}
	return a, nil
}

// RestoreMode controls how restore treats runs that already exist.
type RestoreMode string

const (
	// RestoreMerge keeps existing runs and skips archived runs with the
	// same ID.
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace overwrites existing runs with the archived copy.
	RestoreReplace RestoreMode = "replace"
)

// Valid reports whether m is a known mode.
func (m RestoreMode) Valid() bool {
	return m == RestoreMerge || m == RestoreReplace
}

// RestoreResult counts what a restore did.
type RestoreResult struct {
	Restored int `json:"restored"`
	Skipped  int `json:"skipped"`
	Replaced int `json:"replaced"`
}

// Restore loads the archive at path into st.
func Restore(ctx context.Context, st store.RunStore, path string, mode RestoreMode) (*RestoreResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid restore mode %q: must be merge or replace", mode)
	}
	a, err := ReadArchive(path)
	if err != nil {
		return nil, err
	}

	result := &RestoreResult{}
	for _, ar := range a.Runs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		run, err := ar.Run()
		if err != nil {
			return result, err
		}

		_, err = st.GetRun(ctx, run.ID)
		switch {
		case err == nil && mode == RestoreMerge:
			result.Skipped++
			continue
		case err == nil:
			if err := st.DeleteRun(ctx, run.ID); err != nil {
				return result, fmt.Errorf("failed to replace run %s: %w", run.ID, err)
			}
			result.Replaced++
		case !errors.Is(err, store.ErrNotFound):
			return result, fmt.Errorf("failed to check run %s: %w", run.ID, err)
		}

		if _, err := st.SaveRun(ctx, run); err != nil {
			return result, fmt.Errorf("failed to restore run %s: %w", run.ID, err)
		}
		result.Restored++
	}
	return result, nil
}
