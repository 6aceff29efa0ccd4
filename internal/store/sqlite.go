package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
	"github.com/dervalinor/Projecto-de-electroquimica/internal/series"
)

// DBFile is the database file name inside the store directory.
const DBFile = "dopasim.db"

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (creating if needed) dir/dopasim.db.
func NewSQLiteRunStore(dir string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string { return s.dbPath }

// SaveRun stores the run and all of its series in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run Run) (string, error) {
	if err := ValidateRun(run); err != nil {
		return "", err
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	summary, err := json.Marshal(FiniteSummary(run.Summary))
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	var params any
	if len(run.Params) > 0 {
		params = string(run.Params)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, kind, name, seed, created_at, params, summary, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Name, int64(run.Seed),
		run.CreatedAt.UTC().Format(timeFormat), params, string(summary), run.Series.Rows())
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for i, col := range run.Series {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO series (run_id, position, name, data) VALUES (?, ?, ?, ?)`,
			run.ID, i, col.Name, EncodeSeries(col.Values)); err != nil {
			return "", fmt.Errorf("failed to insert series %s: %w", col.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// GetRun loads a run with its series in stored column order.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, seed, created_at, params, summary, samples
		FROM runs WHERE id = ?`, id)
	info, params, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, data FROM series WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var table series.Table
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, fmt.Errorf("failed to scan series: %w", err)
		}
		values, err := DecodeSeries(data)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", name, err)
		}
		table = append(table, series.Column{Name: name, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read series: %w", err)
	}

	return &Run{
		ID:        info.ID,
		Kind:      info.Kind,
		Name:      info.Name,
		Seed:      info.Seed,
		CreatedAt: info.CreatedAt,
		Params:    params,
		Summary:   info.Summary,
		Series:    table,
	}, nil
}

// ListRuns returns run metadata newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, opts ListOptions) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, kind, name, seed, created_at, params, summary, samples FROM runs`
	var args []any
	if opts.Kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY created_at DESC, id`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		info, _, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		names, err := s.columnNames(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Columns = names
	}
	return out, nil
}

func (s *SQLiteRunStore) columnNames(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM series WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query series names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteRun removes a run; its series go with it through the foreign key.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunInfo, json.RawMessage, error) {
	var (
		info      RunInfo
		kind      string
		name      sql.NullString
		seed      int64
		createdAt string
		params    sql.NullString
		summary   sql.NullString
	)
	if err := sc.Scan(&info.ID, &kind, &name, &seed, &createdAt, &params, &summary, &info.Samples); err != nil {
		return RunInfo{}, nil, err
	}
	info.Kind = constants.RunKind(kind)
	info.Name = name.String
	info.Seed = uint64(seed)

	t, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return RunInfo{}, nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	info.CreatedAt = t

	if summary.Valid && summary.String != "" && summary.String != "null" {
		if err := json.Unmarshal([]byte(summary.String), &info.Summary); err != nil {
			return RunInfo{}, nil, fmt.Errorf("invalid summary JSON: %w", err)
		}
	}

	var raw json.RawMessage
	if params.Valid && params.String != "" {
		raw = json.RawMessage(params.String)
	}
	return info, raw, nil
}
