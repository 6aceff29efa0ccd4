package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dervalinor/Projecto-de-electroquimica/internal/constants"
)

// ValidateRun checks that a run can be stored: a known kind and a non-empty,
// rectangular series table.
func ValidateRun(run Run) error {
	if !run.Kind.Valid() {
		return fmt.Errorf("invalid run kind %q (valid: fscv, oxidation, cottrell)", run.Kind)
	}
	if err := run.Series.Validate(); err != nil {
		return fmt.Errorf("invalid run series: %w", err)
	}
	return nil
}

// ValidateIntegrity checks an existing run database before it is opened for
// use. SQLite's page check must pass, then the invariants SaveRun keeps must
// hold: every series row belongs to a run, every run has a known kind and at
// least one series, and every series blob holds exactly samples float64s.
// The first violation found is returned.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	var pages string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check`).Scan(&pages); err != nil {
		return fmt.Errorf("failed to check database pages: %w", err)
	}
	if pages != "ok" {
		return fmt.Errorf("database pages are damaged: %s", pages)
	}

	var orphans int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM series s
		LEFT JOIN runs r ON r.id = s.run_id
		WHERE r.id IS NULL`).Scan(&orphans); err != nil {
		return fmt.Errorf("failed to look for orphaned series: %w", err)
	}
	if orphans > 0 {
		return fmt.Errorf("%d series rows belong to no run", orphans)
	}

	if err := checkRunRows(ctx, db); err != nil {
		return err
	}

	var runID, name string
	var size, samples int64
	err := db.QueryRowContext(ctx, `
		SELECT s.run_id, s.name, length(s.data), r.samples
		FROM series s JOIN runs r ON r.id = s.run_id
		WHERE length(s.data) != r.samples * 8
		LIMIT 1`).Scan(&runID, &name, &size, &samples)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check series lengths: %w", err)
	}
	return fmt.Errorf("run %s: series %q holds %d bytes, want %d samples (%d bytes)",
		runID, name, size, samples, samples*8)
}

// checkRunRows rejects runs with an unknown kind or without series.
func checkRunRows(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.kind, (SELECT COUNT(*) FROM series s WHERE s.run_id = r.id)
		FROM runs r`)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, kind string
		var columns int
		if err := rows.Scan(&id, &kind, &columns); err != nil {
			return fmt.Errorf("failed to scan run: %w", err)
		}
		if !constants.RunKind(kind).Valid() {
			return fmt.Errorf("run %s has unknown kind %q", id, kind)
		}
		if columns == 0 {
			return fmt.Errorf("run %s has no series", id)
		}
	}
	return rows.Err()
}
