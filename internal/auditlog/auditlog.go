// Package auditlog persists one row per Evaluate run to a local SQLite
// file, giving the audit and compare CLI commands a durable history to
// query across runs.
//
// Grounded on the teacher engine's own use of modernc.org/sqlite via
// database/sql (its storage-backend benchmarks open a "sqlite" driver
// the same way): this package repurposes that driver for a narrow audit
// trail table instead of a general SQL surface.
package auditlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Log wraps a SQLite-backed audit trail.
type Log struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite file at path and ensures
// its schema exists.
func Open(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: open %s: %w", path, err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT NOT NULL,
	ran_at     TEXT NOT NULL,
	entity     TEXT NOT NULL,
	value_text TEXT NOT NULL,
	failed     INTEGER NOT NULL,
	error_msg  TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditlog: migrate: %w", err)
	}
	return &Log{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Log) Close() error { return l.db.Close() }

// Record appends one entity's evaluation result for runID.
func (l *Log) Record(ctx context.Context, runID, entity, valueText string, failed bool, errMsg string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, ran_at, entity, value_text, failed, error_msg) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), entity, valueText, boolToInt(failed), errMsg)
	return err
}

// History returns every recorded value for entity, most recent first.
func (l *Log) History(ctx context.Context, entity string) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, ran_at, value_text, failed, error_msg FROM runs WHERE entity = ? ORDER BY ran_at DESC`,
		entity)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var failedInt int
		if err := rows.Scan(&e.RunID, &e.RanAt, &e.ValueText, &failedInt, &e.ErrorMsg); err != nil {
			return nil, err
		}
		e.Entity = entity
		e.Failed = failedInt != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// Entry is one recorded audit row.
type Entry struct {
	RunID     string
	RanAt     string
	Entity    string
	ValueText string
	Failed    bool
	ErrorMsg  string
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
