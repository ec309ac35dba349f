// Package history keeps a durable ledger of harness runs: one row per
// run with its input document, mode and result tallies. The ledger
// lives in a SQLite database next to the test data, so regressions can
// be traced across training sessions.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one recorded harness run.
type Run struct {
	ID        int64
	StartedAt time.Time
	Input     string
	Mode      string
	Passed    int
	Updated   int
	Failed    int
}

// Store provides durable storage for the run ledger.
type Store struct {
	db *sql.DB
}

// Open creates or opens the ledger database at the given path. WAL
// mode allows readers while a run is being recorded; the connection
// pool is capped at one writer to avoid SQLITE_BUSY errors. Open is
// idempotent.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends a run to the ledger and returns its row id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	startedAt := run.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (started_at, input, mode, passed, updated, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		startedAt.UTC().Format(time.RFC3339Nano),
		run.Input, run.Mode, run.Passed, run.Updated, run.Failed)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns the most recent runs, newest first. A non-empty input
// filters by input document; limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, input string, limit int) ([]Run, error) {
	query := `SELECT id, started_at, input, mode, passed, updated, failed
		 FROM runs`
	var args []any
	if input != "" {
		query += ` WHERE input = ?`
		args = append(args, input)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.ID, &startedAt, &run.Input, &run.Mode,
			&run.Passed, &run.Updated, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}
