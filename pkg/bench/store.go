package bench

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	id             TEXT PRIMARY KEY,
	run_id         TEXT NOT NULL REFERENCES runs(id),
	policy         TEXT NOT NULL,
	interface      TEXT NOT NULL,
	started_at     TIMESTAMP NOT NULL,
	duration_ms    INTEGER NOT NULL,
	bytes          INTEGER NOT NULL,
	throughput_bps REAL NOT NULL,
	error          TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id);
`

// Store persists bench runs in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if needed) the SQLite database at path and
// ensures the schema exists.
func NewStore(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bench.store")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time keeps sqlite happy under the suite scheduler.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("bench store initialized", "path", path)
	return &Store{db: db, logger: logger}, nil
}

// SaveRun persists a run and its samples in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, completed_at) VALUES (?, ?, ?)`,
		run.ID, run.StartedAt, run.CompletedAt,
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, sample := range run.Samples {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO samples (id, run_id, policy, interface, started_at, duration_ms, bytes, throughput_bps, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sample.ID, run.ID, sample.Policy, sample.Interface,
			sample.StartedAt, sample.Duration.Milliseconds(),
			sample.Bytes, sample.ThroughputBps, sample.Error,
		); err != nil {
			return fmt.Errorf("failed to insert sample %s: %w", sample.ID, err)
		}
	}

	return tx.Commit()
}

// GetRun loads a run with its samples.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	run := &Run{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT started_at, completed_at FROM runs WHERE id = ?`, id,
	).Scan(&run.StartedAt, &run.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, policy, interface, started_at, duration_ms, bytes, throughput_bps, error
		 FROM samples WHERE run_id = ? ORDER BY started_at`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load samples: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sample Sample
		var durationMs int64
		if err := rows.Scan(
			&sample.ID, &sample.Policy, &sample.Interface, &sample.StartedAt,
			&durationMs, &sample.Bytes, &sample.ThroughputBps, &sample.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sample.RunID = id
		sample.Duration = time.Duration(durationMs) * time.Millisecond
		run.Samples = append(run.Samples, sample)
	}
	return run, rows.Err()
}

// ListRuns returns run IDs and timestamps, newest first, without samples.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, completed_at FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
