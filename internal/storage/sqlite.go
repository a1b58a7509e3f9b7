// Package storage persists run history and placement fingerprints in
// SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/nazjaz/curator/internal/model"
)

// Store implements run-history persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if necessary) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath must not be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP NOT NULL,
			dry_run BOOLEAN NOT NULL DEFAULT 0,
			scanned INTEGER NOT NULL DEFAULT 0,
			classified INTEGER NOT NULL DEFAULT 0,
			unknown INTEGER NOT NULL DEFAULT 0,
			duplicates_found INTEGER NOT NULL DEFAULT 0,
			moved INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			destination_path TEXT,
			category TEXT NOT NULL,
			matched_rule TEXT,
			action TEXT NOT NULL,
			state TEXT NOT NULL,
			fingerprint TEXT,
			reason TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_run ON operations(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_fingerprint ON operations(category, fingerprint)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// RecordRun persists a completed run and its per-file plans, returning the
// run ID. Dry runs are recorded too so history shows what was previewed.
func (s *Store) RecordRun(ctx context.Context, startedAt time.Time, dryRun bool, stats model.RunStatistics, plans []model.OperationPlan) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, dry_run, scanned, classified, unknown, duplicates_found, moved, skipped, errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		startedAt, dryRun, stats.Scanned, stats.Classified, stats.Unknown,
		stats.DuplicatesFound, stats.Moved, stats.Skipped, stats.Errors)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operations (run_id, source_path, destination_path, category, matched_rule, action, state, fingerprint, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare operation insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, plan := range plans {
		if _, err := stmt.ExecContext(ctx,
			runID, plan.SourcePath, plan.DestinationPath, plan.Category,
			plan.MatchedRule, string(plan.Action), string(plan.State),
			plan.Fingerprint, plan.Reason); err != nil {
			return 0, fmt.Errorf("failed to insert operation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	StartedAt time.Time
	Stats     model.RunStatistics
	ID        int64
	DryRun    bool
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, dry_run, scanned, classified, unknown, duplicates_found, moved, skipped, errors
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.DryRun,
			&r.Stats.Scanned, &r.Stats.Classified, &r.Stats.Unknown,
			&r.Stats.DuplicatesFound, &r.Stats.Moved, &r.Stats.Skipped,
			&r.Stats.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// PlacedFingerprints returns the fingerprints of content actually placed in
// each category by previous executed (non-dry) runs. Used to seed the
// duplicate tracker so repeated runs stay idempotent across processes.
func (s *Store) PlacedFingerprints(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT o.category, o.fingerprint
		 FROM operations o JOIN runs r ON r.id = o.run_id
		 WHERE r.dry_run = 0
		   AND o.state = ?
		   AND o.fingerprint != ''
		   AND (o.action IN (?, ?, ?) OR o.reason = 'already at destination')`,
		string(model.StateExecuted),
		string(model.ActionMove), string(model.ActionCopy), string(model.ActionRenameSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to query fingerprints: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	placed := make(map[string][]string)
	for rows.Next() {
		var category, fingerprint string
		if err := rows.Scan(&category, &fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint row: %w", err)
		}
		placed[category] = append(placed[category], fingerprint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fingerprints: %w", err)
	}
	return placed, nil
}
