// Package store persists an audit trail of pipeline runs in SQLite. Failed
// extractions keep their raw model response here so an operator can inspect
// what the model actually sent. The pipeline itself never touches this
// package; only the orchestration layer writes records.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"inkfold/internal/logging"
)

// RunRecord is one audited pipeline run.
type RunRecord struct {
	RunID        string
	CreatedAt    time.Time
	Mode         string
	Strategy     string
	Rejected     bool
	Reason       string
	RawResponse  string
	Adjustments  int
	LinesAdded   int
	LinesRemoved int
}

// AuditStore records pipeline runs in a local SQLite database.
type AuditStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open initializes the audit database at path, creating the schema and the
// parent directory when missing.
func Open(path string) (*AuditStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.Get(logging.CategoryStore).Debug("set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.Get(logging.CategoryStore).Debug("set journal_mode=WAL: %v", err)
	}

	s := &AuditStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *AuditStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    INTEGER NOT NULL,
	mode          TEXT NOT NULL,
	strategy      TEXT NOT NULL,
	rejected      INTEGER NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	raw_response  TEXT NOT NULL DEFAULT '',
	adjustments   INTEGER NOT NULL DEFAULT 0,
	lines_added   INTEGER NOT NULL DEFAULT 0,
	lines_removed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_rejected ON runs(rejected);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

// Record inserts one run. The raw response is stored only for rejected runs;
// accepted runs do not need it and it can be large.
func (s *AuditStore) Record(rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := ""
	if rec.Rejected {
		raw = rec.RawResponse
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
INSERT INTO runs (run_id, created_at, mode, strategy, rejected, reason, raw_response, adjustments, lines_added, lines_removed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CreatedAt.UnixMilli(), rec.Mode, rec.Strategy,
		boolToInt(rec.Rejected), rec.Reason, raw,
		rec.Adjustments, rec.LinesAdded, rec.LinesRemoved,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", rec.RunID, err)
	}
	logging.Get(logging.CategoryStore).Debug("recorded run %s rejected=%v", rec.RunID, rec.Rejected)
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *AuditStore) Recent(limit int) ([]RunRecord, error) {
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.Query(`
SELECT run_id, created_at, mode, strategy, rejected, reason, raw_response, adjustments, lines_added, lines_removed
FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var created int64
		var rejected int
		if err := rows.Scan(&rec.RunID, &created, &rec.Mode, &rec.Strategy, &rejected,
			&rec.Reason, &rec.RawResponse, &rec.Adjustments, &rec.LinesAdded, &rec.LinesRemoved); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created)
		rec.Rejected = rejected != 0
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Get returns one run by ID.
func (s *AuditStore) Get(runID string) (RunRecord, error) {
	row := s.db.QueryRow(`
SELECT run_id, created_at, mode, strategy, rejected, reason, raw_response, adjustments, lines_added, lines_removed
FROM runs WHERE run_id = ?`, runID)

	var rec RunRecord
	var created int64
	var rejected int
	err := row.Scan(&rec.RunID, &created, &rec.Mode, &rec.Strategy, &rejected,
		&rec.Reason, &rec.RawResponse, &rec.Adjustments, &rec.LinesAdded, &rec.LinesRemoved)
	if err != nil {
		return RunRecord{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	rec.CreatedAt = time.UnixMilli(created)
	rec.Rejected = rejected != 0
	return rec, nil
}

// Close closes the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
