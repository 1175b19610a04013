// Package history provides SQLite-based storage of past scan results.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vetdiff/vetdiff/internal/review"
)

// Store persists scan runs and their violations.
type Store struct {
	db *sql.DB
}

// StoreConfig configures the history store.
type StoreConfig struct {
	// Path is the SQLite database file path. Empty selects
	// ~/.config/vetdiff/history.db.
	Path string
}

// ScanRecord is one recorded scan run.
type ScanRecord struct {
	ID            int64         `json:"id"`
	Project       string        `json:"project"`
	Scope         string        `json:"scope"`
	Branch        string        `json:"branch"`
	Total         int           `json:"total"`
	CriticalCount int           `json:"critical_count"`
	MajorCount    int           `json:"major_count"`
	WarningCount  int           `json:"warning_count"`
	Duration      time.Duration `json:"duration"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewStore opens (and if needed creates) the history database.
func NewStore(cfg StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "vetdiff", "history.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project TEXT NOT NULL,
			scope TEXT NOT NULL,
			branch TEXT,
			total INTEGER NOT NULL,
			critical_count INTEGER NOT NULL,
			major_count INTEGER NOT NULL,
			warning_count INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS violations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scan_id INTEGER NOT NULL REFERENCES scans(id),
			file_path TEXT NOT NULL,
			line INTEGER NOT NULL,
			rule_id TEXT NOT NULL,
			severity TEXT NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_project ON scans(project, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_violations_scan ON violations(scan_id)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// RecordScan stores a scan run and its violations in one transaction.
func (s *Store) RecordScan(ctx context.Context, rec ScanRecord, result *review.Result) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO scans (project, scope, branch, total, critical_count, major_count, warning_count, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Project, rec.Scope, rec.Branch,
		result.Summary.TotalViolations,
		result.Summary.CriticalCount,
		result.Summary.MajorCount,
		result.Summary.WarningCount,
		rec.Duration.Milliseconds(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO violations (scan_id, file_path, line, rule_id, severity, content)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing violation insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range result.Violations {
		if _, err := stmt.ExecContext(ctx, scanID, v.FilePath, v.LineNumber, v.Rule.ID, v.Severity.String(), v.Content); err != nil {
			return 0, fmt.Errorf("inserting violation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing scan: %w", err)
	}
	return scanID, nil
}

// RecentScans returns the last n scans for a project, newest first.
// An empty project returns scans across all projects.
func (s *Store) RecentScans(ctx context.Context, project string, n int) ([]ScanRecord, error) {
	query := `SELECT id, project, scope, branch, total, critical_count, major_count, warning_count, duration_ms, created_at
		FROM scans`
	args := []any{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, n)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var durationMS int64
		var created string
		if err := rows.Scan(&rec.ID, &rec.Project, &rec.Scope, &rec.Branch,
			&rec.Total, &rec.CriticalCount, &rec.MajorCount, &rec.WarningCount,
			&durationMS, &created); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
