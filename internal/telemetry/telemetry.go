// Package telemetry keeps an opt-in local history of runs in SQLite.
// Nothing leaves the machine.
package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/dkoosis/rbuild/internal/report"
)

// Telemetry records run history. A disabled instance accepts every call and
// stores nothing.
type Telemetry struct {
	db *sql.DB
}

// DefaultPath returns <UserConfigDir>/rbuild/history.db.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, "rbuild", "history.db"), nil
}

// Open opens or creates the history database at path when enabled.
func Open(enabled bool, path string) (*Telemetry, error) {
	if !enabled {
		return &Telemetry{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open telemetry database: %w", err)
	}
	db.SetMaxOpenConns(1)

	t := &Telemetry{db: db}
	if err := t.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return t, nil
}

// Enabled reports whether records are stored.
func (t *Telemetry) Enabled() bool { return t.db != nil }

func (t *Telemetry) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		version TEXT,
		platform TEXT,
		duration_ms INTEGER,
		exit_code INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		step TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		duration_ms INTEGER,
		implied INTEGER NOT NULL,
		blocked INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS test_outcomes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER,
		duration_ms INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_test_outcomes_name ON test_outcomes(name);
	`
	_, err := t.db.Exec(schema)
	return err
}

// Record stores one run with its steps and test outcomes in a single transaction.
func (t *Telemetry) Record(run *report.Run) error {
	if t.db == nil {
		return nil
	}

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(
		`INSERT INTO runs (run_id, started_at, version, platform, duration_ms, exit_code) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.Version, run.Platform, run.Duration.Milliseconds(), run.ExitCode,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range run.Steps {
		if _, err := tx.Exec(
			`INSERT INTO steps (run_id, step, exit_code, duration_ms, implied, blocked) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, string(s.Name), s.ExitCode, s.Duration.Milliseconds(), s.Implied, s.Blocked,
		); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	for _, o := range run.Outcomes {
		if _, err := tx.Exec(
			`INSERT INTO test_outcomes (run_id, name, status, exit_code, duration_ms) VALUES (?, ?, ?, ?, ?)`,
			run.ID, o.Name, o.Status, o.ExitCode, o.DurationMS,
		); err != nil {
			return fmt.Errorf("insert test outcome: %w", err)
		}
	}

	return tx.Commit()
}

// FailureRate returns the fraction of recorded non-skipped runs of a test
// that failed, and how many runs that covers.
func (t *Telemetry) FailureRate(name string) (float64, int, error) {
	if t.db == nil {
		return 0, 0, nil
	}

	query := `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failures
		FROM test_outcomes
		WHERE name = ? AND status != 'skipped'
	`
	var total, failures int
	if err := t.db.QueryRow(query, name).Scan(&total, &failures); err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(failures) / float64(total), total, nil
}

// RunCount returns the number of recorded runs.
func (t *Telemetry) RunCount() (int, error) {
	if t.db == nil {
		return 0, nil
	}
	var n int
	err := t.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

// Close closes the telemetry database connection.
func (t *Telemetry) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}
