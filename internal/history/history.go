// Package history persists an audit log of gate evaluations.
//
// The log records what was evaluated and what happened to it: decision,
// severity, category, resolution, exit code. Session approvals are
// deliberately NOT stored here; those live only in the confirmation
// subsystem's in-memory cache and die with the process.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one audit record.
type Entry struct {
	EvaluationID string    `json:"evaluation_id"`
	At           time.Time `json:"at"`
	Command      string    `json:"command"`
	Target       string    `json:"target"`
	Mode         string    `json:"mode"`
	Decision     string    `json:"decision"`
	Severity     string    `json:"severity"`
	Category     string    `json:"category,omitempty"`
	Resolution   string    `json:"resolution,omitempty"`
	Rejection    string    `json:"rejection,omitempty"`
	ExitCode     *int      `json:"exit_code,omitempty"`
}

// Store is a SQLite-backed audit log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database and applies the
// schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history db: %w", err)
	}
	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY,
	at          TEXT NOT NULL,
	command     TEXT NOT NULL,
	target      TEXT NOT NULL,
	mode        TEXT NOT NULL,
	decision    TEXT NOT NULL,
	severity    TEXT NOT NULL,
	category    TEXT,
	resolution  TEXT,
	rejection   TEXT,
	exit_code   INTEGER
);
CREATE INDEX IF NOT EXISTS idx_evaluations_at ON evaluations(at);
`

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts one audit entry.
func (s *Store) Record(e Entry) error {
	var exitCode any
	if e.ExitCode != nil {
		exitCode = *e.ExitCode
	}
	_, err := s.db.Exec(`
		INSERT INTO evaluations (id, at, command, target, mode, decision, severity, category, resolution, rejection, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.EvaluationID, e.At.Format(time.RFC3339), e.Command, e.Target, e.Mode,
		e.Decision, e.Severity, nullable(e.Category), nullable(e.Resolution),
		nullable(e.Rejection), exitCode)
	if err != nil {
		return fmt.Errorf("recording evaluation: %w", err)
	}
	return nil
}

// Recent returns the n most recent entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, at, command, target, mode, decision, severity,
		       COALESCE(category, ''), COALESCE(resolution, ''),
		       COALESCE(rejection, ''), exit_code
		FROM evaluations ORDER BY at DESC, rowid DESC LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		var exitCode sql.NullInt64
		if err := rows.Scan(&e.EvaluationID, &at, &e.Command, &e.Target, &e.Mode,
			&e.Decision, &e.Severity, &e.Category, &e.Resolution, &e.Rejection, &exitCode); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		if exitCode.Valid {
			code := int(exitCode.Int64)
			e.ExitCode = &code
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Noop is a Recorder that drops entries; used when history is disabled.
type Noop struct{}

// Record discards the entry.
func (Noop) Record(Entry) error { return nil }
