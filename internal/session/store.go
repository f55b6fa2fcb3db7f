// Package session implements the session/checkpoint manager spec.md
// §1 names as an external collaborator ("decides which games of which
// match still need to be played and where to write outputs") and §8
// property 8 requires to be idempotent under --continue.
//
// Grounded on daviddao-clockmail's pkg/store: a sqlite-backed Store
// with WAL mode for safe concurrent access, the same schema-in-a-
// string migrate() shape, and a small explicit interface boundary.
package session

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store tracks which games of one match's directory have already been
// played, backing the match runner's --continue behaviour.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the checkpoint database at
// <matchDir>/.dumbarb.db.
func Open(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id     TEXT PRIMARY KEY,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS completed_games (
		seq         INTEGER PRIMARY KEY,
		outcome     TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		run_id      TEXT NOT NULL REFERENCES runs(run_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// NewRun stamps a fresh run identifier for this process's lifetime
// (written to the .run trace so restarts are traceable to a specific
// invocation) and records it.
func (s *Store) NewRun() (string, error) {
	id := uuid.New().String()
	_, err := s.db.Exec(`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`, id, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("session: record run: %w", err)
	}
	return id, nil
}

// RecordGame marks seq as completed with the given outcome summary,
// called once per game immediately after the result emitter appends
// the .log line (so the two stay consistent under abrupt termination).
func (s *Store) RecordGame(seq int, outcome, runID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO completed_games (seq, outcome, finished_at, run_id) VALUES (?, ?, ?, ?)`,
		seq, outcome, time.Now().UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return fmt.Errorf("session: record game %d: %w", seq, err)
	}
	return nil
}

// HighestCompleted returns the highest completed game number, or 0 if
// none are recorded.
func (s *Store) HighestCompleted() (int, error) {
	var seq sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(seq) FROM completed_games`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("session: highest completed: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return int(seq.Int64), nil
}

// CompletedCount returns how many games are recorded as completed.
func (s *Store) CompletedCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completed_games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("session: completed count: %w", err)
	}
	return n, nil
}

// Reset truncates all checkpoint state, used by --force to restart a
// match directory from game 1.
func (s *Store) Reset() error {
	_, err := s.db.Exec(`DELETE FROM completed_games; DELETE FROM runs;`)
	if err != nil {
		return fmt.Errorf("session: reset: %w", err)
	}
	return nil
}

// Plan decides the first not-yet-played game number for matchDir
// (spec.md §8 property 8: idempotent --continue). With force it
// resets all checkpoint state and returns 1; otherwise it resumes
// after the highest completed sequence number. When every game of
// numGames is already complete, it returns numGames+1 so the caller
// plays zero games and spawns zero engines.
func (s *Store) Plan(numGames int, force bool) (firstUnplayedSeq int, err error) {
	if force {
		if err := s.Reset(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	highest, err := s.HighestCompleted()
	if err != nil {
		return 0, err
	}
	if highest >= numGames {
		return numGames + 1, nil
	}
	return highest + 1, nil
}
