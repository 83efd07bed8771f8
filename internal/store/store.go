// Package store handles SQLite persistence of run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"

	"github.com/verte-zerg/zipforce/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			archive_path TEXT NOT NULL,
			members TEXT NOT NULL,
			mode TEXT NOT NULL,
			alphabet TEXT NOT NULL,
			dictionary_path TEXT NOT NULL,
			max_length INTEGER NOT NULL,
			status TEXT NOT NULL,
			password TEXT NOT NULL,
			attempts INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores a finished run. A missing ID is generated and returned.
func (s *Store) InsertRun(ctx context.Context, run model.Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, ended_at, archive_path, members, mode, alphabet, dictionary_path, max_length, status, password, attempts, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(timeLayout),
		run.EndedAt.UTC().Format(timeLayout),
		run.ArchivePath,
		shellquote.Join(run.Members...),
		string(run.Mode),
		run.Alphabet,
		run.DictionaryPath,
		run.MaxLength,
		string(run.Status),
		run.Password,
		run.Attempts,
		run.DurationMs,
	)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, archive_path, members, mode, alphabet, dictionary_path, max_length, status, password, attempts, duration_ms
		 FROM runs
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		var startedAt, endedAt, members, mode, status string
		if err := rows.Scan(&run.ID, &startedAt, &endedAt, &run.ArchivePath, &members, &mode, &run.Alphabet,
			&run.DictionaryPath, &run.MaxLength, &status, &run.Password, &run.Attempts, &run.DurationMs); err != nil {
			return nil, err
		}
		if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, err
		}
		if run.EndedAt, err = time.Parse(timeLayout, endedAt); err != nil {
			return nil, err
		}
		if run.Members, err = shellquote.Split(members); err != nil {
			return nil, fmt.Errorf("failed to parse members of run %s: %w", run.ID, err)
		}
		run.Mode = model.Mode(mode)
		run.Status = model.Status(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
