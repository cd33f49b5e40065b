// Package history keeps a local log of every post the poster attempted.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Outcomes recorded for an attempt.
const (
	OutcomePosted = "posted"
	OutcomeFailed = "failed"
)

// Entry is one recorded attempt.
type Entry struct {
	ID         int64
	RequestID  string
	StatusText string
	HasImage   bool
	Outcome    string
	PostID     string
	URL        string
	Error      string
	CreatedAt  time.Time
}

// Recorder is the write side used by the poster.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Store is a SQLite-backed post log.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS posts (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id  TEXT NOT NULL,
	status_text TEXT NOT NULL,
	has_image   INTEGER NOT NULL DEFAULT 0,
	outcome     TEXT NOT NULL,
	post_id     TEXT,
	url         TEXT,
	error       TEXT,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS posts_created_at ON posts (created_at);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends e. A zero CreatedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (request_id, status_text, has_image, outcome, post_id, url, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.StatusText, e.HasImage, e.Outcome,
		nullable(e.PostID), nullable(e.URL), nullable(e.Error), e.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record post: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, status_text, has_image, outcome,
		        COALESCE(post_id, ''), COALESCE(url, ''), COALESCE(error, ''), created_at
		 FROM posts ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created int64
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.StatusText, &e.HasImage, &e.Outcome, &e.PostID, &e.URL, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
