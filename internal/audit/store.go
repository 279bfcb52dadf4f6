// Package audit keeps a local SQLite log of every command dispatch.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/foundrgate/foundrgate/internal/commands"
)

const schema = `
CREATE TABLE IF NOT EXISTS invocations (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	action TEXT NOT NULL DEFAULT '',
	user_id TEXT NOT NULL,
	outcome TEXT NOT NULL,
	error_text TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_invocations_created ON invocations(created_at);
CREATE INDEX IF NOT EXISTS idx_invocations_user ON invocations(user_id);
`

// Entry is one recorded dispatch.
type Entry struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Action     string    `json:"action,omitempty"`
	UserID     string    `json:"user_id"`
	Outcome    string    `json:"outcome"`
	ErrorText  string    `json:"error_text,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store writes and reads the invocation log.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// NewStore opens (or creates) the audit database at path.
func NewStore(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create audit dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record writes one entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invocations (id, command, action, user_id, outcome, error_text, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Command, e.Action, e.UserID, e.Outcome, e.ErrorText, e.DurationMs, e.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}
	return nil
}

// DispatchCompleted records the completion; a failure to record is logged and
// never affects the dispatch.
func (s *Store) DispatchCompleted(ctx context.Context, c commands.Completion) {
	err := s.Record(ctx, Entry{
		ID:         c.ID,
		Command:    c.Command,
		Action:     c.Action,
		UserID:     c.UserID,
		Outcome:    string(c.Outcome),
		ErrorText:  c.Error,
		DurationMs: c.Duration.Milliseconds(),
		CreatedAt:  c.At,
	})
	if err != nil {
		s.log.Warn("audit record failed", "id", c.ID, "error", err)
	}
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, command, action, user_id, outcome, error_text, duration_ms, created_at
		FROM invocations ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Command, &e.Action, &e.UserID, &e.Outcome, &e.ErrorText, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats returns dispatch counts grouped by outcome.
func (s *Store) Stats(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM invocations GROUP BY outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	stats := map[string]int64{}
	for rows.Next() {
		var outcome string
		var count int64
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats[outcome] = count
	}
	return stats, rows.Err()
}
