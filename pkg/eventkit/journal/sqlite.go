package journal

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists journal entries to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./journal.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Create table and indexes
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS fires (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			payload BLOB NOT NULL,
			fired_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_fires_event
		ON fires(event, fired_at)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	_, err := s.db.Exec(`
		INSERT INTO fires (id, event, payload, fired_at)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Event, entry.Payload, entry.FiredAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	return nil
}

// Recent implements Store.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	// SQLite treats a negative LIMIT as unlimited
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, event, payload, fired_at
		FROM fires
		ORDER BY fired_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ByEvent implements Store.
func (s *SQLiteStore) ByEvent(event string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`
		SELECT id, event, payload, fired_at
		FROM fires
		WHERE event = ?
		ORDER BY fired_at DESC, id
		LIMIT ?
	`, event, limit)
	if err != nil {
		return nil, fmt.Errorf("query entries by event: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count implements Store.
func (s *SQLiteStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fires`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	result, err := s.db.Exec(`
		DELETE FROM fires WHERE fired_at < ?
	`, cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune entries: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	return int(removed), nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanEntries reads all rows into entries.
func scanEntries(rows *sql.Rows) ([]Entry, error) {
	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var firedAt string
		if err := rows.Scan(&entry.ID, &entry.Event, &entry.Payload, &firedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entry.FiredAt, _ = time.Parse(time.RFC3339Nano, firedAt)
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}
