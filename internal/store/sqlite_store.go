package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/plexutil/watchsweep/internal/events"
	"github.com/plexutil/watchsweep/internal/models"
)

// SQLiteStore implements Store on a single SQLite database. Writes run in
// transactions so the snapshot replacement is all-or-nothing.
type SQLiteStore struct {
	db     *sql.DB
	logger *events.Logger
}

// NewSQLiteStore creates a SQLite-backed store at dbPath.
func NewSQLiteStore(dbPath string, logger *events.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		logger: logger.WithField("component", "sqlite_store"),
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return store, nil
}

// initialize creates tables.
func (s *SQLiteStore) initialize() error {
	schema := `
    CREATE TABLE IF NOT EXISTS account_tokens (
        username TEXT PRIMARY KEY,
        token TEXT NOT NULL,
        updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS primary_cache (
        id INTEGER PRIMARY KEY CHECK (id = 1),
        token TEXT NOT NULL,
        acquired_at TIMESTAMP NOT NULL
    );

    CREATE TABLE IF NOT EXISTS collection_snapshot (
        item_id TEXT PRIMARY KEY
    );
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Token returns the token registered for username.
func (s *SQLiteStore) Token(username string) (string, error) {
	var token string
	err := s.db.QueryRow(
		"SELECT token FROM account_tokens WHERE username = ?", username,
	).Scan(&token)

	if err == sql.ErrNoRows {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query token: %w", err)
	}
	return token, nil
}

// PutToken registers or replaces the token for username.
func (s *SQLiteStore) PutToken(username, token string) error {
	_, err := s.db.Exec(`
        INSERT INTO account_tokens (username, token, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(username) DO UPDATE SET
            token = excluded.token,
            updated_at = CURRENT_TIMESTAMP
    `, username, token)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Tokens returns the full username→token map.
func (s *SQLiteStore) Tokens() (map[string]string, error) {
	rows, err := s.db.Query("SELECT username, token FROM account_tokens")
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	tokens := make(map[string]string)
	for rows.Next() {
		var username, token string
		if err := rows.Scan(&username, &token); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		tokens[username] = token
	}
	return tokens, rows.Err()
}

// PrimaryCache returns the cached primary token.
func (s *SQLiteStore) PrimaryCache() (*models.PrimaryCache, error) {
	var cache models.PrimaryCache
	var acquiredAt time.Time

	err := s.db.QueryRow(
		"SELECT token, acquired_at FROM primary_cache WHERE id = 1",
	).Scan(&cache.Token, &acquiredAt)

	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query primary cache: %w", err)
	}

	cache.AcquiredAt = acquiredAt
	return &cache, nil
}

// PutPrimaryCache replaces the cached primary token.
func (s *SQLiteStore) PutPrimaryCache(cache models.PrimaryCache) error {
	_, err := s.db.Exec(`
        INSERT INTO primary_cache (id, token, acquired_at)
        VALUES (1, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            token = excluded.token,
            acquired_at = excluded.acquired_at
    `, cache.Token, cache.AcquiredAt)
	if err != nil {
		return fmt.Errorf("upsert primary cache: %w", err)
	}
	return nil
}

// LoadSnapshot returns the persisted identifier set.
func (s *SQLiteStore) LoadSnapshot() (map[string]struct{}, error) {
	rows, err := s.db.Query("SELECT item_id FROM collection_snapshot")
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snapshot[id] = struct{}{}
	}
	return snapshot, rows.Err()
}

// SaveSnapshot replaces the persisted identifier set in one transaction.
func (s *SQLiteStore) SaveSnapshot(snapshot map[string]struct{}) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM collection_snapshot"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO collection_snapshot (item_id) VALUES (?)")
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for id := range snapshot {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("insert item %s: %w", id, err)
		}
	}

	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
