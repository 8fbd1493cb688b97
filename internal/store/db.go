package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotInitialized is returned when the mirror tables do not exist yet.
var ErrNotInitialized = errors.New("mirror database not initialized: run 'permaudit import' first")

// Store is the SQLite mirror of an installed-application inventory and its
// usage history.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only allows one writer at a time
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateSchema creates all tables and indexes.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// wrapQueryErr maps "no such table" to ErrNotInitialized.
func wrapQueryErr(msg string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%s: %w", msg, ErrNotInitialized)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
