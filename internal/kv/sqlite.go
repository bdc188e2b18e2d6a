package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Register the pure-Go sqlite driver
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// SQLiteStore stores values in a single table of an embedded SQLite database
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the SQLite database at path and creates the kv table if needed.
// Use ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the value for key
func (s *SQLiteStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (s *SQLiteStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`,
		namespace, key, value)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key
func (s *SQLiteStore) Delete(ctx context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM kv WHERE namespace = ? AND key = ?", namespace, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Keys returns the sorted keys in namespace
func (s *SQLiteStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE namespace = ? ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", namespace, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key in %s: %w", namespace, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", namespace, err)
	}
	return keys, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
