package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore stores values in the sync_kv table created by the database migrations
type PostgresStore struct {
	pool *pgxpool.Pool
	// ownsPool is true when Close should close the pool
	ownsPool bool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore uses an existing connection pool. Close leaves the pool open.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// NewPostgresStoreFromConnString creates its own pool for connString. Close closes the pool.
func NewPostgresStoreFromConnString(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	return &PostgresStore{pool: pool, ownsPool: true}, nil
}

// Get returns the value for key
func (p *PostgresStore) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	if err := validateNamespace(namespace); err != nil {
		return "", false, err
	}

	var value string
	err := p.pool.QueryRow(ctx,
		"SELECT value FROM sync_kv WHERE namespace = $1 AND key = $2", namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

// Set stores value under key
func (p *PostgresStore) Set(ctx context.Context, namespace, key, value string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	_, err := p.pool.Exec(ctx,
		`INSERT INTO sync_kv (namespace, key, value, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		namespace, key, value)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key
func (p *PostgresStore) Delete(ctx context.Context, namespace, key string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx,
		"DELETE FROM sync_kv WHERE namespace = $1 AND key = $2", namespace, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Keys returns the sorted keys in namespace
func (p *PostgresStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx,
		"SELECT key FROM sync_kv WHERE namespace = $1 ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", namespace, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list keys in %s: %w", namespace, err)
	}
	return keys, nil
}

// Close closes the pool if this store created it
func (p *PostgresStore) Close() error {
	if p.ownsPool {
		p.pool.Close()
	}
	return nil
}
