// Package kv provides durable, namespaced string key-value storage.
//
// Sync state is small and written rarely, so every backend stores plain
// strings addressed by a namespace and a key. Writes to a single key are
// last-writer-wins; no backend offers multi-key transactions.
package kv

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=kv.go Store

// ErrInvalidNamespace is returned for namespaces that cannot be stored
var ErrInvalidNamespace = errors.New("invalid namespace")

// ErrClosed is returned by operations on a closed store
var ErrClosed = errors.New("store is closed")

// Store is a namespaced string key-value store
type Store interface {
	// Get returns the value for key. The boolean is false if the key does not exist.
	Get(ctx context.Context, namespace, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, namespace, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, namespace, key string) error

	// Keys returns the keys in namespace in ascending order
	Keys(ctx context.Context, namespace string) ([]string, error)

	// Close releases resources held by the store
	Close() error
}

// validateNamespace accepts ASCII letters, digits, '_' and '-'.
// Namespaces double as file names and key prefixes in some backends.
func validateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("%w: namespace cannot be empty", ErrInvalidNamespace)
	}
	for _, r := range namespace {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return fmt.Errorf("%w: %q contains %q", ErrInvalidNamespace, namespace, r)
		}
	}
	return nil
}
