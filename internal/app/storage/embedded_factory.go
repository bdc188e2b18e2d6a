package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stacklok/toolhive-sync/internal/config"
	"github.com/stacklok/toolhive-sync/internal/kv"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

// EmbeddedFactory creates components backed by storage in the process:
// plain files, Badger, SQLite or memory
type EmbeddedFactory struct {
	storageType string
	store       kv.Store
}

var _ Factory = (*EmbeddedFactory)(nil)

// NewEmbeddedFactory opens the configured embedded store, creating its directory if needed
func NewEmbeddedFactory(ctx context.Context, cfg *config.Config) (*EmbeddedFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	storageType := cfg.Storage.GetType()
	path := cfg.Storage.GetPath()

	slog.Info("Creating embedded storage factory", "type", storageType, "path", path)

	store, err := openEmbeddedStore(ctx, storageType, path)
	if err != nil {
		return nil, err
	}

	return &EmbeddedFactory{storageType: storageType, store: store}, nil
}

func openEmbeddedStore(ctx context.Context, storageType, path string) (kv.Store, error) {
	switch storageType {
	case config.StorageTypeMemory:
		slog.Warn("Using in-memory storage, sync state will not survive a restart")
		return kv.NewMemoryStore(), nil
	case config.StorageTypeFile:
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", path, err)
		}
		store, err := kv.NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return store, nil
	case config.StorageTypeBadger:
		if err := os.MkdirAll(path, 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory %s: %w", path, err)
		}
		store, err := kv.NewBadgerStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return store, nil
	case config.StorageTypeSQLite:
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create data directory for %s: %w", path, err)
		}
		store, err := kv.NewSQLiteStore(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("storage type %s is not embedded", storageType)
}

// KVStore returns the embedded store
func (f *EmbeddedFactory) KVStore() kv.Store {
	return f.store
}

// CreateStateService creates a state service on the embedded store
func (f *EmbeddedFactory) CreateStateService(_ context.Context) (state.SyncStateService, error) {
	slog.Debug("Creating state service", "storage", f.storageType)
	return state.NewStateService(f.store), nil
}

// Cleanup closes the embedded store
func (f *EmbeddedFactory) Cleanup() {
	if err := f.store.Close(); err != nil {
		slog.Warn("Failed to close storage", "type", f.storageType, "error", err)
	}
}
