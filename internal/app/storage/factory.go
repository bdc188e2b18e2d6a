// Package storage provides factory functions for creating storage-dependent components.
// A factory opens one kv.Store for the configured backend and builds every
// component that persists sync data on top of it, so the scheduler checkpoints
// and the sync state always live in the same place.
package storage

import (
	"context"
	"fmt"

	"github.com/stacklok/toolhive-sync/internal/config"
	"github.com/stacklok/toolhive-sync/internal/kv"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components as a family.
//
// It also manages the lifecycle of storage resources (e.g., database connections).
type Factory interface {
	// KVStore returns the store shared by every component of this factory
	KVStore() kv.Store

	// CreateStateService creates a state service backed by KVStore
	CreateStateService(ctx context.Context) (state.SyncStateService, error)

	// Cleanup releases any resources held by this factory.
	// Should be called when the application shuts down.
	Cleanup()
}

// NewStorageFactory creates a storage factory based on the configured storage type
func NewStorageFactory(ctx context.Context, cfg *config.Config) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	switch cfg.Storage.GetType() {
	case config.StorageTypeDatabase:
		return NewDatabaseFactory(ctx, cfg)
	case config.StorageTypeFile, config.StorageTypeBadger, config.StorageTypeSQLite, config.StorageTypeMemory:
		return NewEmbeddedFactory(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.GetType())
	}
}
