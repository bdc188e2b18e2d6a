package app

import (
	"github.com/stacklok/toolhive-sync/internal/jobs"
	"github.com/stacklok/toolhive-sync/internal/service"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
	"github.com/stacklok/toolhive-sync/internal/sync/stores"
)

// SyncComponents groups all application components
type SyncComponents struct {
	// Manager owns the sync lifecycle
	Manager *pkgsync.Manager

	// Queue runs sync work and checkpoints it to the state store
	Queue *jobs.Queue

	// Service backs the control API
	Service service.SyncService

	// State provides typed access to the durable sync state
	State state.SyncStateService

	// Stores holds the syncable stores per engine
	Stores *stores.Registry
}
