// Package state contains the durable sync state: the last successful sync time,
// the engine's persisted state blob, cached account and device information,
// the enabled state of every engine and the status of the most recent run.
package state

import (
	"context"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/status"
)

// Namespaces and keys of the sync state in the key-value store
const (
	NamespacePrefs          = "syncPrefs"
	NamespaceAuth           = "syncAuth"
	NamespaceDeviceSettings = "deviceSettings"
	NamespaceEngines        = "syncEngines"
	NamespaceStatus         = "syncStatus"

	KeyLastSynced     = "lastSynced"
	KeyPersistedState = "persistedState"
	KeyAuthInfo       = "authInfo"
	KeyDeviceSettings = "settings"
	KeyLastRun        = "lastRun"
)

// SyncStateService provides typed access to the durable sync state
//
//go:generate mockgen -destination=mocks/mock_sync_state_service.go -package=mocks github.com/stacklok/toolhive-sync/internal/sync/state SyncStateService
type SyncStateService interface {
	// Initialize loads the last run status and repairs it if the previous
	// process stopped in the middle of a run. Call it once at startup.
	Initialize(ctx context.Context) error

	// LastSynced returns the epoch milliseconds of the last successful sync, 0 if never
	LastSynced(ctx context.Context) (int64, error)
	// SetLastSynced records the epoch milliseconds of a successful sync
	SetLastSynced(ctx context.Context, millis int64) error

	// PersistedState returns the engine's opaque state blob, or "" if none was stored
	PersistedState(ctx context.Context) (string, error)
	// SetPersistedState stores the engine's opaque state blob untouched
	SetPersistedState(ctx context.Context, state string) error

	// AuthInfo returns the cached account credentials, or nil if none are cached
	AuthInfo(ctx context.Context) (*engine.AuthInfo, error)
	// SetAuthInfo caches account credentials
	SetAuthInfo(ctx context.Context, info engine.AuthInfo) error
	// ClearAuthInfo removes cached account credentials
	ClearAuthInfo(ctx context.Context) error

	// DeviceSettings returns the cached device settings, or nil if none are cached
	DeviceSettings(ctx context.Context) (*engine.DeviceSettings, error)
	// SetDeviceSettings caches device settings
	SetDeviceSettings(ctx context.Context, settings engine.DeviceSettings) error

	// EngineStatuses returns the stored enabled state per engine name
	EngineStatuses(ctx context.Context) (map[string]bool, error)
	// SetEngineStatus stores the enabled state of an engine
	SetEngineStatus(ctx context.Context, name string, enabled bool) error

	// SyncStatus returns the status of the most recent run
	SyncStatus(ctx context.Context) (*status.SyncStatus, error)
	// UpdateSyncStatus overrides the status of the most recent run
	UpdateSyncStatus(ctx context.Context, syncStatus *status.SyncStatus) error
	// UpdateStatusAtomically fetches the run status, applies testAndUpdateFn and
	// stores the result if the function reports a modification, as a single
	// atomic action within this process.
	UpdateStatusAtomically(
		ctx context.Context,
		testAndUpdateFn func(syncStatus *status.SyncStatus) bool,
	) (bool, error)

	// Snapshot reads the state reported by the control API
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is a read-only view of the sync state
type Snapshot struct {
	LastSynced        int64              `json:"lastSynced"`
	HasPersistedState bool               `json:"hasPersistedState"`
	HasAuthInfo       bool               `json:"hasAuthInfo"`
	HasDeviceSettings bool               `json:"hasDeviceSettings"`
	Engines           map[string]bool    `json:"engines"`
	Status            *status.SyncStatus `json:"status"`
}
