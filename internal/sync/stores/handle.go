package stores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stacklok/toolhive-sync/internal/engine"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

// HandleStore is a store the engine reaches through an opaque handle.
// Syncing it on its own runs an engine pass limited to its engine.
type HandleStore struct {
	name   pkgsync.Engine
	handle engine.Handle
	eng    engine.Engine
	state  state.SyncStateService
}

var _ pkgsync.SyncableStore = (*HandleStore)(nil)

// NewHandleStore creates a store for the engine name reachable through handle
func NewHandleStore(
	name pkgsync.Engine,
	handle engine.Handle,
	eng engine.Engine,
	stateSvc state.SyncStateService,
) *HandleStore {
	return &HandleStore{
		name:   name,
		handle: handle,
		eng:    eng,
		state:  stateSvc,
	}
}

// Handle returns the handle the engine binds
func (s *HandleStore) Handle() engine.Handle {
	return s.handle
}

// Sync runs an engine pass for this store only, using the cached device
// settings and persisted state. The returned persisted state is stored.
func (s *HandleStore) Sync(ctx context.Context, authInfo engine.AuthInfo) pkgsync.StoreStatus {
	kind, ok := s.name.BindingKind()
	if !ok {
		return pkgsync.StatusError(fmt.Errorf("%w: %q has no store binding", pkgsync.ErrUnknownEngine, s.name))
	}

	device, err := s.state.DeviceSettings(ctx)
	if err != nil {
		return pkgsync.StatusError(fmt.Errorf("failed to read device settings: %w", err))
	}
	if device == nil {
		return pkgsync.StatusError(errors.New("no device settings cached"))
	}

	persisted, err := s.state.PersistedState(ctx)
	if err != nil {
		return pkgsync.StatusError(fmt.Errorf("failed to read persisted state: %w", err))
	}

	s.eng.Bind(kind, s.handle)
	result, err := s.eng.Sync(ctx, &engine.Request{
		Reason:         engine.ReasonUser,
		Engines:        []string{string(s.name)},
		AuthInfo:       authInfo,
		PersistedState: persisted,
		DeviceSettings: *device,
	})
	if err != nil {
		return pkgsync.StatusError(fmt.Errorf("failed to sync store %s: %w", s.name, err))
	}

	if !result.StateUnchanged {
		if err := s.state.SetPersistedState(ctx, result.PersistedState); err != nil {
			slog.Warn("Failed to store persisted state after store sync", "engine", string(s.name), "error", err)
		}
	}

	if result.Status != engine.StatusOK {
		return pkgsync.StatusError(fmt.Errorf("store %s sync finished with status %s", s.name, result.Status))
	}
	if msg, failed := result.Failures[string(s.name)]; failed {
		return pkgsync.StatusError(fmt.Errorf("store %s sync failed: %s", s.name, msg))
	}
	return pkgsync.StatusOK
}
