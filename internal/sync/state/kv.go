package state

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/kv"
	"github.com/stacklok/toolhive-sync/internal/status"
)

type kvStateService struct {
	store kv.Store

	// statusMu makes read-modify-write of the run status atomic within this process
	statusMu sync.Mutex
}

var _ SyncStateService = (*kvStateService)(nil)

// NewStateService creates a SyncStateService on top of a key-value store
func NewStateService(store kv.Store) SyncStateService {
	return &kvStateService{store: store}
}

func (s *kvStateService) Initialize(ctx context.Context) error {
	_, err := s.UpdateStatusAtomically(ctx, func(syncStatus *status.SyncStatus) bool {
		switch {
		case syncStatus.Phase == "" && syncStatus.LastSyncTime == nil:
			slog.Info("No previous sync status found")
			return false
		case syncStatus.Phase == status.SyncPhaseSyncing:
			// The previous process stopped in the middle of a run
			slog.Warn("Previous sync was interrupted (status=Syncing), resetting to Failed")
			syncStatus.Phase = status.SyncPhaseFailed
			syncStatus.Message = "Previous sync was interrupted"
			return true
		}

		if syncStatus.LastSyncTime != nil {
			slog.Info("Loaded sync status",
				"phase", syncStatus.Phase,
				"last_sync", syncStatus.LastSyncTime.Format(time.RFC3339))
		} else {
			slog.Info("Loaded sync status", "phase", syncStatus.Phase)
		}
		return false
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sync status: %w", err)
	}
	return nil
}

func (s *kvStateService) LastSynced(ctx context.Context) (int64, error) {
	raw, ok, err := s.store.Get(ctx, NamespacePrefs, KeyLastSynced)
	if err != nil {
		return 0, fmt.Errorf("failed to read last synced time: %w", err)
	}
	if !ok {
		return 0, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		slog.Warn("Ignoring unparsable last synced time", "value", raw, "error", err)
		return 0, nil
	}
	return millis, nil
}

func (s *kvStateService) SetLastSynced(ctx context.Context, millis int64) error {
	if err := s.store.Set(ctx, NamespacePrefs, KeyLastSynced, strconv.FormatInt(millis, 10)); err != nil {
		return fmt.Errorf("failed to write last synced time: %w", err)
	}
	return nil
}

func (s *kvStateService) PersistedState(ctx context.Context) (string, error) {
	raw, _, err := s.store.Get(ctx, NamespacePrefs, KeyPersistedState)
	if err != nil {
		return "", fmt.Errorf("failed to read persisted state: %w", err)
	}
	return raw, nil
}

func (s *kvStateService) SetPersistedState(ctx context.Context, state string) error {
	if err := s.store.Set(ctx, NamespacePrefs, KeyPersistedState, state); err != nil {
		return fmt.Errorf("failed to write persisted state: %w", err)
	}
	return nil
}

func (s *kvStateService) AuthInfo(ctx context.Context) (*engine.AuthInfo, error) {
	var info engine.AuthInfo
	ok, err := s.getJSON(ctx, NamespaceAuth, KeyAuthInfo, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}

func (s *kvStateService) SetAuthInfo(ctx context.Context, info engine.AuthInfo) error {
	return s.setJSON(ctx, NamespaceAuth, KeyAuthInfo, info)
}

func (s *kvStateService) ClearAuthInfo(ctx context.Context) error {
	if err := s.store.Delete(ctx, NamespaceAuth, KeyAuthInfo); err != nil {
		return fmt.Errorf("failed to clear auth info: %w", err)
	}
	return nil
}

func (s *kvStateService) DeviceSettings(ctx context.Context) (*engine.DeviceSettings, error) {
	var settings engine.DeviceSettings
	ok, err := s.getJSON(ctx, NamespaceDeviceSettings, KeyDeviceSettings, &settings)
	if err != nil || !ok {
		return nil, err
	}
	return &settings, nil
}

func (s *kvStateService) SetDeviceSettings(ctx context.Context, settings engine.DeviceSettings) error {
	return s.setJSON(ctx, NamespaceDeviceSettings, KeyDeviceSettings, settings)
}

func (s *kvStateService) EngineStatuses(ctx context.Context) (map[string]bool, error) {
	names, err := s.store.Keys(ctx, NamespaceEngines)
	if err != nil {
		return nil, fmt.Errorf("failed to list engine statuses: %w", err)
	}

	statuses := make(map[string]bool, len(names))
	for _, name := range names {
		raw, ok, err := s.store.Get(ctx, NamespaceEngines, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read status of engine %s: %w", name, err)
		}
		if !ok {
			continue
		}
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			slog.Warn("Ignoring unparsable engine status", "engine", name, "value", raw)
			continue
		}
		statuses[name] = enabled
	}
	return statuses, nil
}

func (s *kvStateService) SetEngineStatus(ctx context.Context, name string, enabled bool) error {
	if err := s.store.Set(ctx, NamespaceEngines, name, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("failed to write status of engine %s: %w", name, err)
	}
	return nil
}

func (s *kvStateService) SyncStatus(ctx context.Context) (*status.SyncStatus, error) {
	var syncStatus status.SyncStatus
	if _, err := s.getJSON(ctx, NamespaceStatus, KeyLastRun, &syncStatus); err != nil {
		return nil, err
	}
	return &syncStatus, nil
}

func (s *kvStateService) UpdateSyncStatus(ctx context.Context, syncStatus *status.SyncStatus) error {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.setJSON(ctx, NamespaceStatus, KeyLastRun, syncStatus)
}

func (s *kvStateService) UpdateStatusAtomically(
	ctx context.Context,
	testAndUpdateFn func(syncStatus *status.SyncStatus) bool,
) (bool, error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	syncStatus, err := s.SyncStatus(ctx)
	if err != nil {
		return false, err
	}

	if !testAndUpdateFn(syncStatus) {
		return false, nil
	}
	if err := s.setJSON(ctx, NamespaceStatus, KeyLastRun, syncStatus); err != nil {
		return false, err
	}
	return true, nil
}

// Snapshot reads every part of the state concurrently
func (s *kvStateService) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.LastSynced, err = s.LastSynced(gctx)
		return err
	})
	g.Go(func() error {
		_, ok, err := s.store.Get(gctx, NamespacePrefs, KeyPersistedState)
		snap.HasPersistedState = ok
		return err
	})
	g.Go(func() error {
		_, ok, err := s.store.Get(gctx, NamespaceAuth, KeyAuthInfo)
		snap.HasAuthInfo = ok
		return err
	})
	g.Go(func() error {
		_, ok, err := s.store.Get(gctx, NamespaceDeviceSettings, KeyDeviceSettings)
		snap.HasDeviceSettings = ok
		return err
	})
	g.Go(func() error {
		var err error
		snap.Engines, err = s.EngineStatuses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Status, err = s.SyncStatus(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}
	return snap, nil
}

func (s *kvStateService) getJSON(ctx context.Context, namespace, key string, out any) (bool, error) {
	raw, ok, err := s.store.Get(ctx, namespace, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

func (s *kvStateService) setJSON(ctx context.Context, namespace, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s/%s: %w", namespace, key, err)
	}
	if err := s.store.Set(ctx, namespace, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	return nil
}
