package state_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/kv"
	kvmocks "github.com/stacklok/toolhive-sync/internal/kv/mocks"
	"github.com/stacklok/toolhive-sync/internal/status"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

func TestStateService_EmptyStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := state.NewStateService(kv.NewMemoryStore())

	lastSynced, err := svc.LastSynced(ctx)
	require.NoError(t, err)
	assert.Zero(t, lastSynced)

	persisted, err := svc.PersistedState(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)

	auth, err := svc.AuthInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, auth)

	device, err := svc.DeviceSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, device)

	engines, err := svc.EngineStatuses(ctx)
	require.NoError(t, err)
	assert.Empty(t, engines)

	syncStatus, err := svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, &status.SyncStatus{}, syncStatus)
}

func TestStateService_RoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := state.NewStateService(kv.NewMemoryStore())

	require.NoError(t, svc.SetLastSynced(ctx, 1700000000000))
	require.NoError(t, svc.SetPersistedState(ctx, `{"opaque":"blob"}`))
	require.NoError(t, svc.SetAuthInfo(ctx, engine.AuthInfo{
		Kid:                     "kid",
		FxaAccessToken:          "token",
		FxaAccessTokenExpiresAt: 42,
		SyncKey:                 "key",
		TokenServerURL:          "https://token.example.com",
	}))
	require.NoError(t, svc.SetDeviceSettings(ctx, engine.DeviceSettings{FxaDeviceID: "d1", Name: "laptop", Type: "desktop"}))
	require.NoError(t, svc.SetEngineStatus(ctx, "history", true))
	require.NoError(t, svc.SetEngineStatus(ctx, "tabs", false))

	lastSynced, err := svc.LastSynced(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), lastSynced)

	persisted, err := svc.PersistedState(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"opaque":"blob"}`, persisted, "the blob is stored untouched")

	auth, err := svc.AuthInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, auth)
	assert.Equal(t, "token", auth.FxaAccessToken)
	assert.Equal(t, int64(42), auth.FxaAccessTokenExpiresAt)

	device, err := svc.DeviceSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, device)
	assert.Equal(t, "laptop", device.Name)

	engines, err := svc.EngineStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"history": true, "tabs": false}, engines)

	require.NoError(t, svc.ClearAuthInfo(ctx))
	auth, err = svc.AuthInfo(ctx)
	require.NoError(t, err)
	assert.Nil(t, auth)
}

func TestStateService_UnparsableValuesAreIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, state.NamespacePrefs, state.KeyLastSynced, "yesterday"))
	require.NoError(t, store.Set(ctx, state.NamespaceEngines, "history", "maybe"))
	require.NoError(t, store.Set(ctx, state.NamespaceEngines, "tabs", "true"))

	svc := state.NewStateService(store)

	lastSynced, err := svc.LastSynced(ctx)
	require.NoError(t, err)
	assert.Zero(t, lastSynced)

	engines, err := svc.EngineStatuses(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"tabs": true}, engines)
}

func TestStateService_Initialize(t *testing.T) {
	t.Parallel()

	lastSync := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name          string
		initial       *status.SyncStatus
		expectPhase   status.SyncPhase
		expectMessage string
	}{
		{
			name:        "no previous status",
			initial:     nil,
			expectPhase: "",
		},
		{
			name:          "interrupted run is reset to failed",
			initial:       &status.SyncStatus{Phase: status.SyncPhaseSyncing, Message: "Sync in progress"},
			expectPhase:   status.SyncPhaseFailed,
			expectMessage: "Previous sync was interrupted",
		},
		{
			name:          "completed run is kept",
			initial:       &status.SyncStatus{Phase: status.SyncPhaseComplete, Message: "ok", LastSyncTime: &lastSync},
			expectPhase:   status.SyncPhaseComplete,
			expectMessage: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			svc := state.NewStateService(kv.NewMemoryStore())
			if tt.initial != nil {
				require.NoError(t, svc.UpdateSyncStatus(ctx, tt.initial))
			}

			require.NoError(t, svc.Initialize(ctx))

			got, err := svc.SyncStatus(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expectPhase, got.Phase)
			assert.Equal(t, tt.expectMessage, got.Message)
		})
	}
}

func TestStateService_UpdateStatusAtomically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := state.NewStateService(kv.NewMemoryStore())

	updated, err := svc.UpdateStatusAtomically(ctx, func(s *status.SyncStatus) bool {
		s.Phase = status.SyncPhaseSyncing
		s.AttemptCount++
		return true
	})
	require.NoError(t, err)
	assert.True(t, updated)

	// A function reporting no change leaves the stored status alone
	updated, err = svc.UpdateStatusAtomically(ctx, func(s *status.SyncStatus) bool {
		s.Phase = status.SyncPhaseFailed
		return false
	})
	require.NoError(t, err)
	assert.False(t, updated)

	got, err := svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, status.SyncPhaseSyncing, got.Phase)
	assert.Equal(t, 1, got.AttemptCount)
}

func TestStateService_UpdateStatusAtomicallyConcurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := state.NewStateService(kv.NewMemoryStore())

	const writers = 20
	done := make(chan struct{})
	for range writers {
		go func() {
			defer func() { done <- struct{}{} }()
			_, err := svc.UpdateStatusAtomically(ctx, func(s *status.SyncStatus) bool {
				s.AttemptCount++
				return true
			})
			assert.NoError(t, err)
		}()
	}
	for range writers {
		<-done
	}

	got, err := svc.SyncStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, got.AttemptCount)
}

func TestStateService_Snapshot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := state.NewStateService(kv.NewMemoryStore())

	require.NoError(t, svc.SetLastSynced(ctx, 1234))
	require.NoError(t, svc.SetAuthInfo(ctx, engine.AuthInfo{Kid: "kid"}))
	require.NoError(t, svc.SetEngineStatus(ctx, "bookmarks", true))
	require.NoError(t, svc.UpdateSyncStatus(ctx, &status.SyncStatus{Phase: status.SyncPhaseComplete}))

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), snap.LastSynced)
	assert.True(t, snap.HasAuthInfo)
	assert.False(t, snap.HasDeviceSettings)
	assert.False(t, snap.HasPersistedState)
	assert.Equal(t, map[string]bool{"bookmarks": true}, snap.Engines)
	assert.Equal(t, status.SyncPhaseComplete, snap.Status.Phase)
}

func TestStateService_StoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	store := kvmocks.NewMockStore(ctrl)
	store.EXPECT().Set(gomock.Any(), state.NamespacePrefs, state.KeyLastSynced, "1").Return(errors.New("disk full"))
	store.EXPECT().Get(gomock.Any(), state.NamespaceAuth, state.KeyAuthInfo).Return("{not json", true, nil)

	svc := state.NewStateService(store)

	err := svc.SetLastSynced(ctx, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	_, err = svc.AuthInfo(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}
