package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/mocks"
)

var testEngines = []pkgsync.Engine{pkgsync.EngineHistory, pkgsync.EngineBookmarks}

func TestManager_Start(t *testing.T) {
	t.Parallel()

	hour := 60 * time.Minute

	tests := []struct {
		name         string
		period       *time.Duration
		expectPeriod bool
	}{
		{
			name:         "startup with periodic sync",
			period:       &hour,
			expectPeriod: true,
		},
		{
			name:         "startup without periodic sync",
			period:       nil,
			expectPeriod: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			factory := mocks.NewMockDispatcherFactory(ctrl)
			dispatcher := mocks.NewMockDispatcher(ctrl)

			ctx := context.Background()
			cfg := pkgsync.NewConfig(testEngines, tt.period)

			gomock.InOrder(
				factory.EXPECT().CreateDispatcher(ctx, cfg.SupportedEngines).Return(dispatcher, nil),
				dispatcher.EXPECT().Register(gomock.Any()),
				dispatcher.EXPECT().SyncNow(ctx, pkgsync.ReasonStartup, false).Return(nil),
			)
			if tt.expectPeriod {
				dispatcher.EXPECT().StartPeriodicSync(ctx, hour).Return(nil)
			}
			factory.EXPECT().DispatcherUpdated(dispatcher)

			manager := pkgsync.NewManager(cfg, factory)
			require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))
		})
	}
}

func TestManager_StartReplacesDispatcher(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)
	first := mocks.NewMockDispatcher(ctrl)
	second := mocks.NewMockDispatcher(ctrl)

	ctx := context.Background()
	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)

	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(first, nil)
	first.EXPECT().Register(gomock.Any())
	first.EXPECT().SyncNow(ctx, pkgsync.ReasonStartup, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(first)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))

	// The previous dispatcher is closed before the new one is created
	gomock.InOrder(
		first.EXPECT().Unregister(gomock.Any()),
		first.EXPECT().Close().Return(nil),
		factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(second, nil),
	)
	second.EXPECT().Register(gomock.Any())
	second.EXPECT().SyncNow(ctx, pkgsync.ReasonUser, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(second)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonUser))

	second.EXPECT().IsSyncActive().Return(true)
	assert.True(t, manager.IsSyncActive())
}

func TestManager_StartFactoryError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)

	ctx := context.Background()
	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(nil, errors.New("scheduler unavailable"))

	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)
	err := manager.Start(ctx, pkgsync.ReasonStartup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler unavailable")
	assert.False(t, manager.IsSyncActive())

	// Nothing to forward to
	require.NoError(t, manager.Now(ctx, pkgsync.ReasonUser, false))
}

func TestManager_StopThenNowIsNoop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)
	dispatcher := mocks.NewMockDispatcher(ctrl)

	ctx := context.Background()
	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)

	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(dispatcher, nil)
	dispatcher.EXPECT().Register(gomock.Any())
	dispatcher.EXPECT().SyncNow(ctx, pkgsync.ReasonStartup, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(dispatcher)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))
	assert.True(t, manager.IsStarted())

	gomock.InOrder(
		dispatcher.EXPECT().Unregister(gomock.Any()),
		dispatcher.EXPECT().StopPeriodicSync(ctx).Return(nil),
		dispatcher.EXPECT().Close().Return(nil),
	)
	require.NoError(t, manager.Stop(ctx))
	assert.False(t, manager.IsStarted())

	// No further dispatcher calls are expected
	require.NoError(t, manager.Now(ctx, pkgsync.ReasonUser, false))
	assert.False(t, manager.IsSyncActive())

	// Stopping twice is harmless
	require.NoError(t, manager.Stop(ctx))
}

func TestManager_NowForwardsToDispatcher(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)
	dispatcher := mocks.NewMockDispatcher(ctrl)

	ctx := context.Background()
	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)

	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(dispatcher, nil)
	dispatcher.EXPECT().Register(gomock.Any())
	dispatcher.EXPECT().SyncNow(ctx, pkgsync.ReasonStartup, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(dispatcher)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))

	dispatcher.EXPECT().SyncNow(ctx, pkgsync.ReasonUser, true).Return(nil)
	require.NoError(t, manager.Now(ctx, pkgsync.ReasonUser, true))
}

func TestManager_ObserversSurviveDispatcherSwap(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)
	first := mocks.NewMockDispatcher(ctrl)
	second := mocks.NewMockDispatcher(ctrl)
	observer := mocks.NewMockSyncStatusObserver(ctrl)

	ctx := context.Background()
	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)
	manager.RegisterSyncStatusObserver(observer)

	var passThroughs []pkgsync.SyncStatusObserver
	capture := func(o pkgsync.SyncStatusObserver) { passThroughs = append(passThroughs, o) }

	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(first, nil)
	first.EXPECT().Register(gomock.Any()).Do(capture)
	first.EXPECT().SyncNow(ctx, gomock.Any(), false).Return(nil)
	factory.EXPECT().DispatcherUpdated(first)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))

	first.EXPECT().Unregister(gomock.Any())
	first.EXPECT().Close().Return(nil)
	factory.EXPECT().CreateDispatcher(ctx, gomock.Any()).Return(second, nil)
	second.EXPECT().Register(gomock.Any()).Do(capture)
	second.EXPECT().SyncNow(ctx, gomock.Any(), false).Return(nil)
	factory.EXPECT().DispatcherUpdated(second)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonUser))

	require.Len(t, passThroughs, 2)
	assert.Same(t, passThroughs[0], passThroughs[1])

	syncErr := errors.New("boom")
	gomock.InOrder(
		observer.EXPECT().OnStarted(),
		observer.EXPECT().OnError(syncErr),
		observer.EXPECT().OnIdle(),
	)
	passThroughs[1].OnStarted()
	passThroughs[1].OnError(syncErr)
	passThroughs[1].OnIdle()

	manager.UnregisterSyncStatusObserver(observer)
	passThroughs[1].OnStarted()
}

func TestManager_SetEngines(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	factory := mocks.NewMockDispatcherFactory(ctrl)
	first := mocks.NewMockDispatcher(ctrl)
	second := mocks.NewMockDispatcher(ctrl)

	ctx := context.Background()
	manager := pkgsync.NewManager(pkgsync.NewConfig(testEngines, nil), factory)

	// Not started yet: only the config changes
	require.NoError(t, manager.SetEngines(ctx, []pkgsync.Engine{pkgsync.EngineTabs}, pkgsync.ReasonEngineChange))
	assert.Equal(t, []pkgsync.Engine{pkgsync.EngineTabs}, manager.Config().SupportedEngines)

	factory.EXPECT().CreateDispatcher(ctx, []pkgsync.Engine{pkgsync.EngineTabs}).Return(first, nil)
	first.EXPECT().Register(gomock.Any())
	first.EXPECT().SyncNow(ctx, pkgsync.ReasonStartup, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(first)
	require.NoError(t, manager.Start(ctx, pkgsync.ReasonStartup))

	newEngines := []pkgsync.Engine{pkgsync.EnginePasswords, pkgsync.EngineTabs, pkgsync.EnginePasswords}
	first.EXPECT().Unregister(gomock.Any())
	first.EXPECT().Close().Return(nil)
	factory.EXPECT().
		CreateDispatcher(ctx, []pkgsync.Engine{pkgsync.EnginePasswords, pkgsync.EngineTabs}).
		Return(second, nil)
	second.EXPECT().Register(gomock.Any())
	second.EXPECT().SyncNow(ctx, pkgsync.ReasonEngineChange, false).Return(nil)
	factory.EXPECT().DispatcherUpdated(second)
	require.NoError(t, manager.SetEngines(ctx, newEngines, pkgsync.ReasonEngineChange))
}
