package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-sync/internal/engine"
	enginemocks "github.com/stacklok/toolhive-sync/internal/engine/mocks"
)

func TestSyncApp_StartRunsStartupSync(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)

	eng := enginemocks.NewMockEngine(ctrl)
	eng.EXPECT().Bind(gomock.Any(), gomock.Any()).AnyTimes()
	eng.EXPECT().Sync(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *engine.Request) (*engine.Result, error) {
			assert.Equal(t, engine.ReasonStartup, req.Reason)
			return &engine.Result{
				Status:         engine.StatusOK,
				Successful:     []string{"history", "tabs"},
				PersistedState: `{"global":"v1"}`,
			}, nil
		}).
		MinTimes(1)

	cfg := testConfig(t)
	cfg.Sync.StartupDelay = "10ms"

	app, err := NewSyncApp(ctx,
		WithConfig(cfg),
		WithAddress("127.0.0.1:0"),
		WithEngine(eng),
		WithShutdownTimeout(5*time.Second),
	)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	stateSvc := app.Components().State
	require.Eventually(t, func() bool {
		lastSynced, err := stateSvc.LastSynced(ctx)
		return err == nil && lastSynced > 0
	}, 5*time.Second, 20*time.Millisecond)

	assert.True(t, app.Components().Manager.IsStarted())
	persisted, err := stateSvc.PersistedState(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"global":"v1"}`, persisted)

	require.NoError(t, app.Stop(5*time.Second))
	require.NoError(t, <-errCh)
	assert.False(t, app.Components().Manager.IsStarted())
}

func TestSyncApp_StartTwice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, err := NewSyncApp(context.Background(),
		WithConfig(testConfig(t)),
		WithEngine(enginemocks.NewMockEngine(ctrl)),
	)
	require.NoError(t, err)

	app.started.Store(true)
	require.EqualError(t, app.Start(), "application already started")
	app.started.Store(false)

	require.NoError(t, app.Stop(time.Second))
}

func TestSyncApp_StopWithoutStart(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, err := NewSyncApp(context.Background(),
		WithConfig(testConfig(t)),
		WithEngine(enginemocks.NewMockEngine(ctrl)),
	)
	require.NoError(t, err)

	require.NoError(t, app.Stop(time.Second))
	// Stopping twice is harmless
	require.NoError(t, app.Stop(time.Second))
}
