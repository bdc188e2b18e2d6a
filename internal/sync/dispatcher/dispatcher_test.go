package dispatcher_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-sync/internal/jobs"
	jobsmocks "github.com/stacklok/toolhive-sync/internal/jobs/mocks"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/dispatcher"
	"github.com/stacklok/toolhive-sync/internal/sync/mocks"
)

var testEngines = []pkgsync.Engine{pkgsync.EngineTabs, pkgsync.EngineHistory}

// newDispatcher expects the leftover periodic cleanup done on construction
func newDispatcher(t *testing.T, scheduler *jobsmocks.MockScheduler, opts ...dispatcher.Option) *dispatcher.JobDispatcher {
	t.Helper()
	scheduler.EXPECT().CancelUnique(gomock.Any(), pkgsync.WorkNamePeriodic).Return(nil)
	d, err := dispatcher.New(context.Background(), scheduler, testEngines, opts...)
	require.NoError(t, err)
	return d
}

func expectedData(reason string) jobs.Data {
	return jobs.Data{}.
		WithStringArray(pkgsync.DataKeyStores, []string{"history", "tabs"}).
		WithString(pkgsync.DataKeyReason, reason)
}

func TestNew_CancelFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	scheduler.EXPECT().CancelUnique(gomock.Any(), pkgsync.WorkNamePeriodic).Return(errors.New("store unavailable"))

	d, err := dispatcher.New(context.Background(), scheduler, testEngines)
	require.Error(t, err)
	assert.Nil(t, d)
	assert.Contains(t, err.Error(), "failed to cancel periodic sync")
}

func TestSyncNow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		reason   pkgsync.Reason
		debounce bool
		expected jobs.WorkRequest
	}{
		{
			name:   "startup is delayed",
			reason: pkgsync.ReasonStartup,
			expected: jobs.WorkRequest{
				Tags:         []string{pkgsync.TagCommon, pkgsync.TagImmediate},
				Data:         expectedData("startup"),
				InitialDelay: 2 * time.Second,
				Constraints:  jobs.Constraints{NetworkConnected: true},
				BackoffDelay: time.Minute,
			},
		},
		{
			name:   "user sync runs right away",
			reason: pkgsync.ReasonUser,
			expected: jobs.WorkRequest{
				Tags:         []string{pkgsync.TagCommon, pkgsync.TagImmediate},
				Data:         expectedData("user"),
				Constraints:  jobs.Constraints{NetworkConnected: true},
				BackoffDelay: time.Minute,
			},
		},
		{
			name:     "debounced sync",
			reason:   pkgsync.ReasonEngineChange,
			debounce: true,
			expected: jobs.WorkRequest{
				Tags:         []string{pkgsync.TagCommon, pkgsync.TagDebounce},
				Data:         expectedData("engine_change"),
				Constraints:  jobs.Constraints{NetworkConnected: true},
				BackoffDelay: time.Minute,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			scheduler := jobsmocks.NewMockScheduler(ctrl)
			d := newDispatcher(t, scheduler,
				dispatcher.WithStartupDelay(2*time.Second),
				dispatcher.WithBackoffDelay(time.Minute))

			scheduler.EXPECT().
				EnqueueUnique(gomock.Any(), pkgsync.WorkNameImmediate, jobs.PolicyKeep, tt.expected).
				Return(nil)

			require.NoError(t, d.SyncNow(context.Background(), tt.reason, tt.debounce))
		})
	}
}

func TestSyncNow_EnqueueError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	d := newDispatcher(t, scheduler)

	scheduler.EXPECT().EnqueueUnique(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("disk full"))

	err := d.SyncNow(context.Background(), pkgsync.ReasonUser, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestStartAndStopPeriodicSync(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	d := newDispatcher(t, scheduler)

	expected := jobs.WorkRequest{
		Tags:         []string{pkgsync.TagCommon, pkgsync.TagDebounce},
		Data:         expectedData("periodic"),
		Constraints:  jobs.Constraints{NetworkConnected: true},
		BackoffDelay: dispatcher.DefaultBackoffDelay,
	}

	gomock.InOrder(
		scheduler.EXPECT().
			EnqueueUniquePeriodic(gomock.Any(), pkgsync.WorkNamePeriodic, jobs.PolicyReplace, time.Hour, expected).
			Return(nil),
		scheduler.EXPECT().CancelUnique(gomock.Any(), pkgsync.WorkNamePeriodic).Return(nil),
	)

	ctx := context.Background()
	require.NoError(t, d.StartPeriodicSync(ctx, time.Hour))
	require.NoError(t, d.StopPeriodicSync(ctx))
}

func TestWorkersStateChanged_IsEdgeTriggered(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	d := newDispatcher(t, scheduler)

	observer := mocks.NewMockSyncStatusObserver(ctrl)
	d.Register(observer)

	gomock.InOrder(
		observer.EXPECT().OnStarted(),
		observer.EXPECT().OnIdle(),
		observer.EXPECT().OnStarted(),
	)

	assert.False(t, d.IsSyncActive())

	d.WorkersStateChanged(false)
	d.WorkersStateChanged(true)
	assert.True(t, d.IsSyncActive())
	d.WorkersStateChanged(true)
	d.WorkersStateChanged(false)
	assert.False(t, d.IsSyncActive())
	d.WorkersStateChanged(false)
	d.WorkersStateChanged(true)
}

func TestUnregisteredObserverIsNotNotified(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	d := newDispatcher(t, scheduler)

	observer := mocks.NewMockSyncStatusObserver(ctrl)
	d.Register(observer)
	d.Unregister(observer)

	d.WorkersStateChanged(true)
	assert.True(t, d.IsSyncActive())
}

func TestClose(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	scheduler := jobsmocks.NewMockScheduler(ctrl)
	d := newDispatcher(t, scheduler)

	observer := mocks.NewMockSyncStatusObserver(ctrl)
	d.Register(observer)

	// Close cancels periodic work exactly once
	scheduler.EXPECT().CancelUnique(gomock.Any(), pkgsync.WorkNamePeriodic).Return(nil)

	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	// No observer expectations: transitions after close are ignored
	d.WorkersStateChanged(true)
	assert.False(t, d.IsSyncActive())
}
