package jobs_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-sync/internal/jobs"
	"github.com/stacklok/toolhive-sync/internal/jobs/mocks"
	"github.com/stacklok/toolhive-sync/internal/kv"
)

// This test lives in the external test package because jobs/mocks imports jobs

const (
	waitFor = 5 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder is a Runner that records every run
type recorder struct {
	mu   sync.Mutex
	runs []jobs.Params
}

func (r *recorder) Run(_ context.Context, p jobs.Params) jobs.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, p)
	return jobs.ResultSuccess
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

// serve runs q until the test ends
func serve(t *testing.T, q *jobs.Queue) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestQueue_NetworkConstraint(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	network := mocks.NewMockNetworkMonitor(ctrl)

	var connected atomic.Bool
	network.EXPECT().Connected().DoAndReturn(connected.Load).AnyTimes()

	runner := &recorder{}
	q := jobs.NewQueue(kv.NewMemoryStore(), runner,
		jobs.WithNetworkMonitor(network),
		jobs.WithNetworkRecheck(10*time.Millisecond))
	req := jobs.WorkRequest{Constraints: jobs.Constraints{NetworkConnected: true}}
	require.NoError(t, q.EnqueueUnique(context.Background(), "Immediate", jobs.PolicyKeep, req))
	serve(t, q)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, runner.count())

	connected.Store(true)
	require.Eventually(t, func() bool { return runner.count() == 1 }, waitFor, tick)
}
