// Package dispatcher binds the sync manager to a jobs.Scheduler. It turns
// sync requests into unique work and reports whether sync work is running.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/stacklok/toolhive-sync/internal/jobs"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/telemetry"
)

const (
	// DefaultStartupDelay postpones a sync requested at startup
	DefaultStartupDelay = 5 * time.Second

	// DefaultBackoffDelay is the first retry delay of sync work
	DefaultBackoffDelay = 3 * time.Minute

	closeTimeout = 10 * time.Second
)

// JobDispatcher is a pkgsync.Dispatcher backed by a jobs.Scheduler
type JobDispatcher struct {
	scheduler jobs.Scheduler
	engines   []string

	startupDelay time.Duration
	backoffDelay time.Duration
	metrics      *telemetry.SyncMetrics

	observers *pkgsync.ObserverRegistry[pkgsync.SyncStatusObserver]

	mu     gosync.Mutex
	active bool
	closed bool
}

var _ pkgsync.Dispatcher = (*JobDispatcher)(nil)

// Option configures a JobDispatcher
type Option func(*JobDispatcher)

// WithStartupDelay sets how long a startup sync waits before running
func WithStartupDelay(delay time.Duration) Option {
	return func(d *JobDispatcher) {
		d.startupDelay = delay
	}
}

// WithBackoffDelay sets the first retry delay of sync work
func WithBackoffDelay(delay time.Duration) Option {
	return func(d *JobDispatcher) {
		d.backoffDelay = delay
	}
}

// WithSyncMetrics records active state transitions
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(d *JobDispatcher) {
		d.metrics = metrics
	}
}

// New creates a dispatcher for engines. Periodic work left over from a
// previous dispatcher is cancelled; callers start it again if they want it.
func New(ctx context.Context, scheduler jobs.Scheduler, engines []pkgsync.Engine, opts ...Option) (*JobDispatcher, error) {
	d := &JobDispatcher{
		scheduler:    scheduler,
		engines:      pkgsync.EngineNames(engines),
		startupDelay: DefaultStartupDelay,
		backoffDelay: DefaultBackoffDelay,
		observers:    pkgsync.NewObserverRegistry[pkgsync.SyncStatusObserver](),
	}
	for _, opt := range opts {
		opt(d)
	}

	if err := d.StopPeriodicSync(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Register adds a sync status observer
func (d *JobDispatcher) Register(observer pkgsync.SyncStatusObserver) {
	d.observers.Register(observer)
}

// Unregister removes a sync status observer
func (d *JobDispatcher) Unregister(observer pkgsync.SyncStatusObserver) {
	d.observers.Unregister(observer)
}

// IsSyncActive reports whether sync work was running at the last observed transition
func (d *JobDispatcher) IsSyncActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SyncNow enqueues an immediate sync. It is dropped while another immediate
// sync is pending or running.
func (d *JobDispatcher) SyncNow(ctx context.Context, reason pkgsync.Reason, debounce bool) error {
	tags := []string{pkgsync.TagCommon, pkgsync.TagImmediate}
	if debounce {
		tags = []string{pkgsync.TagCommon, pkgsync.TagDebounce}
	}

	req := d.request(reason, tags)
	if reason == pkgsync.ReasonStartup {
		req.InitialDelay = d.startupDelay
	}

	slog.Debug("Requesting immediate sync",
		"reason", reason.String(),
		"debounce", debounce,
		"initial_delay", req.InitialDelay)

	if err := d.scheduler.EnqueueUnique(ctx, pkgsync.WorkNameImmediate, jobs.PolicyKeep, req); err != nil {
		return fmt.Errorf("failed to enqueue immediate sync: %w", err)
	}
	return nil
}

// StartPeriodicSync schedules a debounced sync every interval, replacing any previous schedule
func (d *JobDispatcher) StartPeriodicSync(ctx context.Context, interval time.Duration) error {
	req := d.request(pkgsync.ReasonScheduled, []string{pkgsync.TagCommon, pkgsync.TagDebounce})

	slog.Info("Starting periodic sync", "interval", interval, "engines", d.engines)

	if err := d.scheduler.EnqueueUniquePeriodic(ctx, pkgsync.WorkNamePeriodic, jobs.PolicyReplace, interval, req); err != nil {
		return fmt.Errorf("failed to enqueue periodic sync: %w", err)
	}
	return nil
}

// StopPeriodicSync cancels the periodic sync
func (d *JobDispatcher) StopPeriodicSync(ctx context.Context) error {
	if err := d.scheduler.CancelUnique(ctx, pkgsync.WorkNamePeriodic); err != nil {
		return fmt.Errorf("failed to cancel periodic sync: %w", err)
	}
	return nil
}

// WorkersStateChanged notifies observers when sync work goes from idle to
// active and back. Repeated states are ignored.
func (d *JobDispatcher) WorkersStateChanged(isRunning bool) {
	d.mu.Lock()
	if d.closed || d.active == isRunning {
		d.mu.Unlock()
		return
	}
	d.active = isRunning
	d.mu.Unlock()

	d.metrics.RecordActiveTransition(context.Background(), isRunning)

	if isRunning {
		slog.Debug("Sync work started")
		d.observers.Notify(func(o pkgsync.SyncStatusObserver) { o.OnStarted() })
		return
	}
	slog.Debug("Sync work is idle")
	d.observers.Notify(func(o pkgsync.SyncStatusObserver) { o.OnIdle() })
}

// Close stops the periodic sync. Running work is allowed to finish and no
// further state transitions are reported.
func (d *JobDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return d.StopPeriodicSync(ctx)
}

func (d *JobDispatcher) request(reason pkgsync.Reason, tags []string) jobs.WorkRequest {
	return jobs.WorkRequest{
		Tags: tags,
		Data: jobs.Data{}.
			WithStringArray(pkgsync.DataKeyStores, d.engines).
			WithString(pkgsync.DataKeyReason, reason.String()),
		Constraints:  jobs.Constraints{NetworkConnected: true},
		BackoffDelay: d.backoffDelay,
	}
}
