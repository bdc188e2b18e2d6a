package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/stacklok/toolhive-sync/internal/kv"
	"github.com/stacklok/toolhive-sync/internal/telemetry"
)

const (
	// DefaultMinPeriod is the shortest interval periodic work may use
	DefaultMinPeriod = 15 * time.Minute

	// DefaultRunTimeout bounds a single run
	DefaultRunTimeout = 10 * time.Minute

	// DefaultBackoffDelay is the first retry delay when a request does not set one
	DefaultBackoffDelay = 30 * time.Second

	// maxBackoffDelay caps the exponential retry delay
	maxBackoffDelay = 5 * time.Hour

	// defaultNetworkRecheck is how often work blocked on connectivity is re-evaluated
	defaultNetworkRecheck = 30 * time.Second

	// idleWait is how long the scheduling loop sleeps when nothing is pending
	idleWait = time.Hour
)

// workItem is a work definition with its scheduling state
type workItem struct {
	name    string
	req     WorkRequest
	period  time.Duration
	nextRun time.Time
	attempt int

	running bool
	// removed is set when the work was cancelled or replaced while running
	removed bool

	backoff *backoff.ExponentialBackOff
}

func (q *Queue) newItem(name string, req WorkRequest, period time.Duration, nextRun time.Time) *workItem {
	delay := req.BackoffDelay
	if delay <= 0 {
		delay = q.defaultBackoff
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = delay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxBackoffDelay

	return &workItem{
		name:    name,
		req:     req,
		period:  period,
		nextRun: nextRun,
		backoff: b,
	}
}

type tagObserver struct {
	fn func(running bool)
}

// Queue is the in-process Scheduler implementation.
// Call Serve to start running work; work may be enqueued before Serve is called.
type Queue struct {
	store   kv.Store
	runner  Runner
	network NetworkMonitor

	minPeriod      time.Duration
	runTimeout     time.Duration
	defaultBackoff time.Duration
	networkRecheck time.Duration
	metrics        *telemetry.JobMetrics

	mu sync.Mutex
	// items holds the current definition per unique name
	items map[string]*workItem
	// runningNames holds names with a run in progress, including removed items
	runningNames map[string]bool
	// runningTags counts runs in progress per tag
	runningTags map[string]int
	restored    bool

	wake chan struct{}

	// persistMu serializes checkpoint writes
	persistMu sync.Mutex

	// notifyMu serializes tag state delivery
	notifyMu  sync.Mutex
	observers map[string][]*tagObserver
	delivered map[*tagObserver]bool

	wg sync.WaitGroup
}

var _ Scheduler = (*Queue)(nil)

// Option configures a Queue
type Option func(*Queue)

// WithNetworkMonitor sets the connectivity source for network constrained work
func WithNetworkMonitor(m NetworkMonitor) Option {
	return func(q *Queue) {
		q.network = m
	}
}

// WithMinPeriod sets the shortest interval periodic work may use
func WithMinPeriod(d time.Duration) Option {
	return func(q *Queue) {
		q.minPeriod = d
	}
}

// WithRunTimeout sets the deadline of a single run
func WithRunTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.runTimeout = d
	}
}

// WithDefaultBackoff sets the first retry delay for requests that do not set one
func WithDefaultBackoff(d time.Duration) Option {
	return func(q *Queue) {
		q.defaultBackoff = d
	}
}

// WithNetworkRecheck sets how often work blocked on connectivity is re-evaluated
func WithNetworkRecheck(d time.Duration) Option {
	return func(q *Queue) {
		q.networkRecheck = d
	}
}

// WithMetrics records executions and scheduled work on metrics
func WithMetrics(metrics *telemetry.JobMetrics) Option {
	return func(q *Queue) {
		q.metrics = metrics
	}
}

// NewQueue creates a queue that runs work with runner and checkpoints it to store
func NewQueue(store kv.Store, runner Runner, opts ...Option) *Queue {
	q := &Queue{
		store:          store,
		runner:         runner,
		network:        AlwaysConnected{},
		minPeriod:      DefaultMinPeriod,
		runTimeout:     DefaultRunTimeout,
		defaultBackoff: DefaultBackoffDelay,
		networkRecheck: defaultNetworkRecheck,
		items:          make(map[string]*workItem),
		runningNames:   make(map[string]bool),
		runningTags:    make(map[string]int),
		wake:           make(chan struct{}, 1),
		observers:      make(map[string][]*tagObserver),
		delivered:      make(map[*tagObserver]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// String names the queue in supervisor logs
func (*Queue) String() string {
	return "job-queue"
}

// EnqueueUnique schedules one-time work under name
func (q *Queue) EnqueueUnique(ctx context.Context, name string, policy Policy, req WorkRequest) error {
	return q.enqueue(ctx, name, policy, 0, req)
}

// EnqueueUniquePeriodic schedules work under name that runs every period.
// Periods shorter than the configured minimum are raised to the minimum.
func (q *Queue) EnqueueUniquePeriodic(
	ctx context.Context, name string, policy Policy, period time.Duration, req WorkRequest,
) error {
	if period <= 0 {
		return fmt.Errorf("periodic work %q requires a positive period, got %s", name, period)
	}
	if period < q.minPeriod {
		slog.Warn("Periodic interval below minimum, using minimum",
			"name", name,
			"requested", period,
			"minimum", q.minPeriod)
		period = q.minPeriod
	}
	return q.enqueue(ctx, name, policy, period, req)
}

func (q *Queue) enqueue(ctx context.Context, name string, policy Policy, period time.Duration, req WorkRequest) error {
	if name == "" {
		return fmt.Errorf("work name cannot be empty")
	}

	q.mu.Lock()
	existing, ok := q.items[name]
	if ok {
		switch policy {
		case PolicyKeep:
			q.mu.Unlock()
			slog.Debug("Work already scheduled, keeping existing", "name", name, "running", existing.running)
			return nil
		case PolicyReplace:
			if existing.running {
				existing.removed = true
			}
		default:
			q.mu.Unlock()
			return fmt.Errorf("unknown policy %s", policy)
		}
	}

	item := q.newItem(name, req, period, time.Now().Add(req.InitialDelay))
	q.items[name] = item
	q.mu.Unlock()

	if !ok {
		q.metrics.RecordScheduled(ctx, 1)
	}

	slog.Debug("Work enqueued",
		"name", name,
		"policy", policy.String(),
		"period", period,
		"initial_delay", req.InitialDelay,
		"tags", req.Tags)

	q.signal()
	return q.persist(ctx, name)
}

// CancelUnique cancels pending work under name
func (q *Queue) CancelUnique(ctx context.Context, name string) error {
	q.mu.Lock()
	item, ok := q.items[name]
	if ok {
		if item.running {
			item.removed = true
		}
		delete(q.items, name)
	}
	q.mu.Unlock()

	if !ok {
		return nil
	}

	slog.Debug("Work cancelled", "name", name)
	q.metrics.RecordScheduled(ctx, -1)
	q.signal()
	return q.persist(ctx, name)
}

// ObserveTag calls fn with the running state of work tagged tag, now and on every change
func (q *Queue) ObserveTag(tag string, fn func(running bool)) func() {
	obs := &tagObserver{fn: fn}

	q.notifyMu.Lock()
	q.observers[tag] = append(q.observers[tag], obs)
	q.mu.Lock()
	running := q.runningTags[tag] > 0
	q.mu.Unlock()
	q.delivered[obs] = running
	fn(running)
	q.notifyMu.Unlock()

	return func() {
		q.notifyMu.Lock()
		defer q.notifyMu.Unlock()
		q.observers[tag] = slices.DeleteFunc(q.observers[tag], func(o *tagObserver) bool { return o == obs })
		delete(q.delivered, obs)
	}
}

// publishTagStates delivers the current running state to every observer whose
// last delivered state differs
func (q *Queue) publishTagStates() {
	q.notifyMu.Lock()
	defer q.notifyMu.Unlock()

	q.mu.Lock()
	states := make(map[string]bool, len(q.observers))
	for tag := range q.observers {
		states[tag] = q.runningTags[tag] > 0
	}
	q.mu.Unlock()

	for tag, observers := range q.observers {
		running := states[tag]
		for _, obs := range observers {
			if q.delivered[obs] == running {
				continue
			}
			q.delivered[obs] = running
			obs.fn(running)
		}
	}
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Serve runs due work until ctx is cancelled, then waits for running work to finish
func (q *Queue) Serve(ctx context.Context) error {
	if err := q.restore(ctx); err != nil {
		slog.Warn("Failed to restore job checkpoints", "error", err)
	}

	slog.Info("Job queue started")

	timer := time.NewTimer(idleWait)
	defer timer.Stop()

	for {
		wait := q.dispatchDue(ctx)
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			slog.Info("Job queue stopping, waiting for running work")
			q.wg.Wait()
			return ctx.Err()
		case <-q.wake:
		case <-timer.C:
		}
	}
}

// dispatchDue starts every due job and returns how long to wait until the next one is due
func (q *Queue) dispatchDue(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return idleWait
	}

	now := time.Now()
	wait := idleWait
	started := false

	q.mu.Lock()
	for name, item := range q.items {
		if item.running || q.runningNames[name] {
			continue
		}
		if item.nextRun.After(now) {
			wait = min(wait, item.nextRun.Sub(now))
			continue
		}
		if item.req.Constraints.NetworkConnected && !q.network.Connected() {
			item.nextRun = now.Add(q.networkRecheck)
			wait = min(wait, q.networkRecheck)
			slog.Debug("Work waiting for network", "name", name)
			continue
		}
		q.start(ctx, item)
		started = true
	}
	q.mu.Unlock()

	if started {
		q.publishTagStates()
	}
	return wait
}

// start launches a run of item. Must be called with q.mu held.
func (q *Queue) start(ctx context.Context, item *workItem) {
	item.running = true
	q.runningNames[item.name] = true
	for _, tag := range item.req.Tags {
		q.runningTags[tag]++
	}

	params := Params{
		RunID:      uuid.New(),
		Name:       item.name,
		Tags:       slices.Clone(item.req.Tags),
		Data:       item.req.Data.clone(),
		RunAttempt: item.attempt,
		Periodic:   item.period > 0,
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		result := q.run(ctx, params)
		q.metrics.RecordExecution(context.WithoutCancel(ctx), params.Name, result.String())
		q.complete(context.WithoutCancel(ctx), item, result)
		q.publishTagStates()
	}()
}

// run executes one run with a deadline, converting panics to failures
func (q *Queue) run(ctx context.Context, params Params) (result Result) {
	runCtx, cancel := context.WithTimeout(ctx, q.runTimeout)
	defer cancel()

	logger := slog.With("name", params.Name, "run_id", params.RunID.String(), "attempt", params.RunAttempt)
	logger.Debug("Running work")

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Work panicked", "panic", rec)
			result = ResultFailure
		}
	}()

	result = q.runner.Run(runCtx, params)
	if result != ResultSuccess && runCtx.Err() != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			logger.Warn("Work exceeded its run timeout, retrying", "timeout", q.runTimeout)
		}
		result = ResultRetry
	}

	logger.Debug("Work finished", "result", result.String())
	return result
}

// complete reschedules or retires item after a run
func (q *Queue) complete(ctx context.Context, item *workItem, result Result) {
	q.mu.Lock()
	item.running = false
	delete(q.runningNames, item.name)
	for _, tag := range item.req.Tags {
		q.runningTags[tag]--
		if q.runningTags[tag] <= 0 {
			delete(q.runningTags, tag)
		}
	}

	removed := item.removed
	retired := false
	if !removed {
		now := time.Now()
		switch result {
		case ResultRetry:
			item.attempt++
			item.nextRun = now.Add(item.backoff.NextBackOff())
		case ResultSuccess, ResultFailure:
			if item.period > 0 {
				item.attempt = 0
				item.backoff.Reset()
				item.nextRun = now.Add(item.period)
			} else {
				delete(q.items, item.name)
				retired = true
			}
		}
	}
	q.mu.Unlock()

	q.signal()
	if removed {
		return
	}
	if retired {
		q.metrics.RecordScheduled(ctx, -1)
	}
	if err := q.persist(ctx, item.name); err != nil {
		slog.Warn("Failed to checkpoint work", "name", item.name, "error", err)
	}
}
