// Package worker executes a single sync job: it prepares an engine request
// from the durable state, runs the engine and classifies the outcome for the
// job scheduler.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/jobs"
	"github.com/stacklok/toolhive-sync/internal/otel"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
	"github.com/stacklok/toolhive-sync/internal/telemetry"
)

// DefaultStaggerBuffer is how recent a successful sync must be for a debounced job to be skipped
const DefaultStaggerBuffer = 10 * time.Minute

// StoreRegistry resolves engines to their local stores
type StoreRegistry interface {
	GetStore(e pkgsync.Engine) (pkgsync.SyncableStore, bool)
}

// errContract marks a job that can never succeed as submitted
var errContract = errors.New("invalid sync job")

// Worker runs sync jobs. It implements jobs.Runner.
type Worker struct {
	registry StoreRegistry
	state    state.SyncStateService
	engine   engine.Engine

	authObservers     *pkgsync.ObserverRegistry[pkgsync.AuthErrorObserver]
	declinedObservers *pkgsync.ObserverRegistry[pkgsync.DeclinedEnginesObserver]
	errorObservers    *pkgsync.ObserverRegistry[pkgsync.SyncStatusObserver]

	staggerBuffer time.Duration
	now           func() time.Time

	metrics *telemetry.SyncMetrics
	tracer  trace.Tracer
}

var _ jobs.Runner = (*Worker)(nil)

// Option configures a Worker
type Option func(*Worker)

// WithAuthErrorObservers notifies the observers in reg when the account credentials are rejected
func WithAuthErrorObservers(reg *pkgsync.ObserverRegistry[pkgsync.AuthErrorObserver]) Option {
	return func(w *Worker) {
		w.authObservers = reg
	}
}

// WithDeclinedEnginesObservers notifies the observers in reg when the server reports declined engines
func WithDeclinedEnginesObservers(reg *pkgsync.ObserverRegistry[pkgsync.DeclinedEnginesObserver]) Option {
	return func(w *Worker) {
		w.declinedObservers = reg
	}
}

// WithSyncErrorObservers notifies the observers in reg of jobs ending in a Failure or a Retry
func WithSyncErrorObservers(reg *pkgsync.ObserverRegistry[pkgsync.SyncStatusObserver]) Option {
	return func(w *Worker) {
		w.errorObservers = reg
	}
}

// WithStaggerBuffer sets how recent a successful sync must be for a debounced job to be skipped
func WithStaggerBuffer(d time.Duration) Option {
	return func(w *Worker) {
		w.staggerBuffer = d
	}
}

// WithNow sets the clock
func WithNow(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

// WithSyncMetrics sets the sync metrics
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(w *Worker) {
		w.metrics = metrics
	}
}

// WithTracer sets the tracer used for sync spans
func WithTracer(tracer trace.Tracer) Option {
	return func(w *Worker) {
		w.tracer = tracer
	}
}

// New creates a worker
func New(registry StoreRegistry, stateSvc state.SyncStateService, eng engine.Engine, opts ...Option) *Worker {
	w := &Worker{
		registry:          registry,
		state:             stateSvc,
		engine:            eng,
		authObservers:     pkgsync.NewObserverRegistry[pkgsync.AuthErrorObserver](),
		declinedObservers: pkgsync.NewObserverRegistry[pkgsync.DeclinedEnginesObserver](),
		errorObservers:    pkgsync.NewObserverRegistry[pkgsync.SyncStatusObserver](),
		staggerBuffer:     DefaultStaggerBuffer,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run executes one sync job. Panics and errors never escape; they are
// reported as a Failure, or a Retry for transport errors.
func (w *Worker) Run(ctx context.Context, params jobs.Params) (result jobs.Result) {
	start := w.now()
	reasonName, _ := params.Data.String(pkgsync.DataKeyReason)
	debounced := params.HasTag(pkgsync.TagDebounce)

	ctx, span := otel.StartSpan(ctx, w.tracer, "sync.worker.Run",
		trace.WithAttributes(
			otel.AttrJobName.String(params.Name),
			otel.AttrJobRunID.String(params.RunID.String()),
			otel.AttrJobRunAttempt.Int(params.RunAttempt),
			otel.AttrSyncReason.String(reasonName),
			otel.AttrSyncDebounce.Bool(debounced),
		),
	)
	defer span.End()

	logger := slog.With(
		"job", params.Name,
		"run_id", params.RunID.String(),
		"attempt", params.RunAttempt,
		"reason", reasonName,
	)
	logger.Debug("Starting sync job", "tags", params.Tags)

	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%w: sync attempt panicked: %v", errContract, rec)
			logger.Error("Sync attempt panicked", "panic", rec)
			otel.RecordError(span, err)
			w.recordOutcome(ctx, jobs.ResultFailure, nil, err)
			result = jobs.ResultFailure
		}
		otel.SetOutcome(span, result.String())
		w.metrics.RecordRun(ctx, reasonName, result.String(), w.now().Sub(start))
		logger.Info("Sync job finished", "result", result.String(), "duration", w.now().Sub(start))
	}()

	if debounced && w.syncedRecently(ctx, logger) {
		logger.Info("Skipping debounced sync, last successful sync is within the stagger buffer",
			"stagger_buffer", w.staggerBuffer)
		w.recordSkipped(ctx, reasonName)
		return jobs.ResultSuccess
	}

	stores, err := w.resolveStores(params.Data)
	if err != nil {
		logger.Error("Rejecting sync job", "error", err)
		otel.RecordError(span, err)
		w.recordOutcome(ctx, jobs.ResultFailure, nil, err)
		return jobs.ResultFailure
	}
	if len(stores) == 0 {
		// Nothing was synced, so last-synced stays untouched
		logger.Info("No stores configured, nothing to sync")
		return jobs.ResultSuccess
	}

	reason, err := pkgsync.ParseReason(reasonName)
	if err != nil {
		err = fmt.Errorf("%w: %w", errContract, err)
		logger.Error("Rejecting sync job", "error", err)
		otel.RecordError(span, err)
		w.recordOutcome(ctx, jobs.ResultFailure, nil, err)
		return jobs.ResultFailure
	}

	w.recordStarted(ctx, reason, stores)

	syncResult, err := w.sync(ctx, reason, stores)
	if err != nil {
		otel.RecordError(span, err)
		result = jobs.ResultFailure
		if errors.Is(err, engine.ErrTransport) {
			result = jobs.ResultRetry
		}
		logger.Error("Sync attempt failed", "error", err, "result", result.String())
		w.recordOutcome(ctx, result, nil, err)
		return result
	}

	span.SetAttributes(
		otel.AttrServiceStatus.String(string(syncResult.Status)),
		otel.AttrDeclinedCount.Int(len(syncResult.Declined)),
	)
	result = w.classify(ctx, logger, syncResult)
	w.recordOutcome(ctx, result, syncResult, nil)
	return result
}

// syncedRecently reports whether the last successful sync is within the stagger buffer
func (w *Worker) syncedRecently(ctx context.Context, logger *slog.Logger) bool {
	lastSynced, err := w.state.LastSynced(ctx)
	if err != nil {
		logger.Warn("Failed to read last synced time, not debouncing", "error", err)
		return false
	}
	if lastSynced == 0 {
		return false
	}
	return w.now().Sub(time.UnixMilli(lastSynced)) < w.staggerBuffer
}

// resolveStores maps the engine names of the job to their registered stores
func (w *Worker) resolveStores(data jobs.Data) (map[pkgsync.Engine]pkgsync.SyncableStore, error) {
	names, ok := data.StringArray(pkgsync.DataKeyStores)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", errContract, pkgsync.DataKeyStores)
	}

	stores := make(map[pkgsync.Engine]pkgsync.SyncableStore, len(names))
	for _, name := range names {
		e, err := pkgsync.ParseEngine(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errContract, err)
		}
		store, ok := w.registry.GetStore(e)
		if !ok {
			return nil, fmt.Errorf("%w: no store registered for engine %s", errContract, e)
		}
		stores[e] = store
	}
	return stores, nil
}

// sync binds the stores, runs the engine and stores what it returned
func (w *Worker) sync(
	ctx context.Context,
	reason pkgsync.Reason,
	stores map[pkgsync.Engine]pkgsync.SyncableStore,
) (*engine.Result, error) {
	req, err := w.buildRequest(ctx, reason)
	if err != nil {
		return nil, err
	}

	for e, store := range stores {
		kind, ok := e.BindingKind()
		if !ok {
			return nil, fmt.Errorf("%w: engine %s has no store binding", errContract, e)
		}
		w.engine.Bind(kind, store.Handle())
	}

	result, err := w.engine.Sync(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to run sync engine: %w", err)
	}

	// The engine relies on us to keep its state. Replies that carry none leave it as is.
	if !result.StateUnchanged {
		if err := w.state.SetPersistedState(ctx, result.PersistedState); err != nil {
			slog.Error("Failed to store persisted sync state", "error", err)
		}
	}

	for name, msg := range result.Failures {
		slog.Error("Engine failed to sync", "engine", name, "reason", msg)
	}
	for _, name := range result.Successful {
		slog.Info("Engine synced", "engine", name)
	}

	w.updateEngineStatuses(ctx, stores, result.Declined)
	return result, nil
}

func (w *Worker) buildRequest(ctx context.Context, reason pkgsync.Reason) (*engine.Request, error) {
	engineReason, err := reason.EngineReason()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errContract, err)
	}

	authInfo, err := w.state.AuthInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read auth info: %w", errContract, err)
	}
	if authInfo == nil {
		return nil, fmt.Errorf("%w: no auth info cached", errContract)
	}

	device, err := w.state.DeviceSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read device settings: %w", errContract, err)
	}
	if device == nil {
		return nil, fmt.Errorf("%w: no device settings cached", errContract)
	}

	persisted, err := w.state.PersistedState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read persisted state: %w", err)
	}

	enabledChanges, err := w.enabledChanges(ctx, reason)
	if err != nil {
		return nil, err
	}

	return &engine.Request{
		Reason:         engineReason,
		Engines:        nil,
		AuthInfo:       *authInfo,
		EnabledChanges: enabledChanges,
		PersistedState: persisted,
		DeviceSettings: *device,
	}, nil
}

// enabledChanges returns the locally stored engine states for syncs that
// publish them. Forms always follows history.
func (w *Worker) enabledChanges(ctx context.Context, reason pkgsync.Reason) (map[string]bool, error) {
	switch reason {
	case pkgsync.ReasonEngineChange, pkgsync.ReasonFirstSync:
	case pkgsync.ReasonStartup, pkgsync.ReasonUser, pkgsync.ReasonScheduled:
		return map[string]bool{}, nil
	}

	statuses, err := w.state.EngineStatuses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read engine statuses: %w", err)
	}
	if enabled, ok := statuses[string(pkgsync.EngineHistory)]; ok {
		statuses[string(pkgsync.EngineForms)] = enabled
	}
	return statuses, nil
}

// updateEngineStatuses stores declined engines as disabled and the other synced engines as enabled
func (w *Worker) updateEngineStatuses(
	ctx context.Context,
	stores map[pkgsync.Engine]pkgsync.SyncableStore,
	declinedNames []string,
) {
	declined := make([]pkgsync.Engine, 0, len(declinedNames))
	for _, name := range declinedNames {
		declined = append(declined, pkgsync.Engine(name))
		if err := w.state.SetEngineStatus(ctx, name, false); err != nil {
			slog.Warn("Failed to store declined engine", "engine", name, "error", err)
		}
	}
	for e := range stores {
		if slices.Contains(declined, e) {
			continue
		}
		if err := w.state.SetEngineStatus(ctx, string(e), true); err != nil {
			slog.Warn("Failed to store accepted engine", "engine", string(e), "error", err)
		}
	}

	if declinedNames == nil {
		return
	}
	w.metrics.RecordDeclined(ctx, len(declined))
	w.declinedObservers.Notify(func(o pkgsync.DeclinedEnginesObserver) {
		o.OnUpdatedDeclinedEngines(slices.Clone(declined), false)
	})
}

// classify maps the engine status to a job result
func (w *Worker) classify(ctx context.Context, logger *slog.Logger, result *engine.Result) jobs.Result {
	switch result.Status {
	case engine.StatusOK:
		if err := w.state.SetLastSynced(ctx, w.now().UnixMilli()); err != nil {
			logger.Error("Failed to store last synced time", "error", err)
		}
		return jobs.ResultSuccess
	case engine.StatusNetworkError:
		logger.Warn("Sync hit a network error, retrying")
		return jobs.ResultRetry
	case engine.StatusBackedOff:
		logger.Warn("Sync server asked to back off, retrying", "next_sync_allowed_at", result.NextSyncAllowedAt)
		return jobs.ResultRetry
	case engine.StatusServiceError:
		logger.Warn("Sync server reported an error, retrying")
		return jobs.ResultRetry
	case engine.StatusOtherError:
		logger.Warn("Sync failed with an unclassified error, retrying")
		return jobs.ResultRetry
	case engine.StatusAuthError:
		logger.Error("Sync credentials were rejected")
		err := fmt.Errorf("sync engine reported %s", result.Status)
		w.authObservers.Notify(func(o pkgsync.AuthErrorObserver) {
			o.OnAuthError(ctx, err)
		})
		return jobs.ResultFailure
	}

	logger.Error("Sync engine returned an unknown status", "status", string(result.Status))
	return jobs.ResultFailure
}
