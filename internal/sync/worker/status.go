package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/jobs"
	"github.com/stacklok/toolhive-sync/internal/status"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
)

// recordStarted marks the run status as syncing
func (w *Worker) recordStarted(ctx context.Context, reason pkgsync.Reason, stores map[pkgsync.Engine]pkgsync.SyncableStore) {
	engines := make([]pkgsync.Engine, 0, len(stores))
	for e := range stores {
		engines = append(engines, e)
	}
	now := w.now()

	w.updateStatus(ctx, func(s *status.SyncStatus) bool {
		s.Phase = status.SyncPhaseSyncing
		s.Message = "Sync in progress"
		s.Reason = reason.String()
		s.LastAttempt = &now
		s.AttemptCount++
		s.Engines = pkgsync.EngineNames(engines)
		s.Declined = nil
		s.Failures = nil
		return true
	})
}

// recordSkipped notes a debounced run that did nothing
func (w *Worker) recordSkipped(ctx context.Context, reason string) {
	w.updateStatus(ctx, func(s *status.SyncStatus) bool {
		if s.Phase == status.SyncPhaseSyncing {
			// Another run is in progress and owns the status
			return false
		}
		s.Phase = status.SyncPhaseSkipped
		s.Reason = reason
		s.Message = "Skipped, synced recently"
		return true
	})
}

// recordOutcome stores the final status of a run.
// One of result and err describes what happened; both may be nil for a failure without details.
// Failures and retries are also delivered to the sync error observers.
func (w *Worker) recordOutcome(ctx context.Context, outcome jobs.Result, result *engine.Result, err error) {
	now := w.now()

	if outcome == jobs.ResultFailure || outcome == jobs.ResultRetry {
		notifyErr := err
		if notifyErr == nil {
			notifyErr = errors.New(describe(result, nil))
		}
		w.errorObservers.Notify(func(o pkgsync.SyncStatusObserver) { o.OnError(notifyErr) })
	}

	w.updateStatus(ctx, func(s *status.SyncStatus) bool {
		if result != nil {
			s.Declined = result.Declined
			s.Failures = result.Failures
		}

		switch outcome {
		case jobs.ResultSuccess:
			s.Phase = status.SyncPhaseComplete
			s.Message = "Sync completed successfully"
			s.LastSyncTime = &now
			s.AttemptCount = 0
			return true
		case jobs.ResultRetry:
			s.Phase = status.SyncPhaseFailed
			s.Message = "Sync failed, will retry: " + describe(result, err)
			return true
		case jobs.ResultFailure:
			s.Phase = status.SyncPhaseFailed
			s.Message = "Sync failed: " + describe(result, err)
			return true
		}
		return false
	})
}

func (w *Worker) updateStatus(ctx context.Context, fn func(*status.SyncStatus) bool) {
	// Status bookkeeping must not be lost when the run itself was cancelled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if _, err := w.state.UpdateStatusAtomically(ctx, fn); err != nil {
		slog.Warn("Failed to update sync status", "error", err)
	}
}

func describe(result *engine.Result, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case result != nil:
		return fmt.Sprintf("engine status %s", result.Status)
	}
	return "unknown error"
}
