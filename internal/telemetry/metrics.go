// Package telemetry provides OpenTelemetry instrumentation for the sync service.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/stacklok/toolhive-sync/sync"

	// JobMetricsMeterName is the name used for the job queue metrics meter
	JobMetricsMeterName = "github.com/stacklok/toolhive-sync/jobs"
)

// SyncMetrics holds the OpenTelemetry instruments for sync runs
type SyncMetrics struct {
	runDuration   metric.Float64Histogram
	runResults    metric.Int64Counter
	declined      metric.Int64Gauge
	activeChanges metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	runDuration, err := meter.Float64Histogram(
		"thv_sync_run_duration_seconds",
		metric.WithDescription("Duration of sync runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	runResults, err := meter.Int64Counter(
		"thv_sync_runs_total",
		metric.WithDescription("Number of sync runs by reason and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	declined, err := meter.Int64Gauge(
		"thv_sync_declined_engines",
		metric.WithDescription("Number of engines the server reported as declined on the last run"),
		metric.WithUnit("{engine}"),
	)
	if err != nil {
		return nil, err
	}

	activeChanges, err := meter.Int64Counter(
		"thv_sync_active_transitions_total",
		metric.WithDescription("Number of transitions of the sync active flag"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		runDuration:   runDuration,
		runResults:    runResults,
		declined:      declined,
		activeChanges: activeChanges,
	}, nil
}

// RecordRun records the duration and outcome of a sync run
func (m *SyncMetrics) RecordRun(ctx context.Context, reason, outcome string, duration time.Duration) {
	if m == nil || m.runDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("reason", reason),
		attribute.String("outcome", outcome),
	)

	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	m.runResults.Add(ctx, 1, attrs)
}

// RecordDeclined records how many engines were declined on the last run
func (m *SyncMetrics) RecordDeclined(ctx context.Context, count int) {
	if m == nil || m.declined == nil {
		return
	}
	m.declined.Record(ctx, int64(count))
}

// RecordActiveTransition records a change of the sync active flag
func (m *SyncMetrics) RecordActiveTransition(ctx context.Context, active bool) {
	if m == nil || m.activeChanges == nil {
		return
	}
	m.activeChanges.Add(ctx, 1, metric.WithAttributes(attribute.Bool("active", active)))
}

// JobMetrics holds the OpenTelemetry instruments for the job queue
type JobMetrics struct {
	executions metric.Int64Counter
	pending    metric.Int64UpDownCounter
}

// NewJobMetrics creates a new JobMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewJobMetrics(provider metric.MeterProvider) (*JobMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(JobMetricsMeterName)

	executions, err := meter.Int64Counter(
		"thv_sync_job_executions_total",
		metric.WithDescription("Number of job executions by work name and result"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, err
	}

	pending, err := meter.Int64UpDownCounter(
		"thv_sync_jobs_scheduled",
		metric.WithDescription("Number of unique work definitions currently scheduled"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	return &JobMetrics{
		executions: executions,
		pending:    pending,
	}, nil
}

// RecordExecution records a finished job execution
func (m *JobMetrics) RecordExecution(ctx context.Context, name, result string) {
	if m == nil || m.executions == nil {
		return
	}
	m.executions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("name", name),
		attribute.String("result", result),
	))
}

// RecordScheduled adjusts the number of scheduled work definitions by delta
func (m *JobMetrics) RecordScheduled(ctx context.Context, delta int64) {
	if m == nil || m.pending == nil {
		return
	}
	m.pending.Add(ctx, delta)
}
