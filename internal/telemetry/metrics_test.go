package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// collectScope collects metrics from reader and returns the metrics of the named scope
func collectScope(t *testing.T, reader *sdkmetric.ManualReader, scopeName string) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]metricdata.Metrics{}
	for _, scope := range rm.ScopeMetrics {
		if scope.Scope.Name != scopeName {
			continue
		}
		for _, m := range scope.Metrics {
			found[m.Name] = m
		}
	}
	return found
}

func TestNewSyncMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewSyncMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)
	})

	t.Run("creates metrics with SDK provider", func(t *testing.T) {
		t.Parallel()

		mp := sdkmetric.NewMeterProvider()
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewSyncMetrics(mp)
		require.NoError(t, err)
		require.NotNil(t, metrics)
		assert.NotNil(t, metrics.runDuration)
		assert.NotNil(t, metrics.runResults)
	})
}

func TestSyncMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var metrics *SyncMetrics
	assert.NotPanics(t, func() {
		metrics.RecordRun(context.Background(), "user", "success", time.Second)
		metrics.RecordDeclined(context.Background(), 2)
		metrics.RecordActiveTransition(context.Background(), true)
	})
}

func TestSyncMetrics_RecordRun(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewSyncMetrics(mp)
	require.NoError(t, err)

	metrics.RecordRun(context.Background(), "user", "success", 1500*time.Millisecond)
	metrics.RecordRun(context.Background(), "periodic", "retry", 500*time.Millisecond)
	metrics.RecordDeclined(context.Background(), 3)

	found := collectScope(t, reader, SyncMetricsMeterName)

	duration, ok := found["thv_sync_run_duration_seconds"]
	require.True(t, ok, "expected run duration histogram")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected histogram data type")
	var sum float64
	for _, dp := range hist.DataPoints {
		sum += dp.Sum
	}
	assert.InDelta(t, 2.0, sum, 0.001)

	runs, ok := found["thv_sync_runs_total"]
	require.True(t, ok, "expected run counter")
	counter, ok := runs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, counter.DataPoints, 2, "one series per reason and outcome")

	declined, ok := found["thv_sync_declined_engines"]
	require.True(t, ok, "expected declined gauge")
	gauge, ok := declined.Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
}

func TestSyncMetrics_RecordActiveTransition(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewSyncMetrics(mp)
	require.NoError(t, err)

	metrics.RecordActiveTransition(context.Background(), true)
	metrics.RecordActiveTransition(context.Background(), false)
	metrics.RecordActiveTransition(context.Background(), true)

	found := collectScope(t, reader, SyncMetricsMeterName)
	transitions, ok := found["thv_sync_active_transitions_total"]
	require.True(t, ok)
	counter, ok := transitions.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range counter.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)
}

func TestJobMetrics(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when provider is nil", func(t *testing.T) {
		t.Parallel()

		metrics, err := NewJobMetrics(nil)
		require.NoError(t, err)
		assert.Nil(t, metrics)

		assert.NotPanics(t, func() {
			metrics.RecordExecution(context.Background(), "Immediate", "success")
			metrics.RecordScheduled(context.Background(), 1)
		})
	})

	t.Run("records executions and scheduled work", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		metrics, err := NewJobMetrics(mp)
		require.NoError(t, err)

		metrics.RecordExecution(context.Background(), "Immediate", "success")
		metrics.RecordExecution(context.Background(), "Periodic", "retry")
		metrics.RecordScheduled(context.Background(), 2)
		metrics.RecordScheduled(context.Background(), -1)

		found := collectScope(t, reader, JobMetricsMeterName)

		executions, ok := found["thv_sync_job_executions_total"]
		require.True(t, ok)
		sum, ok := executions.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		assert.Len(t, sum.DataPoints, 2)

		scheduled, ok := found["thv_sync_jobs_scheduled"]
		require.True(t, ok)
		updown, ok := scheduled.Data.(metricdata.Sum[int64])
		require.True(t, ok)
		require.Len(t, updown.DataPoints, 1)
		assert.Equal(t, int64(1), updown.DataPoints[0].Value)
	})
}
