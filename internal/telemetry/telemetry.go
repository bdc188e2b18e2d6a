package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// SyncTracerName is the tracer used for sync runs
const SyncTracerName = "github.com/stacklok/toolhive-sync/sync"

// Telemetry owns the OpenTelemetry providers of the process
type Telemetry struct {
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Instruments bundles the metric instruments used across the sync service
type Instruments struct {
	Sync *SyncMetrics
	Jobs *JobMetrics
	HTTP *HTTPMetrics
}

// Option is a function that configures the telemetry setup
type Option func(*telemetryConfig)

type telemetryConfig struct {
	config *Config
}

// WithTelemetryConfig sets the telemetry configuration
func WithTelemetryConfig(cfg *Config) Option {
	return func(tc *telemetryConfig) {
		tc.config = cfg
	}
}

// New creates the telemetry providers. A nil or disabled configuration yields
// no-op providers. The caller must call Shutdown when the application exits.
func New(ctx context.Context, opts ...Option) (*Telemetry, error) {
	tc := &telemetryConfig{}
	for _, opt := range opts {
		opt(tc)
	}

	if tc.config == nil || !tc.config.Enabled {
		slog.Debug("Telemetry disabled")
		return newNoOpTelemetry(ctx)
	}

	cfg := tc.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	slog.Info("Initializing telemetry",
		"service_name", cfg.GetServiceName(),
		"service_version", cfg.GetServiceVersion(),
	)

	common := []ProviderOption{
		WithServiceName(cfg.GetServiceName()),
		WithServiceVersion(cfg.GetServiceVersion()),
		WithEndpoint(cfg.GetEndpoint()),
		WithInsecure(cfg.Insecure),
	}

	tracerProvider, err := NewTracerProvider(ctx, append(common, WithTracingConfig(cfg.Tracing))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	meterProvider, err := NewMeterProvider(ctx, append(common, WithMetricsConfig(cfg.Metrics))...)
	if err != nil {
		if sdkTP, ok := tracerProvider.(*sdktrace.TracerProvider); ok {
			_ = sdkTP.Shutdown(ctx)
		}
		return nil, fmt.Errorf("failed to create meter provider: %w", err)
	}

	slog.Info("Telemetry initialized successfully")

	return &Telemetry{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
	}, nil
}

func newNoOpTelemetry(ctx context.Context) (*Telemetry, error) {
	tracerProvider, err := NewTracerProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create no-op tracer provider: %w", err)
	}

	meterProvider, err := NewMeterProvider(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create no-op meter provider: %w", err)
	}

	return &Telemetry{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
	}, nil
}

// TracerProvider returns the configured tracer provider
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.tracerProvider
}

// MeterProvider returns the configured meter provider
func (t *Telemetry) MeterProvider() metric.MeterProvider {
	return t.meterProvider
}

// SyncTracer returns the tracer used for sync runs
func (t *Telemetry) SyncTracer() trace.Tracer {
	return t.tracerProvider.Tracer(SyncTracerName)
}

// Instruments creates the sync, job and HTTP instruments on the meter provider
func (t *Telemetry) Instruments() (*Instruments, error) {
	syncMetrics, err := NewSyncMetrics(t.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	jobMetrics, err := NewJobMetrics(t.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create job metrics: %w", err)
	}
	httpMetrics, err := NewHTTPMetrics(t.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	return &Instruments{Sync: syncMetrics, Jobs: jobMetrics, HTTP: httpMetrics}, nil
}

// Shutdown flushes and stops the SDK providers. It is safe to call more than once.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down telemetry")

	var errs []error
	if tp, ok := t.tracerProvider.(*sdktrace.TracerProvider); ok {
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
		}
	}
	if mp, ok := t.meterProvider.(*sdkmetric.MeterProvider); ok {
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown meter provider: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	slog.Info("Telemetry shutdown complete")
	return nil
}
