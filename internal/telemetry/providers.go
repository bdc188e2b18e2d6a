package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultMetricsInterval is the default export interval for metrics
const DefaultMetricsInterval = 60 * time.Second

// ProviderOption configures NewTracerProvider and NewMeterProvider
type ProviderOption func(*providerConfig)

type providerConfig struct {
	serviceName     string
	serviceVersion  string
	endpoint        string
	insecure        bool
	tracingConfig   *TracingConfig
	metricsConfig   *MetricsConfig
	metricsInterval time.Duration
}

func newProviderConfig(opts []ProviderOption) *providerConfig {
	cfg := &providerConfig{
		serviceName:     DefaultServiceName,
		serviceVersion:  "unknown",
		endpoint:        DefaultEndpoint,
		metricsInterval: DefaultMetricsInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithServiceName sets the service name reported in the telemetry resource
func WithServiceName(name string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.serviceName = name
	}
}

// WithServiceVersion sets the service version reported in the telemetry resource
func WithServiceVersion(version string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.serviceVersion = version
	}
}

// WithEndpoint sets the OTLP collector endpoint
func WithEndpoint(endpoint string) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.endpoint = endpoint
	}
}

// WithInsecure exports over plain HTTP
func WithInsecure(insecure bool) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.insecure = insecure
	}
}

// WithTracingConfig sets the tracing configuration
func WithTracingConfig(tc *TracingConfig) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.tracingConfig = tc
	}
}

// WithMetricsConfig sets the metrics configuration
func WithMetricsConfig(mc *MetricsConfig) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.metricsConfig = mc
	}
}

// WithMetricsInterval overrides the metrics export interval
func WithMetricsInterval(interval time.Duration) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.metricsInterval = interval
	}
}

func (cfg *providerConfig) resource(ctx context.Context) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.serviceName),
			semconv.ServiceVersion(cfg.serviceVersion),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// NewTracerProvider creates an OTLP tracer provider, or a no-op provider when
// tracing is not enabled. The caller shuts the returned provider down.
func NewTracerProvider(ctx context.Context, opts ...ProviderOption) (trace.TracerProvider, error) {
	cfg := newProviderConfig(opts)

	if cfg.tracingConfig == nil || !cfg.tracingConfig.Enabled {
		slog.Info("Tracing disabled, using no-op tracer provider")
		return tracenoop.NewTracerProvider(), nil
	}

	res, err := cfg.resource(ctx)
	if err != nil {
		return nil, err
	}

	exporterOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.endpoint)}
	if cfg.insecure {
		exporterOpts = append(exporterOpts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.tracingConfig.GetSampling())),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.insecure {
		slog.Warn("Tracing exports over unencrypted HTTP")
	}
	slog.Info("Tracing initialized",
		"endpoint", cfg.endpoint,
		"sampling_ratio", cfg.tracingConfig.GetSampling(),
		"insecure", cfg.insecure,
	)

	return tp, nil
}

// NewMeterProvider creates an OTLP meter provider, or a no-op provider when
// metrics are not enabled. The caller shuts the returned provider down.
func NewMeterProvider(ctx context.Context, opts ...ProviderOption) (metric.MeterProvider, error) {
	cfg := newProviderConfig(opts)

	if cfg.metricsConfig == nil || !cfg.metricsConfig.Enabled {
		slog.Info("Metrics disabled, using no-op meter provider")
		return metricnoop.NewMeterProvider(), nil
	}

	res, err := cfg.resource(ctx)
	if err != nil {
		return nil, err
	}

	exporterOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.endpoint)}
	if cfg.insecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.metricsInterval))),
	)
	otel.SetMeterProvider(mp)

	slog.Info("Metrics initialized",
		"endpoint", cfg.endpoint,
		"interval", cfg.metricsInterval,
		"insecure", cfg.insecure,
	)

	return mp, nil
}
