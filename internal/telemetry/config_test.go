package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat64(f float64) *float64 {
	return &f
}

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	assert.Equal(t, DefaultServiceName, cfg.GetServiceName())
	assert.Equal(t, "unknown", cfg.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, cfg.GetEndpoint())

	cfg = &Config{ServiceName: "sync-eu", ServiceVersion: "1.2.3", Endpoint: "otel:4318"}
	assert.Equal(t, "sync-eu", cfg.GetServiceName())
	assert.Equal(t, "1.2.3", cfg.GetServiceVersion())
	assert.Equal(t, "otel:4318", cfg.GetEndpoint())
}

func TestTracingConfig_GetSampling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sampling *float64
		expected float64
	}{
		{name: "unset uses default", sampling: nil, expected: DefaultSampling},
		{name: "explicit zero is kept", sampling: ptrFloat64(0), expected: 0},
		{name: "explicit ratio", sampling: ptrFloat64(0.5), expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &TracingConfig{Enabled: true, Sampling: tt.sampling}
			assert.InDelta(t, tt.expected, cfg.GetSampling(), 0.0001)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "nil config", config: nil},
		{name: "disabled config ignores invalid sampling", config: &Config{
			Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(3)},
		}},
		{name: "valid tracing and metrics", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(1)},
			Metrics: &MetricsConfig{Enabled: true},
		}},
		{name: "disabled tracing ignores sampling", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: false, Sampling: ptrFloat64(-1)},
		}},
		{name: "sampling above one", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(1.1)},
		}, wantErr: "tracing: sampling must be between 0.0 and 1.0"},
		{name: "negative sampling", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: ptrFloat64(-0.1)},
		}, wantErr: "sampling must be between 0.0 and 1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
