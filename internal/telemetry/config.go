package telemetry

import (
	"errors"
	"fmt"
)

const (
	// DefaultServiceName names the sync service in exported spans and metrics
	DefaultServiceName = "thv-sync"

	// DefaultEndpoint is a collector on the same host
	DefaultEndpoint = "localhost:4318"

	// DefaultSampling keeps one sync pass trace in twenty
	DefaultSampling = 0.05
)

// Config is the telemetry section of the sync service configuration.
// Sync job, worker and engine spans and the job queue metrics are only
// exported when it is enabled.
type Config struct {
	// Enabled turns on the SDK providers. Without it the sync components record on no-op providers.
	Enabled bool `yaml:"enabled"`

	ServiceName    string `yaml:"serviceName,omitempty"`
	ServiceVersion string `yaml:"serviceVersion,omitempty"`

	// Endpoint is an OTLP/HTTP collector address without a path
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure skips TLS towards the collector
	Insecure bool `yaml:"insecure,omitempty"`

	Tracing *TracingConfig `yaml:"tracing,omitempty"`
	Metrics *MetricsConfig `yaml:"metrics,omitempty"`
}

// TracingConfig controls the spans around sync jobs and engine calls
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`

	// Sampling is a ratio in [0, 1]; nil means DefaultSampling
	Sampling *float64 `yaml:"sampling,omitempty"`
}

// MetricsConfig controls the sync run and job queue instruments
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GetServiceName returns ServiceName or DefaultServiceName
func (c *Config) GetServiceName() string {
	if c.ServiceName == "" {
		return DefaultServiceName
	}
	return c.ServiceName
}

// GetServiceVersion returns ServiceVersion, or "unknown" when the build carries none
func (c *Config) GetServiceVersion() string {
	if c.ServiceVersion == "" {
		return "unknown"
	}
	return c.ServiceVersion
}

// GetEndpoint returns Endpoint or DefaultEndpoint
func (c *Config) GetEndpoint() string {
	if c.Endpoint == "" {
		return DefaultEndpoint
	}
	return c.Endpoint
}

func (c *TracingConfig) GetSampling() float64 {
	if c.Sampling == nil {
		return DefaultSampling
	}
	return *c.Sampling
}

// Validate checks the enabled sections. A missing or disabled telemetry section is valid.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}

	var errs []error
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}

func (c *TracingConfig) Validate() error {
	if c == nil || !c.Enabled || c.Sampling == nil {
		return nil
	}
	if *c.Sampling < 0 || *c.Sampling > 1.0 {
		return fmt.Errorf("sampling must be between 0.0 and 1.0, got %f", *c.Sampling)
	}
	return nil
}
