// Package config provides configuration loading and management for the sync service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-sync/internal/engine"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/telemetry"
)

// EnvPrefix is the prefix of environment variables read by the service
const EnvPrefix = "THV_SYNC"

const (
	// StorageTypeFile stores state as one file per namespace
	StorageTypeFile = "file"

	// StorageTypeBadger stores state in an embedded Badger database
	StorageTypeBadger = "badger"

	// StorageTypeSQLite stores state in an embedded SQLite database
	StorageTypeSQLite = "sqlite"

	// StorageTypeDatabase stores state in PostgreSQL
	StorageTypeDatabase = "database"

	// StorageTypeMemory keeps state in memory. Nothing survives a restart.
	StorageTypeMemory = "memory"
)

const (
	defaultDataDir       = "./data"
	defaultEngineTimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Sync    SyncConfig    `yaml:"sync"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`

	// Stores maps engine names to the store handle bound for them
	Stores map[string]string `yaml:"stores,omitempty"`

	Auth      *AuthConfig       `yaml:"auth,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SyncConfig defines what is synced and how often.
// Durations use Go syntax ("30s", "10m", "1h"); empty values use the built-in defaults.
type SyncConfig struct {
	// Engines lists the engines to sync. Empty means every engine that has a store.
	Engines []string `yaml:"engines,omitempty"`

	// PeriodInterval enables periodic syncing. Empty disables it.
	PeriodInterval string `yaml:"periodInterval,omitempty"`

	// StaggerBuffer is how recent a sync must be for a debounced request to be skipped
	StaggerBuffer string `yaml:"staggerBuffer,omitempty"`

	// StartupDelay postpones the sync requested at startup
	StartupDelay string `yaml:"startupDelay,omitempty"`

	// BackoffDelay is the first retry delay; later retries double it
	BackoffDelay string `yaml:"backoffDelay,omitempty"`

	// MinPeriodicInterval is the shortest period the scheduler accepts
	MinPeriodicInterval string `yaml:"minPeriodicInterval,omitempty"`

	// RunTimeout bounds a single sync run
	RunTimeout string `yaml:"runTimeout,omitempty"`
}

// StorageConfig defines where sync state is kept
type StorageConfig struct {
	// Type is one of file, badger, sqlite, database or memory. Defaults to file.
	Type string `yaml:"type,omitempty"`

	// Path is the directory (file, badger) or file (sqlite) holding the state
	Path string `yaml:"path,omitempty"`

	Database *DatabaseConfig `yaml:"database,omitempty"`
}

// EngineConfig defines how the sync engine is reached
type EngineConfig struct {
	// Endpoint is the base URL of the sync engine service
	Endpoint string `yaml:"endpoint"`

	// Timeout bounds a single sync pass. Defaults to 30s.
	Timeout string `yaml:"timeout,omitempty"`

	CircuitBreaker *CircuitBreakerConfig `yaml:"circuitBreaker,omitempty"`
}

// CircuitBreakerConfig tunes the breaker in front of the engine. Zero values keep the defaults.
type CircuitBreakerConfig struct {
	MaxRequests         uint32 `yaml:"maxRequests,omitempty"`
	Interval            string `yaml:"interval,omitempty"`
	Timeout             string `yaml:"timeout,omitempty"`
	ConsecutiveFailures uint32 `yaml:"consecutiveFailures,omitempty"`
}

// AuthConfig points at the credentials the service syncs with
type AuthConfig struct {
	// SeedFile is a JSON file with authInfo, deviceSettings and optional engine
	// states. It is loaded into the state store on startup.
	SeedFile string `yaml:"seedFile"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password.
	// The file should contain only the password with optional trailing whitespace.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int32 `yaml:"maxIdleConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from THV_SYNC_DATABASE_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		cleanPath := filepath.Clean(d.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvPrefix + "_DATABASE_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s_DATABASE_PASSWORD environment variable", EnvPrefix,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validate reports every problem in the configuration at once
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	errs = append(errs, c.Sync.validate()...)
	errs = append(errs, c.Storage.validate()...)
	errs = append(errs, c.Engine.validate()...)

	for name := range c.Stores {
		if _, err := pkgsync.ParseEngine(name); err != nil {
			errs = append(errs, fmt.Errorf("stores: %w", err))
		}
	}

	if c.Auth != nil && c.Auth.SeedFile == "" {
		errs = append(errs, fmt.Errorf("auth.seedFile is required when auth is set"))
	}

	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("telemetry: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (s *SyncConfig) validate() []error {
	var errs []error
	for _, name := range s.Engines {
		if _, err := pkgsync.ParseEngine(name); err != nil {
			errs = append(errs, fmt.Errorf("sync.engines: %w", err))
		}
	}

	durations := []struct {
		field string
		value string
	}{
		{"periodInterval", s.PeriodInterval},
		{"staggerBuffer", s.StaggerBuffer},
		{"startupDelay", s.StartupDelay},
		{"backoffDelay", s.BackoffDelay},
		{"minPeriodicInterval", s.MinPeriodicInterval},
		{"runTimeout", s.RunTimeout},
	}
	for _, d := range durations {
		if err := validateDuration(d.value); err != nil {
			errs = append(errs, fmt.Errorf("sync.%s: %w", d.field, err))
		}
	}
	return errs
}

func (s *StorageConfig) validate() []error {
	switch s.GetType() {
	case StorageTypeFile, StorageTypeBadger, StorageTypeSQLite, StorageTypeMemory:
		return nil
	case StorageTypeDatabase:
		if s.Database == nil {
			return []error{fmt.Errorf("storage.database is required for storage type %s", StorageTypeDatabase)}
		}
		return s.Database.validate()
	}
	return []error{fmt.Errorf("storage.type: unknown storage type %q", s.Type)}
}

func (d *DatabaseConfig) validate() []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("storage.database.host is required"))
	}
	if d.Port <= 0 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("storage.database.port must be between 1 and 65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("storage.database.user is required"))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("storage.database.database is required"))
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			errs = append(errs, fmt.Errorf("storage.database.connMaxLifetime: %w", err))
		}
	}
	return errs
}

func (e *EngineConfig) validate() []error {
	var errs []error
	if e.Endpoint == "" {
		errs = append(errs, fmt.Errorf("engine.endpoint is required"))
	} else if u, err := url.Parse(e.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("engine.endpoint must be an absolute URL, got %q", e.Endpoint))
	}
	if err := validateDuration(e.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("engine.timeout: %w", err))
	}
	if cb := e.CircuitBreaker; cb != nil {
		if err := validateDuration(cb.Interval); err != nil {
			errs = append(errs, fmt.Errorf("engine.circuitBreaker.interval: %w", err))
		}
		if err := validateDuration(cb.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("engine.circuitBreaker.timeout: %w", err))
		}
	}
	return errs
}

// validateDuration accepts an empty value or a positive duration
func validateDuration(value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("must be a valid duration (e.g., '30s', '10m'): %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("must be positive, got %s", value)
	}
	return nil
}

// parseDuration returns the parsed value, or zero when it is empty or invalid.
// Values are validated when the configuration is loaded.
func parseDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

// GetEngines returns the configured engines, or nil when every engine with a store should sync
func (s *SyncConfig) GetEngines() []pkgsync.Engine {
	if len(s.Engines) == 0 {
		return nil
	}
	engines := make([]pkgsync.Engine, 0, len(s.Engines))
	for _, name := range s.Engines {
		engines = append(engines, pkgsync.Engine(name))
	}
	return engines
}

// GetPeriodInterval returns the periodic sync interval, or nil when periodic syncing is off
func (s *SyncConfig) GetPeriodInterval() *time.Duration {
	d := parseDuration(s.PeriodInterval)
	if d <= 0 {
		return nil
	}
	return &d
}

// GetStaggerBuffer returns the configured stagger buffer, or zero for the default
func (s *SyncConfig) GetStaggerBuffer() time.Duration { return parseDuration(s.StaggerBuffer) }

// GetStartupDelay returns the configured startup delay, or zero for the default
func (s *SyncConfig) GetStartupDelay() time.Duration { return parseDuration(s.StartupDelay) }

// GetBackoffDelay returns the configured first retry delay, or zero for the default
func (s *SyncConfig) GetBackoffDelay() time.Duration { return parseDuration(s.BackoffDelay) }

// GetMinPeriodicInterval returns the configured minimum period, or zero for the default
func (s *SyncConfig) GetMinPeriodicInterval() time.Duration {
	return parseDuration(s.MinPeriodicInterval)
}

// GetRunTimeout returns the configured run timeout, or zero for the default
func (s *SyncConfig) GetRunTimeout() time.Duration { return parseDuration(s.RunTimeout) }

// GetType returns the storage type, using file if not specified
func (s *StorageConfig) GetType() string {
	if s.Type == "" {
		return StorageTypeFile
	}
	return s.Type
}

// GetPath returns the storage location, defaulting to a type specific path under ./data
func (s *StorageConfig) GetPath() string {
	if s.Path != "" {
		return s.Path
	}
	switch s.GetType() {
	case StorageTypeBadger:
		return filepath.Join(defaultDataDir, "badger")
	case StorageTypeSQLite:
		return filepath.Join(defaultDataDir, "sync.db")
	}
	return filepath.Join(defaultDataDir, "state")
}

// GetTimeout returns the engine timeout, defaulting to 30 seconds
func (e *EngineConfig) GetTimeout() time.Duration {
	if d := parseDuration(e.Timeout); d > 0 {
		return d
	}
	return defaultEngineTimeout
}

// GetBreakerSettings returns the circuit breaker settings with configured overrides applied
func (e *EngineConfig) GetBreakerSettings() engine.BreakerSettings {
	settings := engine.DefaultBreakerSettings()
	cb := e.CircuitBreaker
	if cb == nil {
		return settings
	}
	if cb.MaxRequests > 0 {
		settings.MaxRequests = cb.MaxRequests
	}
	if cb.ConsecutiveFailures > 0 {
		settings.ConsecutiveFailures = cb.ConsecutiveFailures
	}
	if d := parseDuration(cb.Interval); d > 0 {
		settings.Interval = d
	}
	if d := parseDuration(cb.Timeout); d > 0 {
		settings.Timeout = d
	}
	return settings
}
