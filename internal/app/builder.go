package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/thejerf/suture/v4"

	"github.com/stacklok/toolhive-sync/internal/api"
	"github.com/stacklok/toolhive-sync/internal/app/storage"
	"github.com/stacklok/toolhive-sync/internal/config"
	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/jobs"
	"github.com/stacklok/toolhive-sync/internal/service"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/dispatcher"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
	"github.com/stacklok/toolhive-sync/internal/sync/stores"
	"github.com/stacklok/toolhive-sync/internal/sync/worker"
	"github.com/stacklok/toolhive-sync/internal/telemetry"
)

const (
	defaultHTTPAddress     = ":8080"
	defaultRequestTimeout  = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 30 * time.Second
)

// SyncAppOptions is a function that configures the sync app builder
type SyncAppOptions func(*syncAppConfig) error

// syncAppConfig collects the builder inputs. It supports dependency injection
// for testing while providing sensible defaults for production.
type syncAppConfig struct {
	config *config.Config

	// Optional component overrides (primarily for testing)
	storageFactory storage.Factory
	engine         engine.Engine
	networkMonitor jobs.NetworkMonitor
	telemetry      *telemetry.Telemetry
	logger         *slog.Logger

	// HTTP server options
	address         string
	middlewares     []func(http.Handler) http.Handler
	requestTimeout  time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration
}

func baseConfig(opts ...SyncAppOptions) (*syncAppConfig, error) {
	cfg := &syncAppConfig{
		address:         defaultHTTPAddress,
		requestTimeout:  defaultRequestTimeout,
		readTimeout:     defaultReadTimeout,
		writeTimeout:    defaultWriteTimeout,
		idleTimeout:     defaultIdleTimeout,
		shutdownTimeout: defaultShutdownTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return cfg, nil
}

// NewSyncApp wires the sync service from its configuration
func NewSyncApp(
	ctx context.Context,
	opts ...SyncAppOptions,
) (*SyncApp, error) {
	b, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	// Storage factory is the single decision point for the state backend
	if b.storageFactory == nil {
		b.storageFactory, err = storage.NewStorageFactory(ctx, b.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	ownsTelemetry := b.telemetry == nil
	if ownsTelemetry {
		b.telemetry, err = telemetry.New(ctx, telemetry.WithTelemetryConfig(b.config.Telemetry))
		if err != nil {
			b.storageFactory.Cleanup()
			return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
		}
	}

	var once sync.Once
	cleanup := func(ctx context.Context) {
		once.Do(func() {
			if ownsTelemetry {
				if err := b.telemetry.Shutdown(ctx); err != nil {
					slog.Error("Failed to shutdown telemetry", "error", err)
				}
			}
			b.storageFactory.Cleanup()
		})
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cleanup(context.WithoutCancel(ctx))
		}
	}()

	instruments, err := b.telemetry.Instruments()
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry instruments: %w", err)
	}

	components, err := buildSyncComponents(ctx, b, instruments)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync components: %w", err)
	}

	httpServer := buildHTTPServer(b, components.Service, instruments)

	supervisor := newSupervisor(b.logger,
		[]suture.Service{
			components.Queue,
			&managerService{manager: components.Manager, stopTimeout: b.shutdownTimeout},
		},
		[]suture.Service{
			&httpServerService{server: httpServer, shutdownTimeout: b.shutdownTimeout},
		},
	)

	appCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	// Cleanup is now handled by the app
	cleanupNeeded = false

	return &SyncApp{
		config:     b.config,
		components: components,
		httpServer: httpServer,
		supervisor: supervisor,
		ctx:        appCtx,
		cancelFunc: cancel,
		cleanup:    cleanup,
		done:       make(chan struct{}),
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address
func WithAddress(addr string) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, found := strings.Cut(addr, ":")
		if !found || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithEngine allows injecting a sync engine instead of the HTTP engine client
func WithEngine(e engine.Engine) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.engine = e
		return nil
	}
}

// WithNetworkMonitor sets the connectivity source for network constrained sync work
func WithNetworkMonitor(m jobs.NetworkMonitor) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.networkMonitor = m
		return nil
	}
}

// WithTelemetry uses t instead of creating providers from the configuration.
// The caller remains responsible for shutting t down.
func WithTelemetry(t *telemetry.Telemetry) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.telemetry = t
		return nil
	}
}

// WithLogger sets the logger used for supervision events
func WithLogger(logger *slog.Logger) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		cfg.logger = logger
		return nil
	}
}

// WithShutdownTimeout bounds how long shutdown waits for running work and connections
func WithShutdownTimeout(d time.Duration) SyncAppOptions {
	return func(cfg *syncAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("shutdown timeout must be positive, got %s", d)
		}
		cfg.shutdownTimeout = d
		return nil
	}
}

// buildSyncComponents builds the state, the stores, the worker, the queue and the manager
func buildSyncComponents(
	ctx context.Context,
	b *syncAppConfig,
	instruments *telemetry.Instruments,
) (*SyncComponents, error) {
	slog.Info("Initializing sync components")

	stateService, err := b.storageFactory.CreateStateService(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create state service: %w", err)
	}
	if err := stateService.Initialize(ctx); err != nil {
		return nil, err
	}

	if b.config.Auth != nil {
		seed, err := LoadSeed(b.config.Auth.SeedFile)
		if err != nil {
			return nil, err
		}
		if err := seed.Apply(ctx, stateService); err != nil {
			return nil, err
		}
	}

	if b.engine == nil {
		b.engine = engine.NewHTTPEngine(
			b.config.Engine.Endpoint,
			b.config.Engine.GetTimeout(),
			b.config.Engine.GetBreakerSettings(),
		)
	}

	registry, err := buildStoreRegistry(b.config.Stores, b.engine, stateService)
	if err != nil {
		return nil, err
	}

	engines := b.config.Sync.GetEngines()
	if len(engines) == 0 {
		engines = registry.Engines()
	}
	if len(engines) == 0 {
		return nil, fmt.Errorf("no engines to sync: configure stores")
	}
	for _, e := range engines {
		if _, ok := registry.GetStore(e); !ok {
			return nil, fmt.Errorf("engine %s has no configured store", e)
		}
	}

	authObservers := pkgsync.NewObserverRegistry[pkgsync.AuthErrorObserver]()
	declinedObservers := pkgsync.NewObserverRegistry[pkgsync.DeclinedEnginesObserver]()
	errorObservers := pkgsync.NewObserverRegistry[pkgsync.SyncStatusObserver]()

	workerOpts := []worker.Option{
		worker.WithAuthErrorObservers(authObservers),
		worker.WithDeclinedEnginesObservers(declinedObservers),
		worker.WithSyncErrorObservers(errorObservers),
		worker.WithSyncMetrics(instruments.Sync),
		worker.WithTracer(b.telemetry.SyncTracer()),
	}
	if d := b.config.Sync.GetStaggerBuffer(); d > 0 {
		workerOpts = append(workerOpts, worker.WithStaggerBuffer(d))
	}
	syncWorker := worker.New(registry, stateService, b.engine, workerOpts...)

	queueOpts := []jobs.Option{jobs.WithMetrics(instruments.Jobs)}
	if b.networkMonitor != nil {
		queueOpts = append(queueOpts, jobs.WithNetworkMonitor(b.networkMonitor))
	}
	if d := b.config.Sync.GetMinPeriodicInterval(); d > 0 {
		queueOpts = append(queueOpts, jobs.WithMinPeriod(d))
	}
	if d := b.config.Sync.GetRunTimeout(); d > 0 {
		queueOpts = append(queueOpts, jobs.WithRunTimeout(d))
	}
	queue := jobs.NewQueue(b.storageFactory.KVStore(), syncWorker, queueOpts...)

	dispatcherOpts := []dispatcher.Option{dispatcher.WithSyncMetrics(instruments.Sync)}
	if d := b.config.Sync.GetStartupDelay(); d > 0 {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithStartupDelay(d))
	}
	if d := b.config.Sync.GetBackoffDelay(); d > 0 {
		dispatcherOpts = append(dispatcherOpts, dispatcher.WithBackoffDelay(d))
	}
	watcher := dispatcher.NewStateWatcher(queue)
	factory := dispatcher.NewFactory(queue, watcher, dispatcherOpts...)

	manager := pkgsync.NewManager(pkgsync.NewConfig(engines, b.config.Sync.GetPeriodInterval()), factory)

	svc := service.New(manager, stateService,
		service.WithAuthErrorObservers(authObservers),
		service.WithDeclinedEnginesObservers(declinedObservers),
		service.WithSyncErrorObservers(errorObservers),
		service.WithStoreLookup(registry),
	)

	slog.Info("Sync components initialized successfully", "engines", pkgsync.EngineNames(engines))

	return &SyncComponents{
		Manager: manager,
		Queue:   queue,
		Service: svc,
		State:   stateService,
		Stores:  registry,
	}, nil
}

// buildStoreRegistry registers a handle store for every configured engine
func buildStoreRegistry(
	handles map[string]string,
	eng engine.Engine,
	stateService state.SyncStateService,
) (*stores.Registry, error) {
	registry := stores.NewRegistry()
	for name, handle := range handles {
		e, err := pkgsync.ParseEngine(name)
		if err != nil {
			return nil, fmt.Errorf("invalid store configuration: %w", err)
		}
		registry.ConfigureStore(e, func() pkgsync.SyncableStore {
			return stores.NewHandleStore(e, engine.Handle(handle), eng, stateService)
		})
	}
	return registry, nil
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(
	b *syncAppConfig,
	svc service.SyncService,
	instruments *telemetry.Instruments,
) *http.Server {
	slog.Info("Initializing HTTP server")

	// Use default middlewares if not provided
	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first to capture every request
	b.middlewares = append([]func(http.Handler) http.Handler{
		instruments.HTTP.Middleware,
		telemetry.TracingMiddleware(b.telemetry.TracerProvider()),
	}, b.middlewares...)

	router := api.NewServer(svc, api.WithMiddlewares(b.middlewares...))

	server := &http.Server{
		Addr:         b.address,
		Handler:      router,
		ReadTimeout:  b.readTimeout,
		WriteTimeout: b.writeTimeout,
		IdleTimeout:  b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address)
	return server
}
