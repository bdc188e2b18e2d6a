package sync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	gosync "sync"
)

// Manager owns the sync lifecycle: a Config and at most one current Dispatcher
type Manager struct {
	factory DispatcherFactory

	mu         gosync.Mutex
	config     Config
	dispatcher Dispatcher
	started    bool

	observers   *ObserverRegistry[SyncStatusObserver]
	passThrough *passThroughObserver
}

// NewManager creates a manager for cfg. No dispatcher exists until Start is called.
func NewManager(cfg Config, factory DispatcherFactory) *Manager {
	m := &Manager{
		factory:   factory,
		config:    cfg,
		observers: NewObserverRegistry[SyncStatusObserver](),
	}
	m.passThrough = &passThroughObserver{registry: m.observers}
	return m
}

// Config returns the current sync configuration
func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// RegisterSyncStatusObserver adds an observer that outlives dispatcher replacement
func (m *Manager) RegisterSyncStatusObserver(observer SyncStatusObserver) {
	m.observers.Register(observer)
}

// UnregisterSyncStatusObserver removes an observer added with RegisterSyncStatusObserver
func (m *Manager) UnregisterSyncStatusObserver(observer SyncStatusObserver) {
	m.observers.Unregister(observer)
}

// IsSyncActive reports whether the current dispatcher has sync work running
func (m *Manager) IsSyncActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dispatcher == nil {
		return false
	}
	return m.dispatcher.IsSyncActive()
}

// IsStarted reports whether Start was called without a later Stop
func (m *Manager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// Start replaces the current dispatcher with a new one and requests an immediate sync.
// When a sync period is configured, periodic syncing is started as well.
func (m *Manager) Start(ctx context.Context, reason Reason) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	slog.Info("Starting sync", "reason", reason.String(), "engines", EngineNames(m.config.SupportedEngines))

	if err := m.start(ctx, reason); err != nil {
		return err
	}
	m.started = true
	return nil
}

func (m *Manager) start(ctx context.Context, reason Reason) error {
	if err := m.closeDispatcher(); err != nil {
		slog.Warn("Failed to close previous dispatcher", "error", err)
	}

	dispatcher, err := m.factory.CreateDispatcher(ctx, slices.Clone(m.config.SupportedEngines))
	if err != nil {
		return fmt.Errorf("failed to create sync dispatcher: %w", err)
	}
	m.dispatcher = dispatcher

	dispatcher.Register(m.passThrough)

	if err := dispatcher.SyncNow(ctx, reason, false); err != nil {
		return fmt.Errorf("failed to request initial sync: %w", err)
	}

	if m.config.SyncPeriod != nil {
		if err := dispatcher.StartPeriodicSync(ctx, *m.config.SyncPeriod); err != nil {
			return fmt.Errorf("failed to start periodic sync: %w", err)
		}
	}

	m.factory.DispatcherUpdated(dispatcher)
	return nil
}

// Stop tears down the current dispatcher and cancels periodic sync.
// Work that is already running is allowed to finish.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.started = false
	if m.dispatcher == nil {
		return nil
	}

	slog.Info("Stopping sync")

	d := m.dispatcher
	d.Unregister(m.passThrough)
	stopErr := d.StopPeriodicSync(ctx)
	closeErr := d.Close()
	m.dispatcher = nil

	if stopErr != nil {
		return fmt.Errorf("failed to stop periodic sync: %w", stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close sync dispatcher: %w", closeErr)
	}
	return nil
}

// Now requests an immediate sync from the current dispatcher.
// Without a dispatcher the request is logged and dropped.
func (m *Manager) Now(ctx context.Context, reason Reason, debounce bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dispatcher == nil {
		slog.Info("Sync requested but sync is not running",
			"reason", reason.String(),
			"error", ErrSyncNotEnabled)
		return nil
	}

	return m.dispatcher.SyncNow(ctx, reason, debounce)
}

// SetEngines replaces the supported engine set. If the manager is started,
// it restarts with a fresh dispatcher for the new set.
func (m *Manager) SetEngines(ctx context.Context, engines []Engine, reason Reason) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = NewConfig(engines, m.config.SyncPeriod)
	if !m.started {
		return nil
	}

	slog.Info("Supported engines changed, restarting sync",
		"engines", EngineNames(m.config.SupportedEngines),
		"reason", reason.String())
	return m.start(ctx, reason)
}

// closeDispatcher must be called with m.mu held
func (m *Manager) closeDispatcher() error {
	if m.dispatcher == nil {
		return nil
	}
	d := m.dispatcher
	m.dispatcher = nil
	d.Unregister(m.passThrough)
	return d.Close()
}

// passThroughObserver forwards notifications from the current dispatcher to
// the observers registered on the manager
type passThroughObserver struct {
	registry *ObserverRegistry[SyncStatusObserver]
}

func (p *passThroughObserver) OnStarted() {
	p.registry.Notify(func(o SyncStatusObserver) { o.OnStarted() })
}

func (p *passThroughObserver) OnIdle() {
	p.registry.Notify(func(o SyncStatusObserver) { o.OnIdle() })
}

func (p *passThroughObserver) OnError(err error) {
	p.registry.Notify(func(o SyncStatusObserver) { o.OnError(err) })
}
