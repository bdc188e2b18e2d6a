// Package service provides the operations behind the sync control API
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/sync/state"
)

var (
	// ErrNoEngines is returned when an engine update names no engines
	ErrNoEngines = errors.New("at least one engine is required")
	// ErrNoStore is returned when an engine update names an engine without a local store
	ErrNoStore = errors.New("engine has no configured store")
)

// StoreLookup resolves engines to their local stores
type StoreLookup interface {
	GetStore(e pkgsync.Engine) (pkgsync.SyncableStore, bool)
}

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go SyncService

// SyncService defines the operations exposed by the control API
type SyncService interface {
	// CheckReadiness checks that the durable state can be read
	CheckReadiness(ctx context.Context) error

	// Status reports the lifecycle flags, the configuration and the durable state
	Status(ctx context.Context) (*Status, error)

	// SyncNow requests an immediate sync. It is a no-op while sync is stopped.
	SyncNow(ctx context.Context, reason pkgsync.Reason, debounce bool) error

	// Start starts syncing, replacing any running dispatcher
	Start(ctx context.Context, reason pkgsync.Reason) error

	// Stop stops syncing and cancels periodic work
	Stop(ctx context.Context) error

	// SetEngines replaces the supported engines, restarting sync if it is running
	SetEngines(ctx context.Context, engines []pkgsync.Engine, reason pkgsync.Reason) error
}

// Status is the sync status reported by the control API
type Status struct {
	Started        bool            `json:"started"`
	Active         bool            `json:"active"`
	Engines        []string        `json:"engines"`
	PeriodInterval string          `json:"periodInterval,omitempty"`
	LastError      string          `json:"lastError,omitempty"`
	AuthError      string          `json:"authError,omitempty"`
	Declined       []string        `json:"declined,omitempty"`
	State          *state.Snapshot `json:"state"`
}

type syncService struct {
	manager  *pkgsync.Manager
	stateSvc state.SyncStateService
	stores   StoreLookup

	mu        sync.RWMutex
	lastError error
	authError error
	declined  []pkgsync.Engine
}

var (
	_ SyncService                     = (*syncService)(nil)
	_ pkgsync.SyncStatusObserver      = (*syncService)(nil)
	_ pkgsync.AuthErrorObserver       = (*syncService)(nil)
	_ pkgsync.DeclinedEnginesObserver = (*syncService)(nil)
)

// Option configures the sync service
type Option func(*syncService)

// WithAuthErrorObservers records the auth errors delivered through reg
func WithAuthErrorObservers(reg *pkgsync.ObserverRegistry[pkgsync.AuthErrorObserver]) Option {
	return func(s *syncService) {
		reg.Register(s)
	}
}

// WithDeclinedEnginesObservers records the declined engines delivered through reg
func WithDeclinedEnginesObservers(reg *pkgsync.ObserverRegistry[pkgsync.DeclinedEnginesObserver]) Option {
	return func(s *syncService) {
		reg.Register(s)
	}
}

// WithSyncErrorObservers records the sync errors delivered through reg
func WithSyncErrorObservers(reg *pkgsync.ObserverRegistry[pkgsync.SyncStatusObserver]) Option {
	return func(s *syncService) {
		reg.Register(s)
	}
}

// WithStoreLookup rejects engine updates naming engines that stores cannot resolve
func WithStoreLookup(stores StoreLookup) Option {
	return func(s *syncService) {
		s.stores = stores
	}
}

// New creates a SyncService that controls manager and reads stateSvc.
// The service registers itself as a sync status observer of manager.
func New(manager *pkgsync.Manager, stateSvc state.SyncStateService, opts ...Option) SyncService {
	s := &syncService{
		manager:  manager,
		stateSvc: stateSvc,
	}
	for _, opt := range opts {
		opt(s)
	}
	manager.RegisterSyncStatusObserver(s)
	return s
}

func (s *syncService) CheckReadiness(ctx context.Context) error {
	if _, err := s.stateSvc.LastSynced(ctx); err != nil {
		return fmt.Errorf("sync state is not readable: %w", err)
	}
	return nil
}

func (s *syncService) Status(ctx context.Context) (*Status, error) {
	snapshot, err := s.stateSvc.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync state: %w", err)
	}

	cfg := s.manager.Config()
	result := &Status{
		Started: s.manager.IsStarted(),
		Active:  s.manager.IsSyncActive(),
		Engines: pkgsync.EngineNames(cfg.SupportedEngines),
		State:   snapshot,
	}
	if cfg.SyncPeriod != nil {
		result.PeriodInterval = cfg.SyncPeriod.String()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastError != nil {
		result.LastError = s.lastError.Error()
	}
	if s.authError != nil {
		result.AuthError = s.authError.Error()
	}
	if len(s.declined) > 0 {
		result.Declined = pkgsync.EngineNames(s.declined)
	}
	return result, nil
}

func (s *syncService) SyncNow(ctx context.Context, reason pkgsync.Reason, debounce bool) error {
	if err := s.manager.Now(ctx, reason, debounce); err != nil {
		return fmt.Errorf("failed to request sync: %w", err)
	}
	return nil
}

func (s *syncService) Start(ctx context.Context, reason pkgsync.Reason) error {
	if err := s.manager.Start(ctx, reason); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}
	return nil
}

func (s *syncService) Stop(ctx context.Context) error {
	if err := s.manager.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop sync: %w", err)
	}
	return nil
}

func (s *syncService) SetEngines(ctx context.Context, engines []pkgsync.Engine, reason pkgsync.Reason) error {
	if len(engines) == 0 {
		return ErrNoEngines
	}
	if s.stores != nil {
		for _, e := range engines {
			if _, ok := s.stores.GetStore(e); !ok {
				return fmt.Errorf("%w: %s", ErrNoStore, e)
			}
		}
	}

	// The restarted sync publishes the stored statuses, so they must reflect the new set first
	previous := s.manager.Config().SupportedEngines
	for _, e := range previous {
		if slices.Contains(engines, e) {
			continue
		}
		if err := s.stateSvc.SetEngineStatus(ctx, string(e), false); err != nil {
			return fmt.Errorf("failed to disable engine %s: %w", e, err)
		}
	}
	for _, e := range engines {
		if err := s.stateSvc.SetEngineStatus(ctx, string(e), true); err != nil {
			return fmt.Errorf("failed to enable engine %s: %w", e, err)
		}
	}

	if err := s.manager.SetEngines(ctx, slices.Clone(engines), reason); err != nil {
		return fmt.Errorf("failed to update engines: %w", err)
	}
	return nil
}

// OnStarted clears the error reported by the previous run
func (s *syncService) OnStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = nil
}

func (*syncService) OnIdle() {}

func (s *syncService) OnError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
}

func (s *syncService) OnAuthError(_ context.Context, err error) {
	slog.Warn("Sync credentials were rejected", "error", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.authError = err
}

func (s *syncService) OnUpdatedDeclinedEngines(engines []pkgsync.Engine, _ bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declined = slices.Clone(engines)
}
