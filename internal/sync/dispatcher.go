package sync

import (
	"context"
	"time"
)

// Dispatcher turns sync requests into scheduled work and tracks whether sync work is running
//
//go:generate mockgen -destination=mocks/mock_dispatcher.go -package=mocks github.com/stacklok/toolhive-sync/internal/sync Dispatcher,DispatcherFactory
type Dispatcher interface {
	// Register adds a sync status observer
	Register(observer SyncStatusObserver)
	// Unregister removes a sync status observer
	Unregister(observer SyncStatusObserver)

	// IsSyncActive reports whether any sync work is currently running
	IsSyncActive() bool

	// SyncNow requests an immediate sync. A request made while another immediate
	// sync is pending or running is dropped.
	SyncNow(ctx context.Context, reason Reason, debounce bool) error

	// StartPeriodicSync schedules a recurring sync, replacing any previous schedule
	StartPeriodicSync(ctx context.Context, interval time.Duration) error

	// StopPeriodicSync cancels the recurring sync. It is safe to call when none is scheduled.
	StopPeriodicSync(ctx context.Context) error

	// WorkersStateChanged is called with the aggregate running state of sync work
	WorkersStateChanged(isRunning bool)

	// Close stops periodic sync. Work already running is allowed to finish.
	Close() error
}

// DispatcherFactory binds a Manager to a concrete scheduling backend
type DispatcherFactory interface {
	// CreateDispatcher creates a dispatcher for the given engines
	CreateDispatcher(ctx context.Context, engines []Engine) (Dispatcher, error)

	// DispatcherUpdated is called after a new dispatcher has been created and started
	DispatcherUpdated(dispatcher Dispatcher)
}
