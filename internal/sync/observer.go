package sync

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	gosync "sync"
)

// SyncStatusObserver receives sync lifecycle notifications
//
//go:generate mockgen -destination=mocks/mock_observers.go -package=mocks github.com/stacklok/toolhive-sync/internal/sync SyncStatusObserver,AuthErrorObserver,DeclinedEnginesObserver
type SyncStatusObserver interface {
	// OnStarted is called when sync work transitions from idle to active
	OnStarted()
	// OnIdle is called when sync work transitions from active to idle
	OnIdle()
	// OnError is called when a sync attempt reports an error
	OnError(err error)
}

// AuthErrorObserver is notified when the sync engine rejects the account credentials
type AuthErrorObserver interface {
	OnAuthError(ctx context.Context, err error)
}

// DeclinedEnginesObserver is notified when the set of declined engines changes
type DeclinedEnginesObserver interface {
	// OnUpdatedDeclinedEngines receives the declined engines. isLocalChange is false
	// when the change was reported by the server.
	OnUpdatedDeclinedEngines(engines []Engine, isLocalChange bool)
}

// ObserverRegistry holds a set of observers and notifies them in registration order
type ObserverRegistry[T comparable] struct {
	mu        gosync.RWMutex
	observers []T
}

// NewObserverRegistry creates an empty observer registry
func NewObserverRegistry[T comparable]() *ObserverRegistry[T] {
	return &ObserverRegistry[T]{}
}

// Register adds an observer. Registering the same observer twice is a no-op.
func (r *ObserverRegistry[T]) Register(observer T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slices.Contains(r.observers, observer) {
		return
	}
	r.observers = append(r.observers, observer)
}

// Unregister removes an observer if it is registered
func (r *ObserverRegistry[T]) Unregister(observer T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.observers = slices.DeleteFunc(r.observers, func(o T) bool { return o == observer })
}

// Len returns the number of registered observers
func (r *ObserverRegistry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Notify calls fn for every observer registered at the time of the call.
// A panic in one observer is logged and does not stop the others.
func (r *ObserverRegistry[T]) Notify(fn func(T)) {
	r.mu.RLock()
	snapshot := slices.Clone(r.observers)
	r.mu.RUnlock()

	for _, observer := range snapshot {
		notifyOne(observer, fn)
	}
}

func notifyOne[T any](observer T, fn func(T)) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Observer panicked during notification", "observer", fmt.Sprintf("%T", observer), "panic", rec)
		}
	}()
	fn(observer)
}
