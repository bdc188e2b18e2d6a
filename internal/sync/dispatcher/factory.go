package dispatcher

import (
	"context"

	"github.com/stacklok/toolhive-sync/internal/jobs"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
)

// Factory creates job backed dispatchers for a pkgsync.Manager and points
// its StateWatcher at the newest one
type Factory struct {
	scheduler jobs.Scheduler
	watcher   *StateWatcher
	opts      []Option
}

var _ pkgsync.DispatcherFactory = (*Factory)(nil)

// NewFactory creates a factory. opts are applied to every dispatcher it creates.
func NewFactory(scheduler jobs.Scheduler, watcher *StateWatcher, opts ...Option) *Factory {
	return &Factory{
		scheduler: scheduler,
		watcher:   watcher,
		opts:      opts,
	}
}

// CreateDispatcher creates a dispatcher for engines
func (f *Factory) CreateDispatcher(ctx context.Context, engines []pkgsync.Engine) (pkgsync.Dispatcher, error) {
	return New(ctx, f.scheduler, engines, f.opts...)
}

// DispatcherUpdated forwards work state changes to dispatcher
func (f *Factory) DispatcherUpdated(dispatcher pkgsync.Dispatcher) {
	f.watcher.SetDispatcher(dispatcher)
}
