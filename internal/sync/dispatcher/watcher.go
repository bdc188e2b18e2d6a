package dispatcher

import (
	gosync "sync"

	"github.com/stacklok/toolhive-sync/internal/jobs"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
)

// StateWatcher holds one subscription to the running state of all sync work
// and forwards it to whichever dispatcher is current
type StateWatcher struct {
	// deliverMu serializes deliveries so a replayed state never overtakes a newer one
	deliverMu gosync.Mutex

	mu         gosync.Mutex
	dispatcher pkgsync.Dispatcher
	running    bool
	seen       bool

	unsubscribe func()
}

// NewStateWatcher subscribes to the aggregate state of work tagged pkgsync.TagCommon
func NewStateWatcher(scheduler jobs.Scheduler) *StateWatcher {
	w := &StateWatcher{}
	w.unsubscribe = scheduler.ObserveTag(pkgsync.TagCommon, w.forward)
	return w
}

// SetDispatcher makes d the receiver of state changes. The last observed state
// is delivered to d right away. A nil d stops forwarding.
func (w *StateWatcher) SetDispatcher(d pkgsync.Dispatcher) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	w.dispatcher = d
	running, seen := w.running, w.seen
	w.mu.Unlock()

	if d != nil && seen {
		d.WorkersStateChanged(running)
	}
}

// Close ends the subscription
func (w *StateWatcher) Close() {
	w.unsubscribe()
	w.SetDispatcher(nil)
}

func (w *StateWatcher) forward(running bool) {
	w.deliverMu.Lock()
	defer w.deliverMu.Unlock()

	w.mu.Lock()
	w.running = running
	w.seen = true
	d := w.dispatcher
	w.mu.Unlock()

	if d != nil {
		d.WorkersStateChanged(running)
	}
}
