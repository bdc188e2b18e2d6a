// Package stores holds the registry of local data stores that take part in
// synchronization, and a store implementation backed by the sync engine.
package stores

import (
	"log/slog"
	"slices"
	"sync"

	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
)

// LazyStore constructs a store on first use
type LazyStore func() pkgsync.SyncableStore

type entry struct {
	once  sync.Once
	lazy  LazyStore
	store pkgsync.SyncableStore
}

func (e *entry) get() pkgsync.SyncableStore {
	e.once.Do(func() {
		if e.lazy != nil {
			e.store = e.lazy()
		}
		e.lazy = nil
	})
	return e.store
}

// Registry maps engines to lazily constructed stores. Entries are never removed.
// It is created by the application root and handed to the worker.
type Registry struct {
	mu      sync.RWMutex
	entries map[pkgsync.Engine]*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[pkgsync.Engine]*entry)}
}

// ConfigureStore registers the store constructor of e. A later call for the
// same engine replaces the earlier one.
func (r *Registry) ConfigureStore(e pkgsync.Engine, lazy LazyStore) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[e]; ok {
		slog.Debug("Replacing configured store", "engine", string(e))
	}
	r.entries[e] = &entry{lazy: lazy}
}

// GetStore returns the store of e, constructing it on the first call
func (r *Registry) GetStore(e pkgsync.Engine) (pkgsync.SyncableStore, bool) {
	r.mu.RLock()
	ent, ok := r.entries[e]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	store := ent.get()
	return store, store != nil
}

// Engines returns the registered engines sorted by name
func (r *Registry) Engines() []pkgsync.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engines := make([]pkgsync.Engine, 0, len(r.entries))
	for e := range r.entries {
		engines = append(engines, e)
	}
	slices.Sort(engines)
	return engines
}
