// Package sync provides the synchronization lifecycle for a set of syncable stores.
//
// The package defines the vocabulary shared by every sync component and the
// public facade used by the embedding application:
//
// # Core Types
//
//   - Reason: why a sync was requested (startup, user, engine change, first sync, scheduled)
//   - Engine: identifier of a syncable data collection (history, bookmarks, passwords, tabs)
//   - Config: the immutable set of supported engines plus an optional periodic interval
//   - SyncableStore: a local store that exposes an engine handle and can sync on its own
//   - JobResult: the outcome a sync job reports to the job scheduler (success, retry, failure)
//
// # Manager
//
// Manager owns a Config and a single current Dispatcher. Start always replaces
// the current dispatcher with a fresh one, Stop tears it down, and Now forwards
// an immediate sync request to whichever dispatcher is current. Observers
// registered on the manager survive dispatcher swaps because the manager
// registers a single pass-through observer on each dispatcher it creates.
//
// The manager is backend agnostic. A DispatcherFactory binds it to a concrete
// job scheduling backend; see the sync/dispatcher package for the job queue
// backed implementation.
//
// # Observers
//
// ObserverRegistry is a small generic registry used for sync status, auth
// error and declined engine observers. Notification walks a snapshot of the
// registered observers in insertion order, and a panicking observer does not
// prevent the remaining observers from being notified.
//
// # Related Packages
//
//   - sync/dispatcher: translates sync requests into unique jobs and tracks idle/active state
//   - sync/worker: performs one sync attempt and classifies its outcome
//   - sync/stores: name keyed registry of lazily constructed syncable stores
//   - sync/state: durable sync state (last synced time, persisted engine state, caches)
package sync
