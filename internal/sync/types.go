package sync

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/stacklok/toolhive-sync/internal/engine"
	"github.com/stacklok/toolhive-sync/internal/jobs"
)

// Reason describes why a sync is being requested
type Reason int

const (
	// ReasonStartup means the application is starting up and wants to sync data
	ReasonStartup Reason = iota
	// ReasonUser means the user requested a sync, e.g. a "sync now" button
	ReasonUser
	// ReasonEngineChange means the user changed the enabled state of one or more engines
	ReasonEngineChange
	// ReasonFirstSync is used for the first sync after signing in or signing up
	ReasonFirstSync
	// ReasonScheduled is used for periodic background syncs
	ReasonScheduled
)

// String returns the stable form of the reason used in job metadata
func (r Reason) String() string {
	switch r {
	case ReasonStartup:
		return "startup"
	case ReasonUser:
		return "user"
	case ReasonEngineChange:
		return "engine_change"
	case ReasonFirstSync:
		return "first_sync"
	case ReasonScheduled:
		return "periodic"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// ParseReason converts a stable reason string back into a Reason
func ParseReason(s string) (Reason, error) {
	switch s {
	case "startup":
		return ReasonStartup, nil
	case "user":
		return ReasonUser, nil
	case "engine_change":
		return ReasonEngineChange, nil
	case "first_sync":
		return ReasonFirstSync, nil
	case "periodic":
		return ReasonScheduled, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownReason, s)
}

// EngineReason converts the reason into the sync engine's wire representation
func (r Reason) EngineReason() (engine.Reason, error) {
	switch r {
	case ReasonStartup:
		return engine.ReasonStartup, nil
	case ReasonUser:
		return engine.ReasonUser, nil
	case ReasonEngineChange:
		return engine.ReasonEnabledChange, nil
	case ReasonFirstSync:
		return engine.ReasonUser, nil
	case ReasonScheduled:
		return engine.ReasonScheduled, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownReason, int(r))
}

// Engine identifies a syncable data collection.
// Engines the server reports that this client does not know about are kept
// as-is, so an Engine may carry any name.
type Engine string

const (
	// EngineHistory is the browsing history collection
	EngineHistory Engine = "history"
	// EngineBookmarks is the bookmarks collection
	EngineBookmarks Engine = "bookmarks"
	// EnginePasswords is the saved logins collection
	EnginePasswords Engine = "passwords"
	// EngineTabs is the remote tabs collection
	EngineTabs Engine = "tabs"
	// EngineForms is the form history collection. It is never configured directly;
	// it always follows the enabled state of EngineHistory.
	EngineForms Engine = "forms"
)

// ParseEngine converts the name of a locally configurable engine into an Engine.
// Forms and unknown names are rejected.
func ParseEngine(name string) (Engine, error) {
	switch Engine(name) {
	case EngineHistory, EngineBookmarks, EnginePasswords, EngineTabs:
		return Engine(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// BindingKind returns the engine slot the store of e is bound to.
// History and bookmarks share the places store.
func (e Engine) BindingKind() (engine.BindingKind, bool) {
	switch e {
	case EngineHistory, EngineBookmarks:
		return engine.BindPlaces, true
	case EnginePasswords:
		return engine.BindLogins, true
	case EngineTabs:
		return engine.BindTabs, true
	case EngineForms:
		return "", false
	}
	return "", false
}

// EngineNames returns the sorted string names of the given engines
func EngineNames(engines []Engine) []string {
	names := make([]string, 0, len(engines))
	for _, e := range engines {
		names = append(names, string(e))
	}
	slices.Sort(names)
	return names
}

// Config describes how sync should behave
type Config struct {
	// SupportedEngines is the set of engines which should be synchronized
	SupportedEngines []Engine

	// SyncPeriod is the periodic sync interval. Nil disables periodic syncing.
	SyncPeriod *time.Duration
}

// NewConfig builds a Config with a de-duplicated, sorted engine set
func NewConfig(engines []Engine, period *time.Duration) Config {
	set := slices.Clone(engines)
	slices.Sort(set)
	return Config{
		SupportedEngines: slices.Compact(set),
		SyncPeriod:       period,
	}
}

// StoreStatus is the result of a standalone store sync
type StoreStatus struct {
	// Err is nil when the store synced successfully
	Err error
}

// OK reports whether the store synced successfully
func (s StoreStatus) OK() bool {
	return s.Err == nil
}

// StatusOK is a successful StoreStatus
var StatusOK = StoreStatus{}

// StatusError wraps err into a failed StoreStatus
func StatusError(err error) StoreStatus {
	return StoreStatus{Err: err}
}

// SyncableStore is a local data store that can participate in synchronization
//
//go:generate mockgen -destination=mocks/mock_syncable_store.go -package=mocks github.com/stacklok/toolhive-sync/internal/sync SyncableStore
type SyncableStore interface {
	// Handle returns the handle the sync engine uses to reach this store
	Handle() engine.Handle

	// Sync synchronizes this store on its own, outside of any coordinated sync
	Sync(ctx context.Context, authInfo engine.AuthInfo) StoreStatus
}

// JobResult is the outcome a sync job reports to the job scheduler
type JobResult = jobs.Result

const (
	// JobSuccess means the job completed and must not be retried
	JobSuccess = jobs.ResultSuccess
	// JobRetry means the job hit a transient error; the scheduler retries with backoff
	JobRetry = jobs.ResultRetry
	// JobFailure means the job failed and must not be retried
	JobFailure = jobs.ResultFailure
)

// Names and tags shared between the dispatcher, which enqueues sync jobs, and
// the worker, which executes them.
const (
	// WorkNameImmediate is the unique work name of one-off sync jobs
	WorkNameImmediate = "Immediate"
	// WorkNamePeriodic is the unique work name of the periodic sync job
	WorkNamePeriodic = "Periodic"

	// TagCommon is carried by every sync job; its aggregate running state drives OnStarted/OnIdle
	TagCommon = "Common"
	// TagImmediate marks a sync job that will not be debounced
	TagImmediate = "Immediate"
	// TagDebounce marks a sync job that is skipped if a sync succeeded recently
	TagDebounce = "Debounce"

	// DataKeyStores is the job data key holding the engine names to sync
	DataKeyStores = "stores"
	// DataKeyReason is the job data key holding the Reason string
	DataKeyReason = "reason"
)
