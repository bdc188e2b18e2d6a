package sync

import "errors"

var (
	// ErrUnknownReason is returned when a reason string or value cannot be interpreted
	ErrUnknownReason = errors.New("unknown sync reason")

	// ErrUnknownEngine is returned when an engine name is not a configurable engine
	ErrUnknownEngine = errors.New("unknown sync engine")

	// ErrSyncNotEnabled is reported when a sync is requested before the manager has been started
	ErrSyncNotEnabled = errors.New("sync is not enabled")
)
