// Package status provides the sync run status snapshot reported by the control API.
package status

import "time"

// SyncPhase represents the current phase of a synchronization run
type SyncPhase string

const (
	// SyncPhaseSyncing means sync is currently in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means sync completed successfully
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means sync failed
	SyncPhaseFailed SyncPhase = "Failed"

	// SyncPhaseSkipped means a debounced run found a recent enough sync and did nothing
	SyncPhaseSkipped SyncPhase = "Skipped"
)

// SyncStatus represents the state of the most recent sync run
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase,omitempty"`

	// Message provides additional information about the sync status
	Message string `json:"message,omitempty"`

	// Reason is why the last run was requested (startup, user, periodic, ...)
	Reason string `json:"reason,omitempty"`

	// LastAttempt is the timestamp of the last sync attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of sync attempts since last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful sync
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// Engines lists the engines the last run covered
	Engines []string `json:"engines,omitempty"`

	// Declined lists the engines the server reported as declined on the last run
	Declined []string `json:"declined,omitempty"`

	// Failures maps engine names to the error the engine reported on the last run
	Failures map[string]string `json:"failures,omitempty"`
}

// IsTerminal reports whether the phase describes a finished run
func (p SyncPhase) IsTerminal() bool {
	switch p {
	case SyncPhaseComplete, SyncPhaseFailed, SyncPhaseSkipped:
		return true
	case SyncPhaseSyncing:
		return false
	}
	return false
}
