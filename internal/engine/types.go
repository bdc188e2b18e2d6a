// Package engine defines the boundary between the sync coordinator and the
// remote sync engine: the request and result shapes of a sync pass, the
// service status taxonomy and an HTTP client for an engine running as a
// separate service.
package engine

import "time"

// Reason is the wire form of why a sync pass was requested
type Reason string

const (
	// ReasonScheduled is a periodic background sync
	ReasonScheduled Reason = "scheduled"
	// ReasonUser is a sync the user asked for
	ReasonUser Reason = "user"
	// ReasonStartup is a sync at application startup
	ReasonStartup Reason = "startup"
	// ReasonEnabledChange is a sync following a change of enabled engines
	ReasonEnabledChange Reason = "enabled_change"
)

// ServiceStatus is the overall outcome of a sync pass reported by the engine
type ServiceStatus string

const (
	// StatusOK means the sync pass completed
	StatusOK ServiceStatus = "ok"
	// StatusNetworkError means the engine could not reach the server
	StatusNetworkError ServiceStatus = "network_error"
	// StatusBackedOff means the server asked the client to back off
	StatusBackedOff ServiceStatus = "backed_off"
	// StatusAuthError means the account credentials were rejected
	StatusAuthError ServiceStatus = "auth_error"
	// StatusServiceError means the server reported an error
	StatusServiceError ServiceStatus = "service_error"
	// StatusOtherError covers every other failure
	StatusOtherError ServiceStatus = "other_error"
)

// Handle is an opaque reference through which the engine reaches a local store
type Handle string

// BindingKind selects which of the engine's store slots a handle is bound to
type BindingKind string

const (
	// BindPlaces binds the history and bookmarks store
	BindPlaces BindingKind = "places"
	// BindLogins binds the passwords store
	BindLogins BindingKind = "logins"
	// BindTabs binds the remote tabs store
	BindTabs BindingKind = "tabs"
)

// AuthInfo carries the account credentials for a sync pass
type AuthInfo struct {
	Kid                     string `json:"kid"`
	FxaAccessToken          string `json:"fxaAccessToken"`
	FxaAccessTokenExpiresAt int64  `json:"fxaAccessTokenExpiresAt"`
	SyncKey                 string `json:"syncKey"`
	TokenServerURL          string `json:"tokenServerUrl"`
}

// DeviceSettings describes this client to the sync server
type DeviceSettings struct {
	FxaDeviceID string `json:"fxaDeviceId"`
	Name        string `json:"name"`
	Type        string `json:"type"`
}

// Request is a single sync pass request
type Request struct {
	Reason Reason `json:"reason"`
	// Engines limits the pass to the named engines. Nil syncs every bound engine.
	Engines        []string        `json:"engines"`
	AuthInfo       AuthInfo        `json:"authInfo"`
	EnabledChanges map[string]bool `json:"enabledChanges"`
	PersistedState string          `json:"persistedState"`
	DeviceSettings DeviceSettings  `json:"deviceSettings"`
}

// Result is the outcome of a sync pass
type Result struct {
	Status     ServiceStatus     `json:"status"`
	Successful []string          `json:"successful"`
	Failures   map[string]string `json:"failures"`
	// Declined is nil when the server did not report declined engines
	Declined          []string   `json:"declined"`
	NextSyncAllowedAt *time.Time `json:"nextSyncAllowedAt,omitempty"`
	PersistedState    string     `json:"persistedState"`

	// StateUnchanged is set when the engine produced no state, such as an
	// HTTP error reply without a result body. PersistedState is then empty
	// and must not replace the stored blob.
	StateUnchanged bool `json:"-"`
}
