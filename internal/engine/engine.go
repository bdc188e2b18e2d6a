package engine

import (
	"context"
	"errors"
)

// ErrTransport marks failures to reach the engine at all. Callers treat it as transient.
var ErrTransport = errors.New("sync engine transport error")

// Engine performs sync passes over the stores bound to it
//
//go:generate mockgen -destination=mocks/mock_engine.go -package=mocks github.com/stacklok/toolhive-sync/internal/engine Engine
type Engine interface {
	// Bind associates a store handle with one of the engine's store slots
	Bind(kind BindingKind, handle Handle)

	// Sync performs one sync pass
	Sync(ctx context.Context, req *Request) (*Result, error)
}
