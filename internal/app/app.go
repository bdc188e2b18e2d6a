// Package app provides application lifecycle management for the sync service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/stacklok/toolhive-sync/internal/config"
)

// SyncApp encapsulates all components needed to run the sync service.
// It provides lifecycle management and graceful shutdown capabilities.
type SyncApp struct {
	config     *config.Config
	components *SyncComponents
	httpServer *http.Server
	supervisor *suture.Supervisor

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	cleanup    func(ctx context.Context)
	started    atomic.Bool
	done       chan struct{}
}

// Start runs the supervision tree: the job queue, the sync manager and the HTTP server.
// This method blocks until Stop is called or the tree fails permanently.
func (app *SyncApp) Start() error {
	if !app.started.CompareAndSwap(false, true) {
		return errors.New("application already started")
	}
	defer close(app.done)

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.supervisor.Serve(app.ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the application with the given timeout.
// Running sync work is allowed to finish within the timeout.
func (app *SyncApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	app.cancelFunc()

	var stopErr error
	if app.started.Load() {
		select {
		case <-app.done:
		case <-time.After(timeout):
			stopErr = fmt.Errorf("shutdown did not complete within %s", timeout)
		}
	}

	cleanupCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	app.cleanup(cleanupCtx)

	if stopErr != nil {
		return stopErr
	}
	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *SyncApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *SyncApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the wired application components
func (app *SyncApp) Components() *SyncComponents {
	return app.components
}
