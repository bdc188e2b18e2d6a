package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
)

const (
	supervisorFailureThreshold = 5.0
	supervisorFailureDecay     = 30.0
	supervisorFailureBackoff   = 15 * time.Second
	supervisorTimeout          = 10 * time.Second
)

// newSupervisor builds the supervision tree: a sync layer running the job
// queue and the manager, and an API layer running the HTTP server
func newSupervisor(logger *slog.Logger, syncServices, apiServices []suture.Service) *suture.Supervisor {
	handler := &sutureslog.Handler{Logger: logger}

	childSpec := suture.Spec{
		FailureThreshold: supervisorFailureThreshold,
		FailureDecay:     supervisorFailureDecay,
		FailureBackoff:   supervisorFailureBackoff,
		Timeout:          supervisorTimeout,
	}
	rootSpec := childSpec
	rootSpec.EventHook = handler.MustHook()

	root := suture.New("thv-sync", rootSpec)
	syncLayer := suture.New("sync-layer", childSpec)
	apiLayer := suture.New("api-layer", childSpec)

	for _, svc := range syncServices {
		syncLayer.Add(svc)
	}
	for _, svc := range apiServices {
		apiLayer.Add(svc)
	}

	root.Add(syncLayer)
	root.Add(apiLayer)
	return root
}

// httpServer matches the lifecycle methods of *http.Server
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// httpServerService runs an HTTP server under the supervisor
type httpServerService struct {
	server          httpServer
	shutdownTimeout time.Duration
}

func (*httpServerService) String() string {
	return "http-server"
}

// Serve runs the server until ctx is cancelled, then shuts it down gracefully
func (h *httpServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return errors.New("http server closed unexpectedly")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.shutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return ctx.Err()
}

// syncManager is the part of *pkgsync.Manager the supervisor drives
type syncManager interface {
	Start(ctx context.Context, reason pkgsync.Reason) error
	Stop(ctx context.Context) error
}

// managerService starts sync when the supervisor starts and stops it on shutdown
type managerService struct {
	manager     syncManager
	stopTimeout time.Duration
}

func (*managerService) String() string {
	return "sync-manager"
}

// Serve starts sync and blocks until ctx is cancelled
func (m *managerService) Serve(ctx context.Context) error {
	if err := m.manager.Start(ctx, pkgsync.ReasonStartup); err != nil {
		return fmt.Errorf("failed to start sync: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.stopTimeout)
	defer cancel()
	if err := m.manager.Stop(stopCtx); err != nil {
		slog.Error("Failed to stop sync", "error", err)
	}
	return ctx.Err()
}
