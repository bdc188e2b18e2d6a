// Package v1 provides the REST API handlers for controlling background sync.
package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/toolhive-sync/internal/api/common"
	"github.com/stacklok/toolhive-sync/internal/service"
	pkgsync "github.com/stacklok/toolhive-sync/internal/sync"
	"github.com/stacklok/toolhive-sync/internal/versions"
)

// ActionResponse is returned by the sync control endpoints
type ActionResponse struct {
	Status string `json:"status"`
}

// SetEnginesRequest is the body of PUT /v1/sync/engines
type SetEnginesRequest struct {
	Engines []string `json:"engines"`
	Reason  string   `json:"reason,omitempty"`
}

// Routes defines the sync control routes
type Routes struct {
	service service.SyncService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.SyncService) *Routes {
	return &Routes{service: svc}
}

// Router creates a router for the sync control API
func Router(svc service.SyncService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Get("/status", routes.getStatus)
	r.Post("/now", routes.syncNow)
	r.Post("/start", routes.start)
	r.Post("/stop", routes.stop)
	r.Put("/engines", routes.setEngines)

	return r
}

// getStatus handles GET /v1/sync/status
func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	st, err := rr.service.Status(r.Context())
	if err != nil {
		slog.Error("Failed to get sync status", "error", err)
		common.WriteErrorResponse(w, "Failed to get sync status", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

// syncNow handles POST /v1/sync/now?reason=user&debounce=false
func (rr *Routes) syncNow(w http.ResponseWriter, r *http.Request) {
	reason, ok := reasonParam(w, r, pkgsync.ReasonUser)
	if !ok {
		return
	}

	debounce := false
	if raw := r.URL.Query().Get("debounce"); raw != "" {
		var err error
		debounce, err = strconv.ParseBool(raw)
		if err != nil {
			common.WriteErrorResponse(w, "debounce must be a boolean", http.StatusBadRequest)
			return
		}
	}

	if err := rr.service.SyncNow(r.Context(), reason, debounce); err != nil {
		slog.Error("Failed to request sync", "reason", reason.String(), "error", err)
		common.WriteErrorResponse(w, "Failed to request sync", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, ActionResponse{Status: "accepted"}, http.StatusAccepted)
}

// start handles POST /v1/sync/start?reason=user
func (rr *Routes) start(w http.ResponseWriter, r *http.Request) {
	reason, ok := reasonParam(w, r, pkgsync.ReasonUser)
	if !ok {
		return
	}

	if err := rr.service.Start(r.Context(), reason); err != nil {
		slog.Error("Failed to start sync", "reason", reason.String(), "error", err)
		common.WriteErrorResponse(w, "Failed to start sync", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, ActionResponse{Status: "started"}, http.StatusAccepted)
}

// stop handles POST /v1/sync/stop
func (rr *Routes) stop(w http.ResponseWriter, r *http.Request) {
	if err := rr.service.Stop(r.Context()); err != nil {
		slog.Error("Failed to stop sync", "error", err)
		common.WriteErrorResponse(w, "Failed to stop sync", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, ActionResponse{Status: "stopped"}, http.StatusOK)
}

// setEngines handles PUT /v1/sync/engines
func (rr *Routes) setEngines(w http.ResponseWriter, r *http.Request) {
	var req SetEnginesRequest
	if err := common.DecodeJSONBody(r, &req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	reason := pkgsync.ReasonEngineChange
	if req.Reason != "" {
		var err error
		if reason, err = pkgsync.ParseReason(req.Reason); err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	engines := make([]pkgsync.Engine, 0, len(req.Engines))
	for _, name := range req.Engines {
		e, err := pkgsync.ParseEngine(name)
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		engines = append(engines, e)
	}

	err := rr.service.SetEngines(r.Context(), engines, reason)
	switch {
	case errors.Is(err, service.ErrNoEngines), errors.Is(err, service.ErrNoStore):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		slog.Error("Failed to update sync engines", "engines", req.Engines, "error", err)
		common.WriteErrorResponse(w, "Failed to update sync engines", http.StatusInternalServerError)
	default:
		common.WriteJSONResponse(w, ActionResponse{Status: "updated"}, http.StatusOK)
	}
}

// reasonParam reads the reason query parameter. On failure it writes a 400 response.
func reasonParam(w http.ResponseWriter, r *http.Request, def pkgsync.Reason) (pkgsync.Reason, bool) {
	raw := r.URL.Query().Get("reason")
	if raw == "" {
		return def, true
	}
	reason, err := pkgsync.ParseReason(raw)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return reason, true
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(svc service.SyncService) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(svc))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

func readinessHandler(svc service.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CheckReadiness(r.Context()); err != nil {
			common.WriteErrorResponse(w, "SyncService not ready: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
