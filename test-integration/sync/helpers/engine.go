package helpers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/goccy/go-json"
)

// EngineRequest is the body the sync service posts to the engine
type EngineRequest struct {
	Reason         string            `json:"reason"`
	Engines        []string          `json:"engines"`
	EnabledChanges map[string]bool   `json:"enabledChanges"`
	PersistedState string            `json:"persistedState"`
	Bindings       map[string]string `json:"bindings"`
	AuthInfo       struct {
		Kid string `json:"kid"`
	} `json:"authInfo"`
}

// EngineResponse is what the fake engine answers with
type EngineResponse struct {
	// StatusCode other than 200 sends no body
	StatusCode int
	Body       map[string]any
}

// FakeEngine is an in-process sync engine that records requests and replays scripted responses
type FakeEngine struct {
	*httptest.Server

	mu        sync.Mutex
	requests  []EngineRequest
	responses []EngineResponse
	fallback  EngineResponse
}

// NewFakeEngine starts a fake engine that answers every request with an OK result
// carrying persistedState
func NewFakeEngine(persistedState string) *FakeEngine {
	e := &FakeEngine{
		fallback: OKResponse(persistedState),
	}
	e.Server = httptest.NewServer(http.HandlerFunc(e.handle))
	return e
}

// OKResponse is a successful sync pass result
func OKResponse(persistedState string) EngineResponse {
	return EngineResponse{
		StatusCode: http.StatusOK,
		Body: map[string]any{
			"status":         "ok",
			"successful":     []string{"history"},
			"failures":       map[string]string{},
			"persistedState": persistedState,
		},
	}
}

// Enqueue scripts the next responses. Once they run out the fallback is used.
func (e *FakeEngine) Enqueue(responses ...EngineResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.responses = append(e.responses, responses...)
}

// Requests returns a copy of the requests received so far
func (e *FakeEngine) Requests() []EngineRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]EngineRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *FakeEngine) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/sync" {
		http.NotFound(w, r)
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req EngineRequest
	if err := json.Unmarshal(data, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e.mu.Lock()
	e.requests = append(e.requests, req)
	resp := e.fallback
	if len(e.responses) > 0 {
		resp = e.responses[0]
		e.responses = e.responses[1:]
	}
	e.mu.Unlock()

	if resp.StatusCode != http.StatusOK {
		w.WriteHeader(resp.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp.Body)
}
