package engine_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/toolhive-sync/internal/engine"
)

// newTestServer creates a new test server with keep-alives disabled so that
// closing it does not affect other parallel tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func testRequest() *engine.Request {
	return &engine.Request{
		Reason:  engine.ReasonUser,
		Engines: []string{"history"},
		AuthInfo: engine.AuthInfo{
			Kid:            "kid",
			FxaAccessToken: "token",
			SyncKey:        "key",
			TokenServerURL: "https://token.example.com",
		},
		PersistedState: "state-1",
		DeviceSettings: engine.DeviceSettings{FxaDeviceID: "device", Name: "laptop", Type: "desktop"},
	}
}

func TestHTTPEngine_SyncSuccess(t *testing.T) {
	t.Parallel()

	var received map[string]any
	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sync", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"successful": ["history"],
			"failures": {},
			"declined": ["tabs"],
			"persistedState": "state-2"
		}`))
	}))
	defer server.Close()

	e := engine.NewHTTPEngine(server.URL+"/", time.Second, engine.DefaultBreakerSettings())
	e.Bind(engine.BindPlaces, "places-handle")

	result, err := e.Sync(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, engine.StatusOK, result.Status)
	assert.Equal(t, []string{"history"}, result.Successful)
	assert.Equal(t, []string{"tabs"}, result.Declined)
	assert.Equal(t, "state-2", result.PersistedState)

	assert.Equal(t, "user", received["reason"])
	assert.Equal(t, "state-1", received["persistedState"])
	assert.Equal(t, map[string]any{"places": "places-handle"}, received["bindings"])
}

func TestHTTPEngine_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		expected   engine.ServiceStatus
	}{
		{name: "unauthorized is an auth error", statusCode: http.StatusUnauthorized, expected: engine.StatusAuthError},
		{name: "too many requests backs off", statusCode: http.StatusTooManyRequests, expected: engine.StatusBackedOff},
		{name: "service unavailable backs off", statusCode: http.StatusServiceUnavailable, expected: engine.StatusBackedOff},
		{name: "internal error is a service error", statusCode: http.StatusInternalServerError, expected: engine.StatusServiceError},
		{name: "bad request is another error", statusCode: http.StatusBadRequest, expected: engine.StatusOtherError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			e := engine.NewHTTPEngine(server.URL, time.Second, engine.DefaultBreakerSettings())
			result, err := e.Sync(context.Background(), testRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Status)
			assert.True(t, result.StateUnchanged, "an error reply without a body carries no state")
			assert.Empty(t, result.PersistedState)
		})
	}
}

func TestHTTPEngine_ErrorReplyState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		body          string
		wantUnchanged bool
		wantState     string
	}{
		{name: "plain text body", statusCode: http.StatusServiceUnavailable, body: "try later", wantUnchanged: true},
		{name: "json body without state", statusCode: http.StatusUnauthorized, body: `{"error":"expired"}`, wantUnchanged: true},
		{name: "json body with state", statusCode: http.StatusUnauthorized, body: `{"persistedState":"state-3"}`, wantState: "state-3"},
		{name: "json body clearing state", statusCode: http.StatusBadRequest, body: `{"persistedState":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			e := engine.NewHTTPEngine(server.URL, time.Second, engine.DefaultBreakerSettings())
			result, err := e.Sync(context.Background(), testRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.wantUnchanged, result.StateUnchanged)
			assert.Equal(t, tt.wantState, result.PersistedState)
		})
	}
}

func TestHTTPEngine_ServerErrorsTripBreaker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		statusCode int
		wantTrip   bool
	}{
		{name: "service unavailable", statusCode: http.StatusServiceUnavailable, wantTrip: true},
		{name: "internal error", statusCode: http.StatusInternalServerError, wantTrip: true},
		{name: "too many requests", statusCode: http.StatusTooManyRequests, wantTrip: true},
		{name: "unauthorized", statusCode: http.StatusUnauthorized, wantTrip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			settings := engine.DefaultBreakerSettings()
			settings.ConsecutiveFailures = 2
			settings.Timeout = time.Hour
			e := engine.NewHTTPEngine(server.URL, time.Second, settings)

			for range 2 {
				result, err := e.Sync(context.Background(), testRequest())
				require.NoError(t, err)
				assert.NotEqual(t, engine.StatusOK, result.Status)
			}

			_, err := e.Sync(context.Background(), testRequest())
			if tt.wantTrip {
				require.ErrorIs(t, err, engine.ErrTransport)
				assert.Equal(t, int32(2), calls.Load())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int32(3), calls.Load())
		})
	}
}

func TestHTTPEngine_TransportErrorTripsBreaker(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	endpoint := server.URL
	server.Close()

	settings := engine.DefaultBreakerSettings()
	settings.ConsecutiveFailures = 2
	settings.Timeout = time.Hour

	e := engine.NewHTTPEngine(endpoint, time.Second, settings)

	for range 2 {
		_, err := e.Sync(context.Background(), testRequest())
		require.ErrorIs(t, err, engine.ErrTransport)
	}

	// The breaker is open now and rejects without dialing
	_, err := e.Sync(context.Background(), testRequest())
	require.ErrorIs(t, err, engine.ErrTransport)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestHTTPEngine_InvalidResultBody(t *testing.T) {
	t.Parallel()

	server := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	e := engine.NewHTTPEngine(server.URL, time.Second, engine.DefaultBreakerSettings())
	_, err := e.Sync(context.Background(), testRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, engine.ErrTransport)
}
