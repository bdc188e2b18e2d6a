package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// newTestTracerProvider creates a tracer provider with in-memory exporter for testing.
func newTestTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter, tp
}

// newTestRouter wires the control API shape used by the sync service
func newTestRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/v1/sync/status", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Post("/v1/sync/now", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	r.Post("/v1/sync/start", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	return r
}

func TestNewHTTPMetrics(t *testing.T) {
	t.Parallel()

	metrics, err := NewHTTPMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	mp := sdkmetric.NewMeterProvider()
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err = NewHTTPMetrics(mp)
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.NotNil(t, metrics.requestDuration)
	assert.NotNil(t, metrics.requestsTotal)
	assert.NotNil(t, metrics.activeRequests)
}

func TestHTTPMetrics_Middleware(t *testing.T) {
	t.Parallel()

	t.Run("passes through when metrics is nil", func(t *testing.T) {
		t.Parallel()

		mw, err := MetricsMiddleware(nil)
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		newTestRouter(mw).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sync/now", nil))
		assert.Equal(t, http.StatusAccepted, rr.Code)
	})

	t.Run("records requests by route pattern", func(t *testing.T) {
		t.Parallel()

		reader := sdkmetric.NewManualReader()
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		defer func() { _ = mp.Shutdown(context.Background()) }()

		mw, err := MetricsMiddleware(mp)
		require.NoError(t, err)
		router := newTestRouter(mw)

		for range 3 {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil))
			require.Equal(t, http.StatusOK, rr.Code)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sync/now", nil))
		require.Equal(t, http.StatusAccepted, rr.Code)

		found := collectScope(t, reader, HTTPMetricsMeterName)
		_, ok := found["thv_sync_http_request_duration_seconds"]
		assert.True(t, ok, "expected duration histogram")
		_, ok = found["thv_sync_http_active_requests"]
		assert.True(t, ok, "expected active requests counter")

		total, ok := found["thv_sync_http_requests_total"]
		require.True(t, ok, "expected request counter")

		sum, ok := total.Data.(metricdata.Sum[int64])
		require.True(t, ok)

		counts := map[string]int64{}
		for _, dp := range sum.DataPoints {
			route, _ := dp.Attributes.Value("route")
			counts[route.AsString()] += dp.Value
		}
		assert.Equal(t, map[string]int64{"/v1/sync/status": 3, "/v1/sync/now": 1}, counts)
	})
}

func TestTracingMiddleware_NilProvider(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newTestRouter(TracingMiddleware(nil)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/sync/now", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestTracingMiddleware_Spans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		method       string
		path         string
		expectedName string
		expectedCode codes.Code
		expectedHTTP int
	}{
		{
			name:         "status read",
			method:       http.MethodGet,
			path:         "/v1/sync/status",
			expectedName: "GET /v1/sync/status",
			expectedCode: codes.Ok,
			expectedHTTP: http.StatusOK,
		},
		{
			name:         "server error marks span failed",
			method:       http.MethodPost,
			path:         "/v1/sync/start",
			expectedName: "POST /v1/sync/start",
			expectedCode: codes.Error,
			expectedHTTP: http.StatusInternalServerError,
		},
		{
			name:         "unmatched route uses a constant name",
			method:       http.MethodGet,
			path:         "/v1/unknown/abc123",
			expectedName: "GET " + unknownRoute,
			expectedCode: codes.Error,
			expectedHTTP: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			exporter, tp := newTestTracerProvider(t)
			router := newTestRouter(TracingMiddleware(tp))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("User-Agent", strings.Repeat("a", MaxUserAgentLength+10))
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			require.Equal(t, tt.expectedHTTP, rr.Code)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			span := spans[0]
			assert.Equal(t, tt.expectedName, span.Name)
			assert.Equal(t, tt.expectedCode, span.Status.Code)
			assert.Equal(t, trace.SpanKindServer, span.SpanKind)

			attrs := map[string]any{}
			for _, attr := range span.Attributes {
				attrs[string(attr.Key)] = attr.Value.AsInterface()
			}
			assert.Equal(t, int64(tt.expectedHTTP), attrs[string(semconv.HTTPResponseStatusCodeKey)])
			assert.Len(t, attrs[string(semconv.UserAgentOriginalKey)], MaxUserAgentLength)
		})
	}
}

func TestTracingMiddleware_ContinuesIncomingTrace(t *testing.T) {
	t.Parallel()

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	exporter, tp := newTestTracerProvider(t)
	router := newTestRouter(TracingMiddleware(tp))

	traceID := "0af7651916cd43dd8448eb211c80319c"
	req := httptest.NewRequest(http.MethodGet, "/v1/sync/status", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-b7ad6b7169203331-01")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, traceID, spans[0].SpanContext.TraceID().String())
}

func TestTracingMiddleware_SkipsProbes(t *testing.T) {
	t.Parallel()

	exporter, tp := newTestTracerProvider(t)
	router := newTestRouter(TracingMiddleware(tp))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, exporter.GetSpans())
}
