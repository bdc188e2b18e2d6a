package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const (
	// syncPath is the engine endpoint that performs a sync pass
	syncPath = "/v1/sync"

	// defaultTimeout bounds a single sync pass request
	defaultTimeout = 5 * time.Minute

	// userAgent identifies this client to the engine
	userAgent = "toolhive-sync/1.0"
)

// BreakerSettings configures the circuit breaker in front of the engine
type BreakerSettings struct {
	// MaxRequests is the number of requests allowed while half-open
	MaxRequests uint32
	// Interval is the cyclic period of the closed state after which counts are cleared
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker once reached
	ConsecutiveFailures uint32
}

// DefaultBreakerSettings returns the settings used when none are configured
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             2 * time.Minute,
		ConsecutiveFailures: 5,
	}
}

// HTTPEngine talks to a sync engine running as a separate HTTP service
type HTTPEngine struct {
	endpoint string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker[*Result]

	mu       gosync.RWMutex
	bindings map[BindingKind]Handle
}

// HTTPOption configures an HTTPEngine
type HTTPOption func(*HTTPEngine)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(e *HTTPEngine) {
		e.client = client
	}
}

// wireRequest is the body posted to the engine
type wireRequest struct {
	*Request
	Bindings map[BindingKind]Handle `json:"bindings"`
}

// NewHTTPEngine creates an engine client for endpoint. A zero timeout uses the default.
func NewHTTPEngine(endpoint string, timeout time.Duration, breaker BreakerSettings, opts ...HTTPOption) *HTTPEngine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	e := &HTTPEngine{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
		bindings: make(map[BindingKind]Handle),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.cb = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        "sync-engine",
		MaxRequests: breaker.MaxRequests,
		Interval:    breaker.Interval,
		Timeout:     breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breaker.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Info("Sync engine circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	return e
}

// Bind associates a store handle with one of the engine's store slots.
// Bindings are sent along with every sync request.
func (e *HTTPEngine) Bind(kind BindingKind, handle Handle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[kind] = handle
}

// Sync posts the request to the engine. Failures to reach the engine, including an
// open circuit breaker, are returned wrapping ErrTransport. HTTP status codes that
// describe the outcome of the pass are mapped onto a Result; 429 and 5xx replies
// also count as breaker failures.
func (e *HTTPEngine) Sync(ctx context.Context, req *Request) (*Result, error) {
	e.mu.RLock()
	bindings := make(map[BindingKind]Handle, len(e.bindings))
	for k, v := range e.bindings {
		bindings[k] = v
	}
	e.mu.RUnlock()

	body, err := json.Marshal(wireRequest{Request: req, Bindings: bindings})
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync request: %w", err)
	}

	result, err := e.cb.Execute(func() (*Result, error) {
		return e.post(ctx, body)
	})
	if err != nil {
		var unhealthy *unhealthyReplyError
		if errors.As(err, &unhealthy) {
			return unhealthy.result, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return nil, err
	}
	return result, nil
}

// unhealthyReplyError carries the result of a reply that counts against the
// circuit breaker. Sync unwraps it so callers still see a plain Result.
type unhealthyReplyError struct {
	code   int
	result *Result
}

func (e *unhealthyReplyError) Error() string {
	return fmt.Sprintf("sync engine replied with status %d", e.code)
}

func (e *HTTPEngine) post(ctx context.Context, body []byte) (*Result, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+syncPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reach sync engine: %w", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read sync engine response: %w", ErrTransport, err)
	}

	if resp.StatusCode == http.StatusOK {
		var result Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("failed to decode sync result: %w", err)
		}
		return &result, nil
	}

	slog.Debug("Sync engine returned non-OK status", "status_code", resp.StatusCode)
	result := errorResult(resp.StatusCode, data)
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return nil, &unhealthyReplyError{code: resp.StatusCode, result: result}
	}
	return result, nil
}

// errorResult builds the result of a non-200 reply. The stored state is only
// replaced when the body carries a persistedState field.
func errorResult(code int, body []byte) *Result {
	result := &Result{Status: statusFromHTTP(code), StateUnchanged: true}

	var partial struct {
		PersistedState *string `json:"persistedState"`
	}
	if len(body) > 0 && json.Unmarshal(body, &partial) == nil && partial.PersistedState != nil {
		result.PersistedState = *partial.PersistedState
		result.StateUnchanged = false
	}
	return result
}

// statusFromHTTP maps a non-200 HTTP status code onto a ServiceStatus
func statusFromHTTP(code int) ServiceStatus {
	switch {
	case code == http.StatusUnauthorized:
		return StatusAuthError
	case code == http.StatusTooManyRequests, code == http.StatusServiceUnavailable:
		return StatusBackedOff
	case code >= http.StatusInternalServerError:
		return StatusServiceError
	default:
		return StatusOtherError
	}
}
