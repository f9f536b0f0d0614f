// Package fetch provides Resource, an observable wrapper around a single
// JSON-over-HTTP request cycle. A Resource holds the last good payload plus
// loading/error flags, so callers can render state while a refresh is in
// flight instead of blanking out.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// StatusError is a response outside the 2xx range.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// State is a point-in-time snapshot of a Resource.
type State[T any] struct {
	Data    T
	Loading bool
	Err     error
}

// Resource tracks one logical remote value of type T. Create one per
// resource; a Resource is not meant to be shared across unrelated calls.
//
// Overlapping Fetch calls on the same Resource are allowed: each call gets a
// sequence number and only the newest call may write Data/Err, so a slow
// stale response never clobbers a fresher one. Every caller still receives
// its own call's result.
type Resource[T any] struct {
	client  *http.Client
	logger  *slog.Logger
	initial T

	mu      sync.Mutex
	data    T
	loading bool
	err     error
	seq     uint64
}

// NewResource creates a Resource whose Data starts (and resets) to initial.
// A nil client falls back to http.DefaultClient.
func NewResource[T any](client *http.Client, initial T) *Resource[T] {
	if client == nil {
		client = http.DefaultClient
	}
	return &Resource[T]{
		client:  client,
		logger:  slog.Default(),
		initial: initial,
		data:    initial,
	}
}

// State returns a snapshot of the current data and flags.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State[T]{Data: r.data, Loading: r.loading, Err: r.err}
}

// Reset returns the Resource to its initial state from any state.
func (r *Resource[T]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.data = r.initial
	r.loading = false
	r.err = nil
}

// Fetch issues the request and decodes a JSON body into T. Entering Fetch
// sets Loading and clears any prior error while keeping the previous Data
// visible. On success Data becomes the decoded payload; on failure Data is
// left untouched, Err is set, and the failure is also returned so call
// sites can react directly.
func (r *Resource[T]) Fetch(ctx context.Context, url string, opts ...RequestOption) (T, error) {
	var zero T

	r.mu.Lock()
	r.seq++
	mySeq := r.seq
	r.loading = true
	r.err = nil
	r.mu.Unlock()

	result, err := r.do(ctx, url, opts)

	r.mu.Lock()
	if mySeq == r.seq {
		r.loading = false
		if err != nil {
			r.err = err
		} else {
			r.data = result
		}
	}
	r.mu.Unlock()

	if err != nil {
		return zero, err
	}
	return result, nil
}

func (r *Resource[T]) do(ctx context.Context, url string, opts []RequestOption) (T, error) {
	var zero T

	cfg := requestConfig{method: http.MethodGet, headers: http.Header{}}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return zero, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, cfg.method, url, cfg.body)
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	for key, values := range cfg.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("fetch failed", "url", url, "request_id", requestID, "error", err)
		return zero, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		r.logger.Debug("fetch returned error status", "url", url, "request_id", requestID, "status", resp.StatusCode)
		return zero, &StatusError{StatusCode: resp.StatusCode}
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}

	r.logger.Debug("fetch succeeded", "url", url, "request_id", requestID, "status", resp.StatusCode)
	return result, nil
}

type requestConfig struct {
	method  string
	body    io.Reader
	headers http.Header
}

// RequestOption customizes a single Fetch call.
type RequestOption func(*requestConfig) error

// WithMethod overrides the default GET.
func WithMethod(method string) RequestOption {
	return func(cfg *requestConfig) error {
		cfg.method = method
		return nil
	}
}

// WithJSONBody marshals payload as the request body and sets the JSON
// content type.
func WithJSONBody(payload any) RequestOption {
	return func(cfg *requestConfig) error {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		cfg.body = bytes.NewReader(data)
		cfg.headers.Set("Content-Type", "application/json")
		return nil
	}
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(cfg *requestConfig) error {
		cfg.headers.Add(key, value)
		return nil
	}
}

// WithHeaders merges a header map into the request, later values on the
// same key replacing earlier ones.
func WithHeaders(h http.Header) RequestOption {
	return func(cfg *requestConfig) error {
		for key, values := range h {
			for _, v := range values {
				cfg.headers.Set(key, v)
			}
		}
		return nil
	}
}
