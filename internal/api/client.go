// Package api is the typed client for the inkwell REST API: posts, comments
// and profile operations, JSON over HTTP under /api/v1.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
)

// HeaderSource supplies the headers that prove who is calling. The session
// store satisfies this; tests substitute a fixed header set.
type HeaderSource interface {
	AuthHeaders() http.Header
}

// APIError is a non-2xx response from the API, carrying the server's
// message when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// Client calls the inkwell API. Methods that mutate state attach the header
// source's credentials; public reads go out bare, matching what the server
// requires.
type Client struct {
	baseURL string
	client  *http.Client
	headers HeaderSource
	logger  *slog.Logger
}

// NewClient creates an API client rooted at baseURL. httpClient may be nil
// to use http.DefaultClient; headers may be nil for anonymous-only use.
func NewClient(baseURL string, httpClient *http.Client, headers HeaderSource, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  httpClient,
		headers: headers,
		logger:  logger,
	}
}

// doJSON performs a JSON request. body may be nil; out may be nil when the
// caller does not care about the response payload. authed attaches the
// header source's credentials.
func (c *Client) doJSON(ctx context.Context, method, path string, authed bool, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if authed && c.headers != nil {
		for key, values := range c.headers.AuthHeaders() {
			for _, v := range values {
				req.Header.Set(key, v)
			}
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// doMultipart performs a multipart form request with the given text fields
// and an optional file part. Only the Authorization header is carried over
// from the header source; the content type belongs to the form writer.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields map[string]string, fileField, fileName string, file []byte, out any) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			return fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	if len(file) > 0 {
		part, err := form.CreateFormFile(fileField, fileName)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(file); err != nil {
			return fmt.Errorf("write form file: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.headers != nil {
		if auth := c.headers.AuthHeaders().Get("Authorization"); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: serverMessage(respBody)}
		c.logger.Debug("api call rejected",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
