// Package api is the typed client for the contest backend. It covers every
// endpoint the pages use: the problem set, the contestant and admin gates,
// and the contest timer controls. The client never retries; callers poll
// anyway, so a failed request is simply reported and the next poll takes
// over.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// AdminTokenHeader authenticates admin requests. The server compares it
// against the admin password directly.
const AdminTokenHeader = "X-Admin-Token"

// Error is a non-2xx response from the backend, carrying the server's own
// message when the body had one.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

// Unauthorized reports whether the server rejected the admin token.
func (e *Error) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// ActionResult is the body every successful admin mutation returns.
type ActionResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client talks to one backend instance. It is safe for concurrent use; the
// watcher polls through it while admin actions run on other goroutines.
type Client struct {
	baseURL string
	client  *http.Client

	mu      sync.RWMutex
	headers map[string]string
}

// NewClient builds a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// SetTimeout adjusts the per-request timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetHeader attaches a header to every subsequent request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers[key] = value
}

// SetAdminToken attaches the admin token to every subsequent request.
func (c *Client) SetAdminToken(token string) {
	c.SetHeader(AdminTokenHeader, token)
}

// ClearAdminToken drops the admin token, returning the client to
// contestant-level access.
func (c *Client) ClearAdminToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.headers, AdminTokenHeader)
}

// AdminToken returns the token currently attached, if any.
func (c *Client) AdminToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	token, ok := c.headers[AdminTokenHeader]
	return token, ok
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) put(ctx context.Context, endpoint string, body, out any) error {
	return c.do(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) delete(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodDelete, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.RLock()
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	c.mu.RUnlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, responseBody)
	}

	if out != nil {
		if err := json.Unmarshal(responseBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(responseBody))
		}
	}
	return nil
}

// newError extracts the server's {"error": ...} message, falling back to
// the raw body for non-JSON responses (proxies, crashed workers).
func newError(statusCode int, body []byte) *Error {
	var payload struct {
		Error string `json:"error"`
	}
	message := strings.TrimSpace(string(body))
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}
	return &Error{StatusCode: statusCode, Message: message}
}
