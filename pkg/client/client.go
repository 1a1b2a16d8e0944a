// Package client is the Go client for a running SubnetScope server. It
// wraps the HTTP API with typed results and bounded retries.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/subnetscope/subnetscope/pkg/models"
)

const (
	defaultRetries    = 3
	defaultRetryDelay = 2 * time.Second
	defaultTimeout    = 30 * time.Second
)

// APIError is a non-2xx response from the server, carrying the decoded
// error body when one was present. RetryAfter holds the Retry-After header
// in seconds, 0 when the server sent none.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// Client talks to a SubnetScope server.
type Client struct {
	baseURL    string
	httpc      *http.Client
	retries    int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithRetries sets the maximum number of attempts per request.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// WithRetryDelay sets the base delay between attempts. The effective wait
// grows linearly with the attempt number.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

// New creates a Client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpc:      &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot fetches the participant snapshot for one subnet.
func (c *Client) Snapshot(ctx context.Context, netuid int) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/subnet/%d", netuid), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Analysis fetches the concentration report for one subnet. The server
// requires the snapshot to be cached first; a fresh Snapshot call
// satisfies that.
func (c *Client) Analysis(ctx context.Context, netuid int) (*models.AnalysisReport, error) {
	var report models.AnalysisReport
	if err := c.getJSON(ctx, fmt.Sprintf("/api/v1/analyze/%d", netuid), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Health reports the server's health document.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var health map[string]any
	if err := c.getJSON(ctx, "/api/v1/health", &health); err != nil {
		return nil, err
	}
	return health, nil
}

// ClearCache drops the server's snapshot and analysis caches.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/cache/clear", nil)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, out)
}

// do issues the request with bounded retries. Every failure, transient or
// not, gets the full attempt budget; the last error is surfaced when the
// bound is exhausted.
func (c *Client) do(ctx context.Context, method, path string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, lastErr, attempt-1); err != nil {
				return err
			}
		}

		err := c.once(ctx, method, path, out)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// wait sleeps before the next attempt. Ordinary failures wait the fixed
// base delay; a rate-limited attempt honors Retry-After when present and
// backs off linearly otherwise.
func (c *Client) wait(ctx context.Context, lastErr error, attempt int) error {
	delay := c.retryDelay

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		if apiErr.RetryAfter > 0 {
			delay = time.Duration(apiErr.RetryAfter) * time.Second
		} else {
			delay = c.retryDelay * time.Duration(attempt)
		}
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) once(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// newAPIError decodes the server's {error, details} body when present.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			apiErr.RetryAfter = secs
		}
	}
	return apiErr
}
