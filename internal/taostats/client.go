// Package taostats implements the rate-limited client for the taostats
// registry API. One shared limiter paces every call the process makes,
// regardless of which subnet or caller triggered it; the registry enforces
// a small per-minute quota across the whole API key.
package taostats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/subnetscope/subnetscope/internal/metrics"
)

// UpstreamError carries a non-success registry response unchanged.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("taostats: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Config holds the client settings.
type Config struct {
	BaseURL     string
	APIKey      string
	MinInterval time.Duration
}

// Client is a taostats API client. All calls wait on one process-wide
// limiter so no two requests are issued less than MinInterval apart.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a Client. MinInterval zero disables pacing (useful in
// tests only; the registry will throttle a real deployment hard).
func NewClient(cfg Config, logger *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// SubnetInfo fetches the latest metadata row for one subnet. An empty data
// array yields a zero Subnet, matching the registry's behavior for unknown
// netuids.
func (c *Client) SubnetInfo(ctx context.Context, netuid int) (*Subnet, error) {
	query := url.Values{"netuid": {strconv.Itoa(netuid)}}
	body, err := c.get(ctx, "/subnet/latest/v1", query)
	if err != nil {
		return nil, err
	}

	var env envelope[Subnet]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode subnet response: %w", err)
	}
	if len(env.Data) == 0 {
		return &Subnet{}, nil
	}
	return &env.Data[0], nil
}

// Metagraph fetches up to limit neurons of one subnet, in registry order.
func (c *Client) Metagraph(ctx context.Context, netuid, limit int) ([]Neuron, error) {
	query := url.Values{
		"netuid": {strconv.Itoa(netuid)},
		"limit":  {strconv.Itoa(limit)},
	}
	body, err := c.get(ctx, "/metagraph/latest/v1", query)
	if err != nil {
		return nil, err
	}

	var env envelope[Neuron]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode metagraph response: %w", err)
	}
	return env.Data, nil
}

// Probe issues a minimal subnet lookup and reports the response structure.
// Used by the test-connection endpoint.
func (c *Client) Probe(ctx context.Context, netuid int) (*ProbeResult, error) {
	query := url.Values{
		"netuid": {strconv.Itoa(netuid)},
		"limit":  {"1"},
	}
	body, err := c.get(ctx, "/subnet/latest/v1", query)
	if err != nil {
		return nil, err
	}

	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode probe response: %w", err)
	}
	return &ProbeResult{
		SubnetFound:   len(env.Data) > 0,
		HasPagination: env.Pagination != nil,
		HasData:       env.Data != nil,
		DataCount:     len(env.Data),
	}, nil
}

// get waits for the shared pacing slot, then issues one GET. Non-2xx
// responses become an *UpstreamError with the body intact; no retries.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("registry request", zap.String("path", path))
	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(path, "error").Inc()
		return nil, fmt.Errorf("registry request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(path, "error").Inc()
		return nil, fmt.Errorf("read registry response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	metrics.UpstreamRequests.WithLabelValues(path, "ok").Inc()
	return body, nil
}
