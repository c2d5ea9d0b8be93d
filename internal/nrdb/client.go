// Package nrdb is a rate-limited client for the NetrunnerDB public API.
package nrdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/NRDB-Companion/internal/cards"
	"github.com/ramonehamilton/NRDB-Companion/internal/metrics"
	"github.com/ramonehamilton/NRDB-Companion/internal/version"
)

const (
	// DefaultBaseURL is the NetrunnerDB public API root.
	DefaultBaseURL = "https://netrunnerdb.com/api/2.0/public"

	// DefaultRateLimit is the minimum delay between requests.
	DefaultRateLimit = 500 * time.Millisecond

	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client represents a NetrunnerDB API client with rate limiting.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	userAgent      string
	baseURL        string
	initialBackoff time.Duration
	metrics        *metrics.Collector
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithRateLimit sets the minimum delay between requests. Zero disables
// rate limiting.
func WithRateLimit(delay time.Duration) Option {
	return func(c *Client) {
		if delay <= 0 {
			c.rateLimiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.rateLimiter = rate.NewLimiter(rate.Every(delay), 1)
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBackoff sets the first retry delay; later retries double it.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.initialBackoff = d }
}

// WithMetrics records request counts and latency into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a new NetrunnerDB API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter:    rate.NewLimiter(rate.Every(DefaultRateLimit), 1),
		userAgent:      "NRDB-Companion/" + version.Version,
		baseURL:        DefaultBaseURL,
		initialBackoff: initialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Cards retrieves every card, keyed by code. Cards without a code are
// skipped.
func (c *Client) Cards(ctx context.Context) (map[string]cards.Card, error) {
	var resp response[apiCard]
	if err := c.get(ctx, "cards", &resp); err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}

	out := make(map[string]cards.Card, len(resp.Data))
	for _, card := range resp.Data {
		if card.Code == "" {
			continue
		}
		out[card.Code] = card.toCard(resp.ImageURLTemplate)
	}
	return out, nil
}

// Packs retrieves every pack.
func (c *Client) Packs(ctx context.Context) ([]cards.Pack, error) {
	var resp response[cards.Pack]
	if err := c.get(ctx, "packs", &resp); err != nil {
		return nil, fmt.Errorf("failed to get packs: %w", err)
	}
	return resp.Data, nil
}

// Cycles retrieves every cycle.
func (c *Client) Cycles(ctx context.Context) ([]cards.Cycle, error) {
	var resp response[cards.Cycle]
	if err := c.get(ctx, "cycles", &resp); err != nil {
		return nil, fmt.Errorf("failed to get cycles: %w", err)
	}
	return resp.Data, nil
}

// CycleNames retrieves a cycle code to name mapping.
func (c *Client) CycleNames(ctx context.Context) (map[string]string, error) {
	cycles, err := c.Cycles(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cycles))
	for _, cycle := range cycles {
		if cycle.Code != "" && cycle.Name != "" {
			names[cycle.Code] = cycle.Name
		}
	}
	return names, nil
}

// Decklist retrieves a published decklist by ID.
func (c *Client) Decklist(ctx context.Context, id string) (*cards.Decklist, error) {
	if err := ValidateDecklistID(id); err != nil {
		return nil, err
	}

	var resp response[cards.Decklist]
	if err := c.get(ctx, "decklist/"+id, &resp); err != nil {
		if IsNotFound(err) {
			return nil, &NotFoundError{Kind: "decklist", ID: id, URL: c.endpoint("decklist/" + id)}
		}
		return nil, fmt.Errorf("failed to get decklist %s: %w", id, err)
	}
	if len(resp.Data) == 0 {
		return nil, &NotFoundError{Kind: "decklist", ID: id, URL: c.endpoint("decklist/" + id)}
	}

	deck := resp.Data[0]
	if deck.ID == "" {
		deck.ID = id
	}
	return &deck, nil
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	if path == "" {
		return fmt.Errorf("%w: endpoint cannot be empty", ErrInvalidInput)
	}
	return c.doRequest(ctx, c.endpoint(path), result)
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	start := time.Now()
	err := c.doRequestWithRetry(ctx, url, result)
	c.metrics.RecordRequest(time.Since(start), err)
	return err
}

func (c *Client) doRequestWithRetry(ctx context.Context, url string, result any) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return &FetchError{URL: url, Message: "rate limiter", Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &FetchError{URL: url, Message: "failed to create request", Err: err}
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = &FetchError{URL: url, Err: err}
			if ctx.Err() != nil {
				return lastErr
			}
			if attempt < maxRetries {
				if err := sleep(ctx, backoff); err != nil {
					return lastErr
				}
				backoff = min(backoff*2, maxBackoff)
				c.metrics.IncrementRetries()
				continue
			}
			return lastErr
		}

		retry, wait, err := c.handleResponse(resp, url, result)
		if !retry {
			return err
		}

		lastErr = err
		if attempt < maxRetries {
			if wait <= 0 {
				wait = backoff
			}
			if err := sleep(ctx, wait); err != nil {
				return lastErr
			}
			backoff = min(backoff*2, maxBackoff)
			c.metrics.IncrementRetries()
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse decodes a response. retry is true for rate limiting and
// server errors; wait carries a Retry-After delay when the server sent one.
func (c *Client) handleResponse(resp *http.Response, url string, result any) (retry bool, wait time.Duration, err error) {
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, 0, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, 0, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "invalid JSON response", Err: err}
		}
		return false, 0, nil

	case resp.StatusCode == http.StatusNotFound:
		return false, 0, &NotFoundError{URL: url}

	case resp.StatusCode == http.StatusTooManyRequests:
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
		return true, wait, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: "rate limited"}

	case resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return true, 0, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, 0, &FetchError{URL: url, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
