// Package typesense issues multi-search calls against the hosted index.
//
// The transport collapses every failure mode into an empty, well-formed
// response: callers never branch on transport errors, they only see zero
// hits. Failure visibility goes through logs and metrics instead.
package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/search"
	"github.com/charwatch/charwatch/internal/metrics"
)

const (
	// APIKeyHeader carries the static public API key on every call.
	APIKeyHeader = "X-TYPESENSE-API-KEY"

	defaultTimeout = 25 * time.Second
	maxAttempts    = 3
	flatBackoff    = 2 * time.Second
	snippetMax     = 500
)

// Config holds the transport settings.
type Config struct {
	Endpoint string
	APIKey   string

	// HTTPClient overrides the default client (tests, custom transports).
	HTTPClient *http.Client
	// Sleep overrides the backoff sleep (tests). Defaults to time.Sleep.
	Sleep  func(time.Duration)
	Logger *zap.Logger
}

// Client is the multi-search transport.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	sleep    func(time.Duration)
	logger   *zap.Logger
}

// New creates a transport for the given endpoint.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     httpClient,
		sleep:    sleep,
		logger:   logger,
	}
}

// Search posts one logical search and returns its response. The result is
// always usable: after the attempt budget is exhausted the empty response
// stands in for "zero hits". op labels logs and metrics per caller
// operation (trending, lookup_tags, ...).
func (c *Client) Search(ctx context.Context, op string, s search.Search) search.Response {
	rid := uuid.NewString()
	log := c.logger.With(zap.String("operation", op), zap.String("request_id", rid))

	body, err := json.Marshal(search.NewPayload(s))
	if err != nil {
		// Payload structs marshal unconditionally; guard anyway.
		log.Error("Failed to encode multi-search payload", zap.Error(err))
		metrics.SearchRequestsTotal.WithLabelValues(op, "error").Inc()
		return search.Empty()
	}

	start := time.Now()
	defer func() {
		metrics.SearchRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, ok := c.attempt(ctx, log, op, attempt, body)
		if ok {
			metrics.SearchRequestsTotal.WithLabelValues(op, "success").Inc()
			return resp
		}
	}

	log.Error("All multi-search attempts failed, returning empty result",
		zap.Int("attempts", maxAttempts))
	metrics.SearchRequestsTotal.WithLabelValues(op, "error").Inc()
	return search.Empty()
}

// attempt runs one HTTP round trip. On failure it classifies the cause,
// records the retry metric, waits the backoff, and reports ok=false.
func (c *Client) attempt(
	ctx context.Context, log *zap.Logger, op string, attempt int, body []byte,
) (search.Response, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		c.backoff(log, op, attempt, "bad_request", flatBackoff, zap.Error(err))
		return search.Response{}, false
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.backoff(log, op, attempt, "network_error", flatBackoff, zap.Error(err))
		return search.Response{}, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		delay := time.Duration(1<<attempt) * time.Second
		c.backoff(log, op, attempt, "rate_limited", delay,
			zap.Int("status", resp.StatusCode))
		return search.Response{}, false
	}
	if resp.StatusCode >= 400 {
		c.backoff(log, op, attempt, "http_error", flatBackoff,
			zap.Int("status", resp.StatusCode))
		return search.Response{}, false
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.backoff(log, op, attempt, "network_error", flatBackoff, zap.Error(err))
		return search.Response{}, false
	}

	parsed, err := search.Parse(data)
	if err != nil {
		c.backoff(log, op, attempt, "bad_body", flatBackoff,
			zap.Error(err), zap.String("body", snippet(data)))
		return search.Response{}, false
	}
	return parsed, true
}

func (c *Client) backoff(
	log *zap.Logger, op string, attempt int, reason string, delay time.Duration,
	fields ...zap.Field,
) {
	fields = append(fields,
		zap.Int("attempt", attempt),
		zap.String("reason", reason),
		zap.Duration("backoff", delay),
	)
	log.Warn("Multi-search attempt failed", fields...)
	metrics.SearchRetriesTotal.WithLabelValues(op, reason).Inc()
	c.sleep(delay)
}

// snippet caps a response body for logging.
func snippet(data []byte) string {
	if len(data) > snippetMax {
		return string(data[:snippetMax])
	}
	return string(data)
}
