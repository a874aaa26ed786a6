package charwatch

import (
	"net/http"

	"go.uber.org/zap"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	endpoint          string
	apiKey            string
	httpClient        *http.Client
	logger            *zap.Logger
	primaryCollection string
	createdAtPriority []string
	filteredCache     string
	unfilteredCache   string
	ratingPct         RatingFormatter
}

// WithEndpoint sets the multi-search endpoint URL. Required.
func WithEndpoint(url string) Option {
	return func(c *clientConfig) {
		c.endpoint = url
	}
}

// WithAPIKey sets the static public API key sent on every call. Required.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.apiKey = key
	}
}

// WithHTTPClient overrides the default HTTP client (custom transports,
// tests). The default carries the fixed 25s request timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger. Defaults to zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithCollections overrides the primary collection queried for trending and
// tag/rating lookups.
func WithCollections(primary string) Option {
	return func(c *clientConfig) {
		c.primaryCollection = primary
	}
}

// WithCreatedAtPriority overrides the ordered collection list consulted for
// created_at lookups; earlier entries win.
func WithCreatedAtPriority(collections ...string) Option {
	return func(c *clientConfig) {
		c.createdAtPriority = collections
	}
}

// WithCachePaths sets the two snapshot file paths, one per filter mode.
func WithCachePaths(filtered, unfiltered string) Option {
	return func(c *clientConfig) {
		c.filteredCache = filtered
		c.unfilteredCache = unfiltered
	}
}

// WithRatingFormatter overrides how a raw rating score becomes a display
// percentage on Bot records.
func WithRatingFormatter(f RatingFormatter) Option {
	return func(c *clientConfig) {
		c.ratingPct = f
	}
}
