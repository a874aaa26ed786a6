// Package charwatch is a client for the hosted character search index:
// it crawls the trending ranking, batch-resolves tags, ratings and
// creation timestamps, and keeps per-mode snapshot files so repeated
// fetches can skip the network.
package charwatch

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/bot"
	lookuprepo "github.com/charwatch/charwatch/internal/repository/lookup"
	"github.com/charwatch/charwatch/internal/repository/snapshot"
	trendingrepo "github.com/charwatch/charwatch/internal/repository/trending"
	"github.com/charwatch/charwatch/internal/transport/typesense"
	tagmapuc "github.com/charwatch/charwatch/internal/usecase/tagmap"
	trendinguc "github.com/charwatch/charwatch/internal/usecase/trending"
)

// Defaults used when the corresponding Option is not given.
const (
	DefaultPrimaryCollection = "public_characters_alias"
)

// Client is the charwatch SDK entry point.
type Client struct {
	lookup      *lookuprepo.Repo
	trendingSvc *trendinguc.Service
	tagmapSvc   *tagmapuc.Service
	createdAt   []string
}

// New creates a charwatch Client. WithEndpoint and WithAPIKey are required;
// everything else has working defaults.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		primaryCollection: DefaultPrimaryCollection,
		createdAtPriority: []string{"public_characters", "public_characters_alias"},
		filteredCache:     filepath.Join("data", "trending_filtered.json"),
		unfilteredCache:   filepath.Join("data", "trending_unfiltered.json"),
		ratingPct:         RatingFormatter(bot.DefaultRatingPct),
	}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.endpoint == "" {
		return nil, errors.New("charwatch: endpoint required (use WithEndpoint)")
	}
	if cfg.apiKey == "" {
		return nil, errors.New("charwatch: api key required (use WithAPIKey)")
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	return wireClient(cfg), nil
}

func wireClient(cfg *clientConfig) *Client {
	ts := typesense.New(typesense.Config{
		Endpoint:   cfg.endpoint,
		APIKey:     cfg.apiKey,
		HTTPClient: cfg.httpClient,
		Logger:     cfg.logger,
	})

	lookup := lookuprepo.New(ts, cfg.primaryCollection, cfg.logger)
	crawler := trendingrepo.New(ts, cfg.primaryCollection, bot.RatingFormatter(cfg.ratingPct), cfg.logger)
	snaps := snapshot.New(cfg.filteredCache, cfg.unfilteredCache, cfg.logger)

	trendingSvc := trendinguc.New(crawler, snaps, nil, cfg.logger)
	tagmapSvc := tagmapuc.New(trendingSvc, cfg.logger)

	return &Client{
		lookup:      lookup,
		trendingSvc: trendingSvc,
		tagmapSvc:   tagmapSvc,
		createdAt:   cfg.createdAtPriority,
	}
}

// TopBots returns the current trending ranking keyed by character_id.
// It never fails: remote trouble surfaces as a smaller (possibly empty) map.
func (c *Client) TopBots(ctx context.Context, opts TopBotsOptions) map[string]Bot {
	records := c.trendingSvc.TopBots(ctx, trendinguc.Options{
		Mode:     toInternalMode(opts.Mode),
		MaxPages: opts.MaxPages,
		UseCache: opts.UseCache,
	})
	return fromInternalBotMap(records)
}

// TagsForBots resolves tag lists for the given character IDs. Every ID the
// index knows gets an entry; a resolved ID with no tags maps to an empty
// slice, and unknown IDs are simply absent.
func (c *Client) TagsForBots(ctx context.Context, ids []string) map[string][]string {
	return c.lookup.Tags(ctx, ids)
}

// RatingsForBots resolves rating scores for the given character IDs. A
// resolved ID whose rating is absent or non-numeric maps to a nil score.
func (c *Client) RatingsForBots(ctx context.Context, ids []string) map[string]*float64 {
	return c.lookup.Ratings(ctx, ids)
}

// CreatedAtForBots resolves creation timestamps for the given character IDs,
// consulting the configured collections in priority order. Values are
// returned as the index stores them (typically epoch seconds).
func (c *Client) CreatedAtForBots(ctx context.Context, ids []string) map[string]any {
	return c.lookup.CreatedAt(ctx, ids, c.createdAt)
}

// TagMap returns character_id → tags derived from the unfiltered trending
// snapshot, fetching live once if the cached snapshot is empty.
func (c *Client) TagMap(ctx context.Context) map[string][]string {
	return c.tagmapSvc.TagMap(ctx)
}
