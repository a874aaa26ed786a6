// Package trending wraps the crawler with the read-before-fetch /
// write-after-fetch snapshot policy.
package trending

import (
	"context"
	"errors"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
)

// DefaultMaxPages is the page budget used when the caller does not set one.
const DefaultMaxPages = 10

// Options configure one top-bots fetch.
type Options struct {
	Mode     mode.Mode
	MaxPages int
	UseCache bool
}

// Service is the read-through cache over the trending crawler.
type Service struct {
	crawler    Crawler
	snaps      Snapshots
	cacheTotal *prometheus.CounterVec
	maxPages   int
	logger     *zap.Logger
}

// New creates the cache-managing trending service. cacheTotal is a counter
// vec with labels (mode, result) and may be nil.
func New(crawler Crawler, snaps Snapshots, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		crawler:    crawler,
		snaps:      snaps,
		cacheTotal: cacheTotal,
		maxPages:   DefaultMaxPages,
		logger:     logger,
	}
}

// WithDefaultMaxPages overrides the page budget used when a fetch does not
// set one.
func (s *Service) WithDefaultMaxPages(n int) *Service {
	if n > 0 {
		s.maxPages = n
	}
	return s
}

// TopBots returns the ranked trending records keyed by character_id. With
// UseCache set, a valid snapshot short-circuits the remote crawl entirely;
// a missing or corrupt snapshot falls through to a live crawl, whose result
// is written back best-effort.
func (s *Service) TopBots(ctx context.Context, opts Options) map[string]bot.Bot {
	if !opts.Mode.IsValid() {
		opts.Mode = mode.Filtered
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = s.maxPages
	}

	if opts.UseCache {
		if records, err := s.snaps.Read(opts.Mode); err == nil {
			s.incCache(opts.Mode, "hit")
			s.logger.Info("Loaded bots from cache",
				zap.String("mode", opts.Mode.String()),
				zap.Int("records", len(records)))
			return bot.ByID(records)
		} else if errors.Is(err, os.ErrNotExist) {
			s.incCache(opts.Mode, "miss")
		} else {
			s.incCache(opts.Mode, "invalid")
			s.logger.Warn("Failed reading cached results, falling back to live fetch",
				zap.String("mode", opts.Mode.String()), zap.Error(err))
		}
	}

	s.logger.Info("Fetching fresh top bots",
		zap.String("mode", opts.Mode.String()),
		zap.Int("max_pages", opts.MaxPages))
	records := s.crawler.Crawl(ctx, opts.Mode, opts.MaxPages)

	if len(records) > 0 {
		if err := s.snaps.Write(opts.Mode, records); err != nil {
			// Non-fatal: the freshly fetched data is still returned.
			s.logger.Warn("Failed writing snapshot",
				zap.String("mode", opts.Mode.String()), zap.Error(err))
		} else {
			s.logger.Info("Saved bots to cache",
				zap.String("mode", opts.Mode.String()),
				zap.Int("records", len(records)))
		}
	}

	return bot.ByID(records)
}

func (s *Service) incCache(m mode.Mode, result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(m.String(), result).Inc()
	}
}
