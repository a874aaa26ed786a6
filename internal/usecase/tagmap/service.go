// Package tagmap derives the ID → tag list lookup from the unfiltered
// trending snapshot.
package tagmap

import (
	"context"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/mode"
	trendinguc "github.com/charwatch/charwatch/internal/usecase/trending"
)

// defaultMaxPages is the page ceiling for the snapshot backing the tag map.
const defaultMaxPages = 10

// Service builds tag maps.
type Service struct {
	trending TrendingFetcher
	maxPages int
	logger   *zap.Logger
}

// New creates a tag map service.
func New(trending TrendingFetcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{trending: trending, maxPages: defaultMaxPages, logger: logger}
}

// WithMaxPages overrides the page ceiling for the backing fetch.
func (s *Service) WithMaxPages(n int) *Service {
	if n > 0 {
		s.maxPages = n
	}
	return s
}

// TagMap returns ID → tags from the unfiltered snapshot, cache-preferring.
// An empty result escalates to exactly one forced-live fetch before giving
// up. Records without tags contribute no entry.
func (s *Service) TagMap(ctx context.Context) map[string][]string {
	records := s.trending.TopBots(ctx, trendinguc.Options{
		Mode:     mode.Unfiltered,
		MaxPages: s.maxPages,
		UseCache: true,
	})
	if len(records) == 0 {
		s.logger.Info("Unfiltered cache empty, fetching live once to build tag map")
		records = s.trending.TopBots(ctx, trendinguc.Options{
			Mode:     mode.Unfiltered,
			MaxPages: s.maxPages,
			UseCache: false,
		})
	}

	out := make(map[string][]string, len(records))
	for cid, b := range records {
		if len(b.Tags) > 0 {
			out[cid] = b.Tags
		}
	}

	s.logger.Info("Built tag map", zap.Int("bots", len(out)))
	return out
}
