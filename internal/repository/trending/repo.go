// Package trending crawls the ranked trending list page by page.
package trending

import (
	"context"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
	"github.com/charwatch/charwatch/internal/domain/search"
	"github.com/charwatch/charwatch/internal/metrics"
)

// PerPage is the fixed page size of the trending crawl. A page shorter than
// this is the last one.
const PerPage = 48

const (
	sortBy  = "num_messages_24h:desc"
	queryBy = "name,title,tags,creator_username,character_id,type"

	includeFields = "name,title,tags,creator_username,character_id," +
		"avatar_is_nsfw,avatar_url,visibility,definition_visible," +
		"num_messages,token_count,rating_score,lora_status," +
		"creator_user_id,is_nsfw,type,sub_characters_count," +
		"group_size_category,num_messages_24h"

	facetBy        = "definition_size_category,group_size_category,tags,translated_languages"
	maxFacetValues = 100
)

// baseFilter excludes the creator denylist and the excluded tag; both crawl
// modes build on it.
const baseFilter = "application_ids:spicychat && tags:![Step-Family] && " +
	"creator_user_id:!['kp:018d4672679e4c0d920ad8349061270c'," +
	"'kp:2f4c9fcbdb0641f3a4b960bfeaf1ea0b'] " +
	"&& type:STANDARD"

const filteredExtra = ` && tags:["Female"] && tags:["NSFW"]`

// FilterClause returns the fixed filter expression for a crawl mode.
func FilterClause(m mode.Mode) string {
	if m == mode.Filtered {
		return baseFilter + filteredExtra
	}
	return baseFilter
}

// searcher is the consumer interface for the multi-search transport.
type searcher interface {
	Search(ctx context.Context, op string, s search.Search) search.Response
}

// Repo crawls trending pages.
type Repo struct {
	ts         searcher
	collection string
	ratingPct  bot.RatingFormatter
	logger     *zap.Logger
}

// New creates a trending crawler against the given collection.
func New(ts searcher, collection string, ratingPct bot.RatingFormatter, logger *zap.Logger) *Repo {
	if ratingPct == nil {
		ratingPct = bot.DefaultRatingPct
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{ts: ts, collection: collection, ratingPct: ratingPct, logger: logger}
}

// Crawl accumulates ranked records until the end of results, a short page,
// or the page budget. Rank is assigned exactly once, when a hit is accepted;
// hits without a usable ID are skipped and do not consume a rank.
func (r *Repo) Crawl(ctx context.Context, m mode.Mode, maxPages int) []bot.Bot {
	var all []bot.Bot
	filter := FilterClause(m)

	for page := 1; page <= maxPages; page++ {
		resp := r.ts.Search(ctx, "trending", search.Search{
			Collection:      r.collection,
			Query:           "*",
			QueryBy:         queryBy,
			FilterBy:        filter,
			IncludeFields:   includeFields,
			Page:            page,
			PerPage:         PerPage,
			SortBy:          sortBy,
			FacetBy:         facetBy,
			MaxFacetValues:  maxFacetValues,
			HighlightFields: "none",
			UseCache:        true,
		})

		hits := resp.FirstHits()
		if len(hits) == 0 {
			break
		}
		metrics.CrawlPagesTotal.WithLabelValues(m.String()).Inc()
		r.logger.Info("Fetched trending page",
			zap.String("mode", m.String()),
			zap.Int("page", page),
			zap.Int("hits", len(hits)))

		for _, h := range hits {
			b, ok := bot.FromDocument(h.Document(), page, len(all)+1, r.ratingPct)
			if !ok {
				continue
			}
			all = append(all, b)
		}

		if len(hits) < PerPage {
			break
		}
	}

	return all
}
