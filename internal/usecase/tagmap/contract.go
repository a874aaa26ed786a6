package tagmap

import (
	"context"

	"github.com/charwatch/charwatch/internal/domain/bot"
	trendinguc "github.com/charwatch/charwatch/internal/usecase/trending"
)

// TrendingFetcher is the consumer interface for the cache-managed trending
// service.
type TrendingFetcher interface {
	TopBots(ctx context.Context, opts trendinguc.Options) map[string]bot.Bot
}
