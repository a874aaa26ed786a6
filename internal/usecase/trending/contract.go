package trending

import (
	"context"

	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
)

// Crawler produces the ordered ranked record sequence for a mode.
type Crawler interface {
	Crawl(ctx context.Context, m mode.Mode, maxPages int) []bot.Bot
}

// Snapshots reads and writes the per-mode cache files.
type Snapshots interface {
	Read(m mode.Mode) ([]bot.Bot, error)
	Write(m mode.Mode, records []bot.Bot) error
}
