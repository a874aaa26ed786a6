package charwatch

import (
	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
)

// Mode selects which filter clause and cache file a trending fetch uses.
type Mode string

// Filter modes.
const (
	// ModeFiltered restricts the crawl to the Female+NSFW subset.
	ModeFiltered Mode = "filtered"
	// ModeUnfiltered covers the broader STANDARD subset.
	ModeUnfiltered Mode = "unfiltered"
)

// RatingFormatter converts a raw rating score into a display percentage.
// A nil score means the rating is unknown.
type RatingFormatter func(score *float64) string

// Bot is one ranked trending record. Rank is the 1-based position within
// the crawl that produced the record, not a stable document attribute.
type Bot struct {
	CharacterID     string   `json:"character_id"`
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	NumMessages     int64    `json:"num_messages"`
	NumMessages24h  int64    `json:"num_messages_24h"`
	AvatarURL       string   `json:"avatar_url"`
	CreatorUsername string   `json:"creator_username"`
	CreatorUserID   string   `json:"creator_user_id"`
	Tags            []string `json:"tags"`
	IsNSFW          bool     `json:"is_nsfw"`
	Link            string   `json:"link"`
	Page            int      `json:"page"`
	Rank            int      `json:"rank"`
	RatingScore     *float64 `json:"rating_score"`
	RatingPct       string   `json:"rating_pct"`
}

// TopBotsOptions configure one trending fetch.
type TopBotsOptions struct {
	// Mode defaults to ModeFiltered.
	Mode Mode
	// MaxPages defaults to 10.
	MaxPages int
	// UseCache opts into the snapshot read-through.
	UseCache bool
}

func toInternalMode(m Mode) mode.Mode {
	if m == ModeUnfiltered {
		return mode.Unfiltered
	}
	return mode.Filtered
}

func fromInternalBot(b bot.Bot) Bot {
	return Bot{
		CharacterID:     b.CharacterID,
		Name:            b.Name,
		Title:           b.Title,
		NumMessages:     b.NumMessages,
		NumMessages24h:  b.NumMessages24h,
		AvatarURL:       b.AvatarURL,
		CreatorUsername: b.CreatorUsername,
		CreatorUserID:   b.CreatorUserID,
		Tags:            b.Tags,
		IsNSFW:          b.IsNSFW,
		Link:            b.Link,
		Page:            b.Page,
		Rank:            b.Rank,
		RatingScore:     b.RatingScore,
		RatingPct:       b.RatingPct,
	}
}

func fromInternalBotMap(in map[string]bot.Bot) map[string]Bot {
	out := make(map[string]Bot, len(in))
	for id, b := range in {
		out[id] = fromInternalBot(b)
	}
	return out
}
