// Package bot defines the normalized public unit of output: one ranked
// character-bot record derived from a search document.
package bot

import (
	"fmt"
	"strings"

	"github.com/charwatch/charwatch/internal/domain/search"
)

// ChatLinkBase is the public chat URL prefix a record's link is derived from.
const ChatLinkBase = "https://spicychat.ai/chat/"

// Bot is one ranked trending record. Identity is CharacterID, which is
// always a non-empty trimmed string; records failing that are dropped before
// entering any result collection. Rank is the 1-based position within the
// crawl that produced the record, not a stable document attribute.
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

// RatingFormatter converts a raw rating score into a display percentage.
// A nil score means the rating is unknown, not zero.
type RatingFormatter func(score *float64) string

// DefaultRatingPct renders a 0..1 rating score as a percentage with one
// decimal, and the empty string for an unknown score.
func DefaultRatingPct(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *score*100)
}

// FromDocument builds a Bot from a search document. The boolean is false
// when the document lacks a usable character_id and must be skipped without
// consuming a rank.
func FromDocument(doc search.Document, page, rank int, ratingPct RatingFormatter) (Bot, bool) {
	cid := doc.ID()
	if cid == "" {
		return Bot{}, false
	}
	if ratingPct == nil {
		ratingPct = DefaultRatingPct
	}

	var score *float64
	if f, ok := doc.Float("rating_score"); ok {
		score = &f
	}

	tags := doc.Strings("tags")
	if tags == nil {
		// Snapshots serialize tags as an empty array, never null.
		tags = []string{}
	}

	return Bot{
		CharacterID:     cid,
		Name:            strings.TrimSpace(doc.Str("name")),
		Title:           doc.Str("title"),
		NumMessages:     doc.Int64("num_messages"),
		NumMessages24h:  doc.Int64("num_messages_24h"),
		AvatarURL:       doc.Str("avatar_url"),
		CreatorUsername: doc.Str("creator_username"),
		CreatorUserID:   doc.Str("creator_user_id"),
		Tags:            tags,
		IsNSFW:          doc.Bool("is_nsfw"),
		Link:            ChatLinkBase + cid,
		Page:            page,
		Rank:            rank,
		RatingScore:     score,
		RatingPct:       ratingPct(score),
	}, true
}

// ByID keys an ordered record sequence by CharacterID, last-wins on
// duplicates.
func ByID(records []Bot) map[string]Bot {
	out := make(map[string]Bot, len(records))
	for _, b := range records {
		out[b.CharacterID] = b
	}
	return out
}
