package bot

import (
	"testing"

	"github.com/charwatch/charwatch/internal/domain/search"
)

func TestFromDocument_Full(t *testing.T) {
	doc := search.NewDocument(map[string]any{
		"character_id":     " cid-1 ",
		"name":             "  Alice  ",
		"title":            "A bot",
		"num_messages":     float64(1000),
		"num_messages_24h": float64(50),
		"avatar_url":       "https://cdn.example/a.png",
		"creator_username": "maker",
		"creator_user_id":  "kp:123",
		"tags":             []any{"Female", "NSFW"},
		"is_nsfw":          true,
		"rating_score":     0.85,
	})

	b, ok := FromDocument(doc, 2, 49, DefaultRatingPct)
	if !ok {
		t.Fatal("expected document to be accepted")
	}
	if b.CharacterID != "cid-1" {
		t.Errorf("CharacterID: got %q", b.CharacterID)
	}
	if b.Name != "Alice" {
		t.Errorf("Name should be trimmed, got %q", b.Name)
	}
	if b.Page != 2 || b.Rank != 49 {
		t.Errorf("page/rank: got %d/%d", b.Page, b.Rank)
	}
	if b.Link != ChatLinkBase+"cid-1" {
		t.Errorf("Link: got %q", b.Link)
	}
	if b.RatingScore == nil || *b.RatingScore != 0.85 {
		t.Errorf("RatingScore: got %v", b.RatingScore)
	}
	if b.RatingPct != "85.0%" {
		t.Errorf("RatingPct: got %q", b.RatingPct)
	}
	if len(b.Tags) != 2 {
		t.Errorf("Tags: got %v", b.Tags)
	}
	if !b.IsNSFW {
		t.Error("IsNSFW: expected true")
	}
}

func TestFromDocument_MissingIDRejected(t *testing.T) {
	cases := []map[string]any{
		{},
		{"character_id": ""},
		{"character_id": "   "},
		{"name": "no id"},
	}
	for i, fields := range cases {
		if _, ok := FromDocument(search.NewDocument(fields), 1, 1, nil); ok {
			t.Errorf("case %d: expected rejection", i)
		}
	}
}

func TestFromDocument_Defaults(t *testing.T) {
	b, ok := FromDocument(search.NewDocument(map[string]any{"character_id": "x"}), 1, 1, nil)
	if !ok {
		t.Fatal("expected acceptance")
	}
	if b.Tags == nil || len(b.Tags) != 0 {
		t.Errorf("Tags should default to an empty slice, got %v", b.Tags)
	}
	if b.RatingScore != nil {
		t.Errorf("RatingScore should be nil when absent, got %v", b.RatingScore)
	}
	if b.RatingPct != "" {
		t.Errorf("RatingPct for unknown score should be empty, got %q", b.RatingPct)
	}
	if b.NumMessages != 0 || b.NumMessages24h != 0 {
		t.Error("message counts should default to zero")
	}
}

func TestDefaultRatingPct(t *testing.T) {
	if got := DefaultRatingPct(nil); got != "" {
		t.Errorf("nil score: got %q", got)
	}
	score := 0.5
	if got := DefaultRatingPct(&score); got != "50.0%" {
		t.Errorf("0.5: got %q", got)
	}
}

func TestByID_LastWins(t *testing.T) {
	records := []Bot{
		{CharacterID: "a", Rank: 1},
		{CharacterID: "b", Rank: 2},
		{CharacterID: "a", Rank: 3},
	}
	m := ByID(records)
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}
	if m["a"].Rank != 3 {
		t.Errorf("expected last record to win, got rank %d", m["a"].Rank)
	}
}
