package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain"
	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s := New(
		filepath.Join(dir, "filtered.json"),
		filepath.Join(dir, "unfiltered.json"),
		zap.NewNop(),
	)
	return s, dir
}

func sampleRecords(n int) []bot.Bot {
	records := make([]bot.Bot, n)
	for i := range records {
		records[i] = bot.Bot{
			CharacterID: "cid-" + string(rune('a'+i)),
			Name:        "Bot",
			Tags:        []string{"Female"},
			Rank:        i + 1,
			Page:        1,
		}
	}
	return records
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	in := sampleRecords(3)

	if err := s.Write(mode.Filtered, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := s.Read(mode.Filtered)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	for i := range in {
		if out[i].CharacterID != in[i].CharacterID || out[i].Rank != in[i].Rank {
			t.Errorf("record %d mismatch: %+v vs %+v", i, out[i], in[i])
		}
	}
}

func TestStore_MissingFileIsNotExist(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Read(mode.Unfiltered)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected os.ErrNotExist, got %v", err)
	}
}

func TestStore_InvalidSnapshots(t *testing.T) {
	cases := map[string]string{
		"not json":           `{{{`,
		"not an array":       `{"character_id":"a"}`,
		"null document":      `null`,
		"element without id": `[{"character_id":"a"},{"name":"missing"}]`,
	}
	for name, body := range cases {
		s, _ := newTestStore(t)
		if err := os.WriteFile(s.Path(mode.Filtered), []byte(body), 0o644); err != nil {
			t.Fatalf("%s: seed: %v", name, err)
		}
		_, err := s.Read(mode.Filtered)
		if !errors.Is(err, domain.ErrInvalidSnapshot) {
			t.Errorf("%s: expected ErrInvalidSnapshot, got %v", name, err)
		}
	}
}

func TestStore_WriteCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	s := New(
		filepath.Join(dir, "nested", "deeper", "filtered.json"),
		filepath.Join(dir, "unfiltered.json"),
		zap.NewNop(),
	)
	if err := s.Write(mode.Filtered, sampleRecords(1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(s.Path(mode.Filtered)); err != nil {
		t.Fatalf("expected snapshot file: %v", err)
	}
}

func TestStore_WriteReplacesWholesale(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Write(mode.Filtered, sampleRecords(5)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(mode.Filtered, sampleRecords(2)); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	out, err := s.Read(mode.Filtered)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected full replacement with 2 records, got %d", len(out))
	}
}

func TestStore_ModesAreIndependent(t *testing.T) {
	s, _ := newTestStore(t)
	if err := s.Write(mode.Filtered, sampleRecords(1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := s.Read(mode.Unfiltered); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unfiltered mode must not read the filtered file, got %v", err)
	}
}
