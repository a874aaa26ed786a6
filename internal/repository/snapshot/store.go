// Package snapshot persists crawl results as flat JSON files, one per
// filter mode. A snapshot is always written whole; there is no incremental
// merge.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/charwatch/charwatch/internal/domain"
	"github.com/charwatch/charwatch/internal/domain/bot"
	"github.com/charwatch/charwatch/internal/domain/mode"
)

// Store reads and writes per-mode snapshot files. The two files are never
// cross-read.
type Store struct {
	paths  map[mode.Mode]string
	logger *zap.Logger
}

// New creates a snapshot store over the two cache file paths.
func New(filteredPath, unfilteredPath string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		paths: map[mode.Mode]string{
			mode.Filtered:   filteredPath,
			mode.Unfiltered: unfilteredPath,
		},
		logger: logger,
	}
}

// Path returns the cache file path for a mode.
func (s *Store) Path(m mode.Mode) string {
	return s.paths[m]
}

// Read loads and validates the snapshot for a mode. A snapshot is valid iff
// it is a JSON array and every element carries a character_id. A missing
// file surfaces as os.ErrNotExist; an invalid one as domain.ErrInvalidSnapshot.
func (s *Store) Read(m mode.Mode) ([]bot.Bot, error) {
	path := s.Path(m)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}

	// Presence check first: the element must have the key at all, not just
	// decode to a zero value.
	var shape []map[string]json.RawMessage
	if err := json.Unmarshal(data, &shape); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSnapshot, path, err)
	}
	// A JSON null decodes into a nil slice without error; only an actual
	// array is a valid snapshot.
	if shape == nil {
		return nil, fmt.Errorf("%w: %s: not a JSON array", domain.ErrInvalidSnapshot, path)
	}
	for i, elem := range shape {
		if _, ok := elem["character_id"]; !ok {
			return nil, fmt.Errorf("%w: %s: element %d lacks character_id",
				domain.ErrInvalidSnapshot, path, i)
		}
	}

	var records []bot.Bot
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSnapshot, path, err)
	}
	return records, nil
}

// Write replaces the snapshot for a mode with the given records, creating
// parent directories as needed.
func (s *Store) Write(m mode.Mode, records []bot.Bot) error {
	path := s.Path(m)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	s.logger.Debug("Snapshot written",
		zap.String("mode", m.String()),
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}
