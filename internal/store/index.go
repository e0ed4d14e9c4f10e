package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// newIndex returns an empty index stamped with the current time.
func (s *Store) newIndex() *Index {
	return &Index{
		Events:        map[string][]EventSummary{},
		SimilarEvents: map[string][]PatternSummary{},
		QueryHistory:  []QueryEntry{},
		LastUpdated:   s.timestamp(),
	}
}

// indexPath returns the absolute path of the on-disk index file.
func (s *Store) indexPath() string {
	return filepath.Join(s.baseDir, IndexFile)
}

// loadIndex reads the index file, falling back to a fresh empty index if
// the file does not exist. A present-but-unreadable index is an error:
// silently discarding it would orphan every saved document until a
// manual reindex.
func (s *Store) loadIndex() (*Index, error) {
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug().Str("dir", s.baseDir).Msg("no index file, starting fresh")
			return s.newIndex(), nil
		}
		return nil, fmt.Errorf("read analysis index: %w", err)
	}

	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("parse analysis index: %w", err)
	}

	// Normalize nil containers from sparse index files.
	if idx.Events == nil {
		idx.Events = map[string][]EventSummary{}
	}
	if idx.SimilarEvents == nil {
		idx.SimilarEvents = map[string][]PatternSummary{}
	}
	if idx.QueryHistory == nil {
		idx.QueryHistory = []QueryEntry{}
	}

	return idx, nil
}

// saveIndex stamps and persists the in-memory index atomically.
func (s *Store) saveIndex() error {
	s.index.LastUpdated = s.timestamp()
	if err := writeJSONAtomic(s.indexPath(), s.index); err != nil {
		return fmt.Errorf("save analysis index: %w", err)
	}
	return nil
}

// AllHistorical flattens every event summary in the index, ticker keys in
// sorted order.
func (s *Store) AllHistorical() []EventSummary {
	return s.FindHistorical("", "", nil)
}

// AllSimilar flattens every similar-events summary in the index.
func (s *Store) AllSimilar() []PatternSummary {
	return s.FindSimilar("", "")
}
