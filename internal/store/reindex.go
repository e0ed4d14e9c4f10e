package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// defaultBatchSize bounds how many document files a maintenance pass
// holds in memory at once. Batching is purely a memory bound; the scan
// stays single-threaded.
const defaultBatchSize = 20

var fileStampPattern = regexp.MustCompile(`\d{8}_\d{6}`)

// Reindex rebuilds the entire index by walking the events and
// similar_events directories, re-deriving every summary entry, and
// atomically replacing the on-disk index. Unreadable or invalid files
// are skipped, never fatal. This is the authoritative repair operation
// for index/file skew.
func (s *Store) Reindex(batchSize int) (ReindexResult, error) {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	idx := s.newIndex()
	res := ReindexResult{}

	eventFiles, err := s.listDocuments(EventsDir)
	if err != nil {
		return res, err
	}
	for start := 0; start < len(eventFiles); start += batchSize {
		for _, relPath := range eventFiles[start:min(start+batchSize, len(eventFiles))] {
			res.FilesScanned++
			doc, err := readDocument(s.Resolve(relPath))
			if err != nil {
				s.log.Warn().Err(err).Str("path", relPath).Msg("reindex: skipping unreadable file")
				res.Skipped++
				continue
			}
			if !doc.Success() || doc.Str("ticker") == "" || doc.Str("event_date") == "" {
				res.Skipped++
				continue
			}

			ticker := doc.Str("ticker")
			savedAt, query := s.metadataOf(doc, relPath)
			idx.Events[ticker] = append(idx.Events[ticker], EventSummary{
				EventDate:   doc.Str("event_date"),
				PriceChange: doc.Float("price_change_pct"),
				Trend:       doc.strOr("trend", "Unknown"),
				FilePath:    relPath,
				SavedAt:     savedAt,
			})
			if query != "" {
				idx.QueryHistory = append(idx.QueryHistory, QueryEntry{
					Query:      query,
					Timestamp:  savedAt,
					ResultType: "historical_event",
					Ticker:     ticker,
					EventDate:  doc.Str("event_date"),
					FilePath:   relPath,
				})
			}
			res.Indexed++
		}
	}

	similarFiles, err := s.listDocuments(SimilarEventsDir)
	if err != nil {
		return res, err
	}
	for start := 0; start < len(similarFiles); start += batchSize {
		for _, relPath := range similarFiles[start:min(start+batchSize, len(similarFiles))] {
			res.FilesScanned++
			doc, err := readDocument(s.Resolve(relPath))
			if err != nil {
				s.log.Warn().Err(err).Str("path", relPath).Msg("reindex: skipping unreadable file")
				res.Skipped++
				continue
			}
			if !doc.Success() || doc.Str("pattern_summary") == "" {
				res.Skipped++
				continue
			}

			pattern := doc.strOr("pattern_summary", "unknown_pattern")
			ticker := doc.strOr("dominant_ticker", "unknown")
			savedAt, query := s.metadataOf(doc, relPath)
			idx.SimilarEvents[pattern] = append(idx.SimilarEvents[pattern], PatternSummary{
				DominantTicker:   ticker,
				AvgPriceChange:   doc.Float("avg_price_change"),
				ConsistencyScore: doc.Float("consistency_score"),
				FilePath:         relPath,
				SavedAt:          savedAt,
			})
			if query != "" {
				idx.QueryHistory = append(idx.QueryHistory, QueryEntry{
					Query:          query,
					Timestamp:      savedAt,
					ResultType:     "similar_events",
					Pattern:        pattern,
					DominantTicker: ticker,
					FilePath:       relPath,
				})
			}
			res.Indexed++
		}
	}

	// Rebuilt history goes oldest-first; readers re-sort descending.
	sort.SliceStable(idx.QueryHistory, func(i, j int) bool {
		return idx.QueryHistory[i].Timestamp < idx.QueryHistory[j].Timestamp
	})

	s.index = idx
	if err := s.saveIndex(); err != nil {
		return res, err
	}
	s.invalidate()

	s.log.Info().
		Int("scanned", res.FilesScanned).
		Int("indexed", res.Indexed).
		Int("skipped", res.Skipped).
		Msg("reindex complete")
	return res, nil
}

// MigrateMetadata backfills the _metadata object into documents that
// predate it, rewriting each affected file and logging it. This is the
// explicit migration counterpart to Reindex, which never mutates
// documents as a side effect of reading them.
func (s *Store) MigrateMetadata() (int, error) {
	migrated := 0
	for _, subdir := range []string{EventsDir, SimilarEventsDir} {
		files, err := s.listDocuments(subdir)
		if err != nil {
			return migrated, err
		}
		for _, relPath := range files {
			doc, err := readDocument(s.Resolve(relPath))
			if err != nil {
				s.log.Warn().Err(err).Str("path", relPath).Msg("migrate: skipping unreadable file")
				continue
			}
			if doc.Metadata() != nil {
				continue
			}

			savedAt, _ := s.metadataOf(doc, relPath)
			doc["_metadata"] = map[string]any{
				"saved_at":  savedAt,
				"query":     nil,
				"file_path": relPath,
			}
			if err := writeJSONAtomic(s.Resolve(relPath), doc); err != nil {
				return migrated, fmt.Errorf("migrate %s: %w", relPath, err)
			}
			migrated++
			s.log.Info().Str("path", relPath).Str("saved_at", savedAt).Msg("migrated document metadata")
		}
	}
	if migrated > 0 {
		s.invalidate()
	}
	return migrated, nil
}

// RemoveTempFiles sweeps leftovers from interrupted operations
// (temp_*.json, *.tmp) out of the base directory and its category
// subdirectories. Returns the removed paths.
func (s *Store) RemoveTempFiles() ([]string, error) {
	removed := []string{}
	dirs := []string{s.baseDir,
		filepath.Join(s.baseDir, EventsDir),
		filepath.Join(s.baseDir, SimilarEventsDir),
		filepath.Join(s.baseDir, QueriesDir),
	}
	for _, dir := range dirs {
		for _, pattern := range []string{"temp_*.json", "*.tmp"} {
			matches, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return removed, fmt.Errorf("scan temp files: %w", err)
			}
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil || info.IsDir() {
					continue
				}
				if err := os.Remove(match); err != nil {
					s.log.Warn().Err(err).Str("path", match).Msg("cleanup: could not remove")
					continue
				}
				removed = append(removed, match)
			}
		}
	}
	return removed, nil
}

// listDocuments returns the relative path of every .json file directly
// inside the given category subdirectory, sorted by name.
func (s *Store) listDocuments(subdir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, subdir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan %s: %w", subdir, err)
	}

	paths := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(subdir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// metadataOf extracts (saved_at, query) from a document's metadata. For
// metadata-less files saved_at is recovered from the filename timestamp,
// falling back to file mtime; the file itself is never modified here.
func (s *Store) metadataOf(doc Document, relPath string) (savedAt, query string) {
	if meta := doc.Metadata(); meta != nil {
		if v, ok := meta["saved_at"].(string); ok {
			savedAt = v
		}
		if v, ok := meta["query"].(string); ok {
			query = v
		}
	}
	if savedAt == "" {
		savedAt = s.stampFromFilename(relPath)
	}
	return savedAt, query
}

// stampFromFilename derives a metadata timestamp from the filename's
// embedded YYYYMMDD_HHMMSS segment, or the file's mtime when absent.
func (s *Store) stampFromFilename(relPath string) string {
	if m := fileStampPattern.FindString(filepath.Base(relPath)); m != "" {
		if t, err := time.ParseInLocation(fileStampFormat, m, time.Local); err == nil {
			return t.Format(TimestampFormat)
		}
	}
	if info, err := os.Stat(s.Resolve(relPath)); err == nil {
		return info.ModTime().Format(TimestampFormat)
	}
	return s.timestamp()
}
