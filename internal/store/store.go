package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// maxKeyLen caps the ticker/date portion of a filename before the
// timestamp suffix is appended.
const maxKeyLen = 50

// docCacheCap bounds the in-memory document cache. When exceeded the
// cache is dropped wholesale; entries are cheap to reload.
const docCacheCap = 32

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Store owns a directory tree of JSON analysis documents plus a cached
// index optimizing ticker/pattern lookups. It assumes a single writer:
// no locking is performed against concurrent processes.
type Store struct {
	baseDir  string
	index    *Index
	validate *validator.Validate
	log      log.Logger

	// Explicit caches, invalidated on every mutation. Transparent
	// memoization over mutable on-disk state is a correctness hazard.
	docCache   map[string]Document
	statsCache *Stats

	now func() time.Time
}

// historicalFields is the validated projection of a historical event
// analysis. The document itself stays open-schema; only these fields are
// required at save time.
type historicalFields struct {
	Ticker    string `validate:"required"`
	EventDate string `validate:"required,datetime=2006-01-02"`
	PriceData any    `validate:"required"`
	EventData any    `validate:"required"`
}

// Open prepares the base directory (creating it and the category
// subdirectories if needed), loads the index from disk or starts a fresh
// one, and returns a ready Store.
func Open(baseDir string, logger log.Logger) (*Store, error) {
	for _, dir := range []string{baseDir,
		filepath.Join(baseDir, EventsDir),
		filepath.Join(baseDir, SimilarEventsDir),
		filepath.Join(baseDir, QueriesDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analysis directory: %w", err)
		}
	}

	s := &Store{
		baseDir:  baseDir,
		validate: validator.New(),
		log:      logger,
		docCache: make(map[string]Document),
		now:      time.Now,
	}

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	s.index = idx

	return s, nil
}

// BaseDir returns the store's base directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Index exposes the cached index for read-only inspection.
func (s *Store) Index() *Index {
	return s.index
}

// Resolve turns an index-relative document path into an absolute one.
// Absolute paths pass through unchanged.
func (s *Store) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

// timestamp returns the current time in the store's metadata format.
func (s *Store) timestamp() string {
	return s.now().Format(TimestampFormat)
}

// storagePath derives a new relative document path from a key, an event
// date and the current time. An 8-hex random suffix disambiguates saves
// landing in the same second.
func (s *Store) storagePath(key, eventDate, subdir string) string {
	safe := unsafeFileChars.ReplaceAllString(key+"_"+eventDate, "_")
	if len(safe) > maxKeyLen {
		safe = safe[:maxKeyLen]
	}
	stamp := s.now().Format(fileStampFormat)
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return filepath.Join(subdir, fmt.Sprintf("%s_%s_%s.json", safe, stamp, suffix))
}

// withMetadata returns a copy of doc carrying the standard _metadata
// object. The file_path recorded there always equals the relative path
// the document is stored at.
func (s *Store) withMetadata(doc Document, relPath, query string) Document {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	meta := map[string]any{
		"saved_at":  s.timestamp(),
		"query":     nil,
		"file_path": relPath,
	}
	if query != "" {
		meta["query"] = query
	}
	out["_metadata"] = meta
	return out
}

// SaveHistoricalEvent validates and persists a historical event analysis,
// then records it in the index. Returns the relative path of the written
// document.
func (s *Store) SaveHistoricalEvent(doc Document) (string, error) {
	fields := historicalFields{
		Ticker:    doc.Str("ticker"),
		EventDate: doc.Str("event_date"),
		PriceData: doc["price_data"],
		EventData: doc["event_data"],
	}
	if err := s.validate.Struct(fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	relPath := s.storagePath(fields.Ticker, fields.EventDate, EventsDir)
	saved := s.withMetadata(doc, relPath, "")

	if err := writeJSONAtomic(s.Resolve(relPath), saved); err != nil {
		return "", fmt.Errorf("write event analysis: %w", err)
	}

	meta := saved.Metadata()
	s.index.Events[fields.Ticker] = append(s.index.Events[fields.Ticker], EventSummary{
		EventDate:   fields.EventDate,
		PriceChange: doc.Float("price_change_pct"),
		Trend:       doc.strOr("trend", "Unknown"),
		FilePath:    relPath,
		SavedAt:     meta["saved_at"].(string),
	})

	if err := s.saveIndex(); err != nil {
		return "", err
	}
	s.invalidate()

	s.log.Info().Str("ticker", fields.Ticker).Str("path", relPath).Msg("saved historical event analysis")
	return relPath, nil
}

// SaveSimilarEvents persists a similar-events analysis keyed by its
// pattern summary. An unsuccessful analysis is a soft skip: it returns
// ("", nil) and writes nothing. A non-empty query is logged into the
// query history.
func (s *Store) SaveSimilarEvents(doc Document, query string) (string, error) {
	if !doc.Success() {
		s.log.Warn().Msg("skipping unsuccessful similar events analysis")
		return "", nil
	}

	pattern := doc.strOr("pattern_summary", "unknown_pattern")
	ticker := doc.strOr("dominant_ticker", "unknown")
	eventDate := doc.strOr("event_date", "unknown")

	relPath := s.storagePath(ticker, eventDate, SimilarEventsDir)
	saved := s.withMetadata(doc, relPath, query)

	if err := writeJSONAtomic(s.Resolve(relPath), saved); err != nil {
		return "", fmt.Errorf("write similar events analysis: %w", err)
	}

	savedAt := saved.Metadata()["saved_at"].(string)
	s.index.SimilarEvents[pattern] = append(s.index.SimilarEvents[pattern], PatternSummary{
		DominantTicker:   ticker,
		AvgPriceChange:   doc.Float("avg_price_change"),
		ConsistencyScore: doc.Float("consistency_score"),
		FilePath:         relPath,
		SavedAt:          savedAt,
	})

	if query != "" {
		s.index.QueryHistory = append(s.index.QueryHistory, QueryEntry{
			Query:          query,
			Timestamp:      s.timestamp(),
			ResultType:     "similar_events",
			Pattern:        pattern,
			DominantTicker: ticker,
			FilePath:       relPath,
		})
	}

	if err := s.saveIndex(); err != nil {
		return "", err
	}
	s.invalidate()

	s.log.Info().Str("pattern", pattern).Str("path", relPath).Msg("saved similar events analysis")
	return relPath, nil
}

// SaveQueryResult persists whichever sub-analyses report success, then
// writes a query document capturing the resulting paths. Failure to save
// one sub-analysis never blocks the other or the query document; failed
// pieces are logged and their paths left empty.
func (s *Store) SaveQueryResult(query string, eventDoc, similarDoc Document) (QueryResultPaths, error) {
	result := QueryResultPaths{Query: query, SavedAt: s.timestamp()}

	if eventDoc != nil && eventDoc.Success() {
		path, err := s.SaveHistoricalEvent(eventDoc)
		if err != nil {
			s.log.Warn().Err(err).Msg("query result: historical analysis not saved")
		} else {
			result.EventAnalysisPath = path
		}
	}

	if similarDoc != nil && similarDoc.Success() {
		path, err := s.SaveSimilarEvents(similarDoc, query)
		if err != nil {
			s.log.Warn().Err(err).Msg("query result: similar events analysis not saved")
		} else if path != "" {
			result.SimilarEventsPath = path
		}
	}

	relPath := s.storagePath("queries", query, QueriesDir)
	if err := writeJSONAtomic(s.Resolve(relPath), result); err != nil {
		return result, fmt.Errorf("write query result: %w", err)
	}
	result.QueryPath = relPath

	s.log.Info().Str("query", query).Str("path", relPath).Msg("saved query result")
	return result, nil
}

// FindHistorical returns index summaries matching the given filters.
// A pure index lookup: the file system is never touched. All filters are
// optional; dateRange bounds are inclusive string comparisons.
func (s *Store) FindHistorical(ticker, eventDate string, dateRange *DateRange) []EventSummary {
	tickers := make([]string, 0, len(s.index.Events))
	if ticker != "" {
		if _, ok := s.index.Events[ticker]; ok {
			tickers = append(tickers, ticker)
		}
	} else {
		for t := range s.index.Events {
			tickers = append(tickers, t)
		}
		sort.Strings(tickers)
	}

	results := []EventSummary{}
	for _, t := range tickers {
		for _, sum := range s.index.Events[t] {
			if eventDate != "" && sum.EventDate != eventDate {
				continue
			}
			if dateRange != nil && (sum.EventDate < dateRange.Start || sum.EventDate > dateRange.End) {
				continue
			}
			results = append(results, sum)
		}
	}
	return results
}

// FindSimilar returns similar-events summaries matching the optional
// pattern and dominant-ticker filters.
func (s *Store) FindSimilar(pattern, ticker string) []PatternSummary {
	patterns := make([]string, 0, len(s.index.SimilarEvents))
	if pattern != "" {
		if _, ok := s.index.SimilarEvents[pattern]; ok {
			patterns = append(patterns, pattern)
		}
	} else {
		for p := range s.index.SimilarEvents {
			patterns = append(patterns, p)
		}
		sort.Strings(patterns)
	}

	results := []PatternSummary{}
	for _, p := range patterns {
		for _, sum := range s.index.SimilarEvents[p] {
			if ticker != "" && sum.DominantTicker != ticker {
				continue
			}
			results = append(results, sum)
		}
	}
	return results
}

// SearchQueryHistory returns query-history entries, newest first. With a
// term, entries are filtered by case-insensitive substring match on the
// query text. A non-positive limit defaults to 10.
func (s *Store) SearchQueryHistory(term string, limit int) []QueryEntry {
	if limit <= 0 {
		limit = 10
	}

	results := []QueryEntry{}
	for _, entry := range s.index.QueryHistory {
		if term != "" && !strings.Contains(strings.ToLower(entry.Query), strings.ToLower(term)) {
			continue
		}
		results = append(results, entry)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp > results[j].Timestamp
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Load reads one document by (relative or absolute) path. A missing file
// returns ErrNotFound; malformed JSON returns a wrapped parse error.
func (s *Store) Load(path string) (Document, error) {
	full := s.Resolve(path)
	if doc, ok := s.docCache[full]; ok {
		return doc, nil
	}

	doc, err := readDocument(full)
	if err != nil {
		return nil, err
	}

	if len(s.docCache) >= docCacheCap {
		s.docCache = make(map[string]Document)
	}
	s.docCache[full] = doc
	return doc, nil
}

// Statistics aggregates counts and superlatives over the index. Count
// ties break toward the lexicographically smallest key so the result is
// reproducible across index reloads.
func (s *Store) Statistics() Stats {
	if s.statsCache != nil {
		return *s.statsCache
	}

	stats := Stats{TickersAnalyzed: []string{}}

	tickers := make([]string, 0, len(s.index.Events))
	for t := range s.index.Events {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	stats.TickersAnalyzed = tickers

	for _, t := range tickers {
		n := len(s.index.Events[t])
		stats.TotalHistoricalEvents += n
		if n > 0 && (stats.MostAnalyzedTicker == "" || n > len(s.index.Events[stats.MostAnalyzedTicker])) {
			stats.MostAnalyzedTicker = t
		}
	}

	patterns := make([]string, 0, len(s.index.SimilarEvents))
	for p := range s.index.SimilarEvents {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)
	for _, p := range patterns {
		n := len(s.index.SimilarEvents[p])
		stats.TotalSimilarEvents += n
		if n > 0 && (stats.MostCommonPattern == "" || n > len(s.index.SimilarEvents[stats.MostCommonPattern])) {
			stats.MostCommonPattern = p
		}
	}

	stats.TotalQueries = len(s.index.QueryHistory)
	if recent := s.SearchQueryHistory("", 1); len(recent) > 0 {
		stats.MostRecentQuery = recent[0].Query
	}

	s.statsCache = &stats
	return stats
}

// Delete removes a document file. It does NOT update the index: stale
// entries remain until the next Reindex, which is the documented repair
// path. A missing file is a soft no-op returning (false, nil).
func (s *Store) Delete(path string) (bool, error) {
	full := s.Resolve(path)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		s.log.Warn().Str("path", path).Msg("delete: file not found")
		return false, nil
	}
	if err := os.Remove(full); err != nil {
		return false, fmt.Errorf("delete analysis: %w", err)
	}
	s.invalidate()
	s.log.Info().Str("path", path).Msg("deleted analysis; index is stale until reindex")
	return true, nil
}

// invalidate drops all derived caches after a mutation.
func (s *Store) invalidate() {
	s.docCache = make(map[string]Document)
	s.statsCache = nil
}

// readDocument reads and parses one JSON document from disk.
func readDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read analysis: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return doc, nil
}

// writeJSONAtomic writes v as indented JSON via a temp file in the same
// directory, then renames it over the target.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
