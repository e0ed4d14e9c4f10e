package store

import "errors"

// Timestamp formats used throughout the store. Metadata timestamps are
// plain strings compared lexicographically, so the format must sort
// chronologically.
const (
	TimestampFormat = "2006-01-02 15:04:05"
	fileStampFormat = "20060102_150405"
)

// Subdirectories of the base directory, one per document category.
const (
	EventsDir        = "events"
	SimilarEventsDir = "similar_events"
	QueriesDir       = "queries"
)

// IndexFile is the on-disk index filename inside the base directory.
const IndexFile = "analysis_index.json"

var (
	// ErrNotFound is returned when a document file does not exist.
	ErrNotFound = errors.New("analysis not found")

	// ErrInvalidDocument is returned when a document fails save-time
	// validation.
	ErrInvalidDocument = errors.New("invalid analysis document")
)

// Document is one analysis record. Documents are open-schema: callers may
// attach arbitrary fields and the store preserves them verbatim, only
// injecting the "_metadata" object on save.
type Document map[string]any

// Str returns the string value for key, or "" if absent or not a string.
func (d Document) Str(key string) string {
	s, _ := d[key].(string)
	return s
}

// Float returns the numeric value for key as a float64, or 0 if absent.
// JSON numbers always decode as float64; int values from in-process
// callers are converted.
func (d Document) Float(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Success reports whether the document carries a true "success" flag.
func (d Document) Success() bool {
	b, _ := d["success"].(bool)
	return b
}

// Metadata returns the document's "_metadata" object, or nil.
func (d Document) Metadata() map[string]any {
	m, _ := d["_metadata"].(map[string]any)
	return m
}

// strOr returns the string value for key, or fallback if absent/empty.
func (d Document) strOr(key, fallback string) string {
	if s := d.Str(key); s != "" {
		return s
	}
	return fallback
}

// EventSummary is the index entry for one historical event analysis.
type EventSummary struct {
	EventDate   string  `json:"event_date"`
	PriceChange float64 `json:"price_change"`
	Trend       string  `json:"trend"`
	FilePath    string  `json:"file_path"`
	SavedAt     string  `json:"saved_at"`
}

// PatternSummary is the index entry for one similar-events analysis.
type PatternSummary struct {
	DominantTicker   string  `json:"dominant_ticker"`
	AvgPriceChange   float64 `json:"avg_price_change"`
	ConsistencyScore float64 `json:"consistency_score"`
	FilePath         string  `json:"file_path"`
	SavedAt          string  `json:"saved_at"`
}

// QueryEntry is one entry in the index's query history log.
type QueryEntry struct {
	Query          string `json:"query"`
	Timestamp      string `json:"timestamp"`
	ResultType     string `json:"result_type"`
	Ticker         string `json:"ticker,omitempty"`
	EventDate      string `json:"event_date,omitempty"`
	Pattern        string `json:"pattern,omitempty"`
	DominantTicker string `json:"dominant_ticker,omitempty"`
	FilePath       string `json:"file_path"`
}

// Index is the cached summary structure persisted as a single JSON file.
// Every FilePath it references is relative to the store's base directory.
type Index struct {
	Events        map[string][]EventSummary   `json:"events"`
	SimilarEvents map[string][]PatternSummary `json:"similar_events"`
	QueryHistory  []QueryEntry                `json:"query_history"`
	LastUpdated   string                      `json:"last_updated"`
}

// DateRange is an inclusive [Start, End] filter over event dates.
// Dates are compared lexicographically, so both bounds must be in
// YYYY-MM-DD form for the comparison to be meaningful.
type DateRange struct {
	Start string
	End   string
}

// Stats holds aggregate statistics about the stored analyses.
type Stats struct {
	TotalHistoricalEvents int      `json:"total_historical_events"`
	TotalSimilarEvents    int      `json:"total_similar_events"`
	TotalQueries          int      `json:"total_queries"`
	TickersAnalyzed       []string `json:"tickers_analyzed"`
	MostAnalyzedTicker    string   `json:"most_analyzed_ticker,omitempty"`
	MostCommonPattern     string   `json:"most_common_pattern,omitempty"`
	MostRecentQuery       string   `json:"most_recent_query,omitempty"`
}

// QueryResultPaths reports where the pieces of a saved query landed.
// Each path is independently optional: a failed sub-analysis save leaves
// its path empty without blocking the others.
type QueryResultPaths struct {
	Query             string `json:"query"`
	SavedAt           string `json:"saved_at"`
	EventAnalysisPath string `json:"event_analysis_path,omitempty"`
	SimilarEventsPath string `json:"similar_events_path,omitempty"`
	QueryPath         string `json:"query_path,omitempty"`
}

// ReindexResult summarizes one reindex pass.
type ReindexResult struct {
	FilesScanned int
	Indexed      int
	Skipped      int
}
