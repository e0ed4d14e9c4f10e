// Package trades maintains the trade journal, a single JSON array file
// of standardized trade records, and the statistical analysis run over
// it.
package trades

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"
)

// Trade is one journal record. Records are open-schema like analysis
// documents; the journal standardizes a core set of fields and carries
// the rest verbatim.
type Trade map[string]any

// Enricher supplies the market-context snapshots attached to each trade.
// All methods are best effort: a failing snapshot is logged and replaced
// with an empty object so the record structure stays uniform.
type Enricher interface {
	MacroSnapshot() (map[string]any, error)
	OptionsSnapshot(ticker string) (map[string]any, error)
	TechnicalIndicators(ticker string, date string) (map[string]any, error)
}

// snapshotFields are always present on a standardized record, empty or
// not, so downstream analysis can rely on the shape.
var snapshotFields = []string{
	"macro_snapshot", "options_snapshot", "technical_indicators",
	"event_tags", "prompt_enhancers",
}

// Journal appends trade records to one JSON array file.
type Journal struct {
	path     string
	enricher Enricher
	log      log.Logger
	now      func() time.Time
}

// NewJournal creates a Journal writing to path. enricher may be nil, in
// which case snapshots stay empty.
func NewJournal(path string, enricher Enricher, logger log.Logger) *Journal {
	return &Journal{
		path:     path,
		enricher: enricher,
		log:      logger,
		now:      time.Now,
	}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append standardizes a trade record, attaches context snapshots, and
// appends it to the journal file. A corrupt or non-array journal is
// logged and restarted rather than blocking new trades.
func (j *Journal) Append(trade Trade) error {
	record := j.standardize(trade)

	existing, err := j.Load()
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.path).Msg("journal unreadable, starting a new one")
		existing = []Trade{}
	}

	existing = append(existing, record)

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trade history: %w", err)
	}
	if err := os.WriteFile(j.path, data, 0o644); err != nil {
		return fmt.Errorf("write trade history: %w", err)
	}

	j.log.Info().Str("path", j.path).Int("trades", len(existing)).Msg("trade saved")
	return nil
}

// Load returns every trade in the journal, oldest first. A missing file
// is an empty journal, not an error.
func (j *Journal) Load() ([]Trade, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Trade{}, nil
		}
		return nil, fmt.Errorf("read trade history: %w", err)
	}

	var trades []Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return nil, fmt.Errorf("parse trade history %s: %w", j.path, err)
	}
	return trades, nil
}

// Latest returns the most recent trade, or nil for an empty journal.
func (j *Journal) Latest() (Trade, error) {
	trades, err := j.Load()
	if err != nil {
		return nil, err
	}
	if len(trades) == 0 {
		return nil, nil
	}
	return trades[len(trades)-1], nil
}

// Clear resets the journal to an empty array.
func (j *Journal) Clear() error {
	if err := os.WriteFile(j.path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("clear trade history: %w", err)
	}
	j.log.Info().Str("path", j.path).Msg("trade history cleared")
	return nil
}

// standardize shapes an incoming trade into the uniform record layout:
// headline and llm_output normalized, ISO timestamp attached, every
// snapshot field present.
func (j *Journal) standardize(trade Trade) Trade {
	record := Trade{}

	headline, _ := trade["headline"].(string)
	if headline == "" {
		headline, _ = trade["title"].(string)
	}
	if headline == "" {
		headline = "No headline provided"
	}
	record["headline"] = headline

	if out, ok := trade["llm_output"]; ok {
		record["llm_output"] = out
	} else if out, ok := trade["classification"]; ok {
		record["llm_output"] = out
	} else {
		record["llm_output"] = map[string]any{}
	}

	skip := map[string]bool{
		"headline": true, "title": true, "llm_output": true,
		"classification": true, "timestamp": true, "saved_timestamp": true,
	}
	for _, f := range snapshotFields {
		skip[f] = true
	}
	for k, v := range trade {
		if !skip[k] {
			record[k] = v
		}
	}

	ts := j.now().Format(time.RFC3339)
	record["timestamp"] = ts
	record["saved_timestamp"] = ts

	ticker := j.tickerOf(trade)
	record["macro_snapshot"] = j.snapshot(func() (map[string]any, error) {
		return j.enricher.MacroSnapshot()
	}, "macro snapshot")
	record["options_snapshot"] = j.snapshot(func() (map[string]any, error) {
		return j.enricher.OptionsSnapshot(ticker)
	}, "options snapshot")
	if j.enricher != nil {
		record["options_ticker"] = ticker
	}
	record["technical_indicators"] = j.snapshot(func() (map[string]any, error) {
		return j.enricher.TechnicalIndicators(ticker, j.now().Format("2006-01-02"))
	}, "technical indicators")

	for _, f := range []string{"event_tags", "prompt_enhancers"} {
		if v, ok := trade[f].(map[string]any); ok && len(v) > 0 {
			record[f] = v
		} else {
			record[f] = map[string]any{}
		}
	}

	return record
}

// tickerOf finds the ticker a trade refers to, defaulting to SPY.
func (j *Journal) tickerOf(trade Trade) string {
	if inner, ok := trade["trade"].(map[string]any); ok {
		if t, ok := inner["ticker"].(string); ok && t != "" {
			return t
		}
	}
	if t, ok := trade["ticker"].(string); ok && t != "" {
		return t
	}
	return "SPY"
}

// snapshot runs one enricher call, substituting an empty object when the
// enricher is absent or fails.
func (j *Journal) snapshot(fetch func() (map[string]any, error), what string) map[string]any {
	if j.enricher == nil {
		return map[string]any{}
	}
	snap, err := fetch()
	if err != nil {
		j.log.Warn().Err(err).Msgf("failed to include %s", what)
		return map[string]any{}
	}
	if snap == nil {
		return map[string]any{}
	}
	return snap
}
