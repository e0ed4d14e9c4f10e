package trades

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hindsight/internal/logging"
)

type fakeEnricher struct {
	macro      map[string]any
	options    map[string]any
	technicals map[string]any
	err        error

	optionsTicker string
}

func (f *fakeEnricher) MacroSnapshot() (map[string]any, error) {
	return f.macro, f.err
}

func (f *fakeEnricher) OptionsSnapshot(ticker string) (map[string]any, error) {
	f.optionsTicker = ticker
	return f.options, f.err
}

func (f *fakeEnricher) TechnicalIndicators(string, string) (map[string]any, error) {
	return f.technicals, f.err
}

func testJournal(t *testing.T, enricher Enricher) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trade_history.json")
	return NewJournal(path, enricher, logging.Discard())
}

func TestAppend_StandardizesRecord(t *testing.T) {
	enricher := &fakeEnricher{
		macro:   map[string]any{"vix": 18.2},
		options: map[string]any{"iv_rank": 35.0},
	}
	j := testJournal(t, enricher)
	j.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }

	err := j.Append(Trade{
		"headline":       "Fed holds rates",
		"classification": map[string]any{"sentiment": "bullish"},
		"ticker":         "QQQ",
		"option_type":    "call",
	})
	require.NoError(t, err)

	trades, err := j.Load()
	require.NoError(t, err)
	require.Len(t, trades, 1)

	got := trades[0]
	assert.Equal(t, "Fed holds rates", got["headline"])
	// classification is normalized into llm_output.
	assert.Equal(t, map[string]any{"sentiment": "bullish"}, got["llm_output"])
	assert.Equal(t, "2024-05-01T10:30:00Z", got["timestamp"])
	assert.Equal(t, got["timestamp"], got["saved_timestamp"])

	// Snapshots are attached; the options snapshot used the trade's ticker.
	assert.Equal(t, map[string]any{"vix": 18.2}, got["macro_snapshot"])
	assert.Equal(t, "QQQ", got["options_ticker"])
	assert.Equal(t, "QQQ", enricher.optionsTicker)

	// Unknown caller fields pass through.
	assert.Equal(t, "call", got["option_type"])

	// Every snapshot field exists even when empty.
	for _, f := range snapshotFields {
		assert.Contains(t, got, f)
	}
}

func TestAppend_HeadlineFallbacks(t *testing.T) {
	j := testJournal(t, nil)

	require.NoError(t, j.Append(Trade{"title": "from title"}))
	require.NoError(t, j.Append(Trade{}))

	trades, err := j.Load()
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "from title", trades[0]["headline"])
	assert.Equal(t, "No headline provided", trades[1]["headline"])
	assert.Equal(t, map[string]any{}, trades[1]["llm_output"])
}

func TestAppend_NilEnricherKeepsShape(t *testing.T) {
	j := testJournal(t, nil)

	require.NoError(t, j.Append(Trade{"headline": "x"}))

	got, err := j.Latest()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got["macro_snapshot"])
	assert.Equal(t, map[string]any{}, got["options_snapshot"])
	assert.Equal(t, map[string]any{}, got["technical_indicators"])
	// Without an enricher no options ticker is recorded.
	assert.NotContains(t, got, "options_ticker")
}

func TestAppend_EnricherFailuresAreSoft(t *testing.T) {
	j := testJournal(t, &fakeEnricher{err: errors.New("api down")})

	require.NoError(t, j.Append(Trade{"headline": "x", "ticker": "AAPL"}))

	got, err := j.Latest()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, got["macro_snapshot"])
	assert.Equal(t, "AAPL", got["options_ticker"])
}

func TestAppend_RestartsCorruptJournal(t *testing.T) {
	j := testJournal(t, nil)
	require.NoError(t, os.WriteFile(j.Path(), []byte("{not an array"), 0o644))

	require.NoError(t, j.Append(Trade{"headline": "survivor"}))

	trades, err := j.Load()
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "survivor", trades[0]["headline"])
}

func TestLoad_MissingFileIsEmptyJournal(t *testing.T) {
	j := testJournal(t, nil)

	trades, err := j.Load()
	require.NoError(t, err)
	assert.Empty(t, trades)

	latest, err := j.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestClear(t *testing.T) {
	j := testJournal(t, nil)
	require.NoError(t, j.Append(Trade{"headline": "x"}))

	require.NoError(t, j.Clear())

	trades, err := j.Load()
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestTickerOf(t *testing.T) {
	j := testJournal(t, nil)

	assert.Equal(t, "AAPL", j.tickerOf(Trade{"trade": map[string]any{"ticker": "AAPL"}}))
	assert.Equal(t, "QQQ", j.tickerOf(Trade{"ticker": "QQQ"}))
	// Nested ticker wins over the top-level one.
	assert.Equal(t, "AAPL", j.tickerOf(Trade{
		"trade":  map[string]any{"ticker": "AAPL"},
		"ticker": "QQQ",
	}))
	assert.Equal(t, "SPY", j.tickerOf(Trade{}))
}
