package cli

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hindsight/internal/logging"
	"github.com/runnerr0/hindsight/internal/store"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// openTestStore creates a Store over a fresh temp directory.
func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir(), logging.Discard())
	require.NoError(t, err)
	return st
}

// seedEvent saves one valid historical event analysis.
func seedEvent(t *testing.T, st *store.Store, ticker, date string) string {
	t.Helper()
	path, err := st.SaveHistoricalEvent(store.Document{
		"ticker":           ticker,
		"event_date":       date,
		"price_data":       map[string]any{"close": 101.0},
		"event_data":       map[string]any{"headline": "test event"},
		"price_change_pct": 1.5,
		"trend":            "Bullish Recovery",
		"success":          true,
	})
	require.NoError(t, err)
	return path
}

// seedSimilar saves one successful similar-events analysis.
func seedSimilar(t *testing.T, st *store.Store, pattern, ticker, query string) string {
	t.Helper()
	path, err := st.SaveSimilarEvents(store.Document{
		"success":           true,
		"pattern_summary":   pattern,
		"dominant_ticker":   ticker,
		"avg_price_change":  2.0,
		"consistency_score": 0.7,
	}, query)
	require.NoError(t, err)
	return path
}
