package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand_Human(t *testing.T) {
	st := openTestStore(t)
	seedEvent(t, st, "AAPL", "2024-03-15")
	seedSimilar(t, st, "gap_up", "SPY", "")

	cmd := &ListCommand{Limit: 20}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	assert.Contains(t, out, "Historical Events (1)")
	assert.Contains(t, out, "2024-03-15")
	assert.Contains(t, out, "Bullish Recovery")
	assert.Contains(t, out, "Similar-Event Analyses (1)")
	assert.Contains(t, out, "SPY")
}

func TestListCommand_Empty(t *testing.T) {
	st := openTestStore(t)

	cmd := &ListCommand{Limit: 20}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	assert.Contains(t, out, "No analyses found.")
}

func TestListCommand_TickerFilter(t *testing.T) {
	st := openTestStore(t)
	seedEvent(t, st, "AAPL", "2024-03-15")
	seedEvent(t, st, "MSFT", "2024-04-01")

	cmd := &ListCommand{Ticker: "AAPL", Limit: 20}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	assert.Contains(t, out, "Historical Events (1)")
	assert.Contains(t, out, "2024-03-15")
	assert.NotContains(t, out, "2024-04-01")
}

func TestListCommand_Limit(t *testing.T) {
	st := openTestStore(t)
	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		seedEvent(t, st, "AAPL", date)
	}

	cmd := &ListCommand{Limit: 2}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	assert.Contains(t, out, "Historical Events (2)")
}

func TestListCommand_JSON(t *testing.T) {
	st := openTestStore(t)
	seedEvent(t, st, "AAPL", "2024-03-15")

	cmd := &ListCommand{Limit: 20, globals: &GlobalFlags{JSON: true}}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	var payload struct {
		HistoricalEvents []map[string]any `json:"historical_events"`
		SimilarEvents    []map[string]any `json:"similar_events"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.HistoricalEvents, 1)
	assert.Equal(t, "2024-03-15", payload.HistoricalEvents[0]["event_date"])
	assert.Empty(t, payload.SimilarEvents)
}

func TestListCommand_Detailed(t *testing.T) {
	st := openTestStore(t)
	seedEvent(t, st, "AAPL", "2024-03-15")

	cmd := &ListCommand{Limit: 20, Detailed: true}
	out := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(st))
	})

	assert.Contains(t, out, "ticker: AAPL")
}
