package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/hindsight/internal/logging"
)

func TestReindex_RebuildsFromDisk(t *testing.T) {
	st := openTestStore(t)

	_, err := st.SaveHistoricalEvent(eventDoc("AAPL", "2024-03-15"))
	require.NoError(t, err)
	_, err = st.SaveHistoricalEvent(eventDoc("MSFT", "2024-04-01"))
	require.NoError(t, err)
	_, err = st.SaveSimilarEvents(similarDoc("gap_up", "SPY"), "gap query")
	require.NoError(t, err)

	// Simulate a lost index: remove the file and reopen the store.
	require.NoError(t, os.Remove(filepath.Join(st.BaseDir(), IndexFile)))
	st2, err := Open(st.BaseDir(), logging.Discard())
	require.NoError(t, err)
	assert.Empty(t, st2.AllHistorical())

	res, err := st2.Reindex(0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesScanned)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, 0, res.Skipped)

	assert.Len(t, st2.FindHistorical("AAPL", "", nil), 1)
	assert.Len(t, st2.FindHistorical("MSFT", "", nil), 1)
	assert.Len(t, st2.FindSimilar("gap_up", ""), 1)

	// Query history is recovered from document metadata.
	history := st2.SearchQueryHistory("", 10)
	require.Len(t, history, 1)
	assert.Equal(t, "gap query", history[0].Query)
}

func TestReindex_IdempotentWithoutFileChanges(t *testing.T) {
	st := openTestStore(t)

	_, err := st.SaveHistoricalEvent(eventDoc("AAPL", "2024-03-15"))
	require.NoError(t, err)
	_, err = st.SaveSimilarEvents(similarDoc("gap_up", "SPY"), "gap query")
	require.NoError(t, err)

	_, err = st.Reindex(0)
	require.NoError(t, err)
	first := *st.Index()

	_, err = st.Reindex(0)
	require.NoError(t, err)
	second := *st.Index()

	// Summaries come from document metadata, so a second pass over
	// unchanged files reproduces them exactly. Only the index stamp moves.
	assert.Equal(t, first.Events, second.Events)
	assert.Equal(t, first.SimilarEvents, second.SimilarEvents)
	assert.Equal(t, first.QueryHistory, second.QueryHistory)
}

func TestReindex_SkipsMalformedAndInvalid(t *testing.T) {
	st := openTestStore(t)

	_, err := st.SaveHistoricalEvent(eventDoc("AAPL", "2024-03-15"))
	require.NoError(t, err)

	// Unparseable JSON.
	broken := filepath.Join(st.BaseDir(), EventsDir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{oops"), 0o644))

	// Parseable but missing required fields.
	partial := filepath.Join(st.BaseDir(), EventsDir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"success": true, "ticker": "GME"}`), 0o644))

	res, err := st.Reindex(0)
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesScanned)
	assert.Equal(t, 1, res.Indexed)
	assert.Equal(t, 2, res.Skipped)

	assert.Len(t, st.AllHistorical(), 1)
}

func TestReindex_SmallBatchesCoverEverything(t *testing.T) {
	st := openTestStore(t)

	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		_, err := st.SaveHistoricalEvent(eventDoc("AAPL", date))
		require.NoError(t, err)
	}

	res, err := st.Reindex(2)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Indexed)
	assert.Len(t, st.FindHistorical("AAPL", "", nil), 5)
}

func TestReindex_QueryHistoryOldestFirst(t *testing.T) {
	st := openTestStore(t)

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, query := range []string{"first", "second", "third"} {
		tick := base.Add(time.Duration(i) * time.Hour)
		st.now = func() time.Time { return tick }
		_, err := st.SaveSimilarEvents(similarDoc("p", "SPY"), query)
		require.NoError(t, err)
	}

	_, err := st.Reindex(0)
	require.NoError(t, err)

	history := st.Index().QueryHistory
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[0].Query)
	assert.Equal(t, "third", history[2].Query)

	// Readers still see newest first.
	recent := st.SearchQueryHistory("", 10)
	assert.Equal(t, "third", recent[0].Query)
}

func TestMigrateMetadata_BackfillsLegacyDocuments(t *testing.T) {
	st := openTestStore(t)

	// A legacy document written before metadata existed, with the save
	// time only recoverable from the filename.
	legacy := filepath.Join(st.BaseDir(), EventsDir, "AAPL_2024-03-15_20240315_103000_cafe0123.json")
	require.NoError(t, os.WriteFile(legacy,
		[]byte(`{"success": true, "ticker": "AAPL", "event_date": "2024-03-15"}`), 0o644))

	// A current document is left alone.
	current, err := st.SaveHistoricalEvent(eventDoc("MSFT", "2024-04-01"))
	require.NoError(t, err)

	migrated, err := st.MigrateMetadata()
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)

	doc, err := st.Load(filepath.Join(EventsDir, filepath.Base(legacy)))
	require.NoError(t, err)
	meta := doc.Metadata()
	require.NotNil(t, meta)
	assert.Equal(t, "2024-03-15 10:30:00", meta["saved_at"])

	// Second run is a no-op.
	migrated, err = st.MigrateMetadata()
	require.NoError(t, err)
	assert.Equal(t, 0, migrated)

	// The current document's metadata was not rewritten.
	got, err := st.Load(current)
	require.NoError(t, err)
	assert.Equal(t, current, got.Metadata()["file_path"])
}

func TestRemoveTempFiles(t *testing.T) {
	st := openTestStore(t)

	keep, err := st.SaveHistoricalEvent(eventDoc("AAPL", "2024-03-15"))
	require.NoError(t, err)

	tempTop := filepath.Join(st.BaseDir(), "temp_export.json")
	tempSub := filepath.Join(st.BaseDir(), EventsDir, "write.json.tmp")
	require.NoError(t, os.WriteFile(tempTop, []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(tempSub, []byte("{}"), 0o644))

	removed, err := st.RemoveTempFiles()
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	_, err = os.Stat(tempTop)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(tempSub)
	assert.True(t, os.IsNotExist(err))

	// Real documents and the index survive the sweep.
	_, err = os.Stat(st.Resolve(keep))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(st.BaseDir(), IndexFile))
	assert.NoError(t, err)
}
