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

func TestOpen_CreatesDirectoryTree(t *testing.T) {
	base := filepath.Join(t.TempDir(), "analysis_history")

	_, err := Open(base, logging.Discard())
	require.NoError(t, err)

	for _, dir := range []string{base,
		filepath.Join(base, EventsDir),
		filepath.Join(base, SimilarEventsDir),
		filepath.Join(base, QueriesDir),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestOpen_MissingIndexStartsFresh(t *testing.T) {
	st := openTestStore(t)

	assert.Empty(t, st.AllHistorical())
	assert.Empty(t, st.AllSimilar())
	assert.Empty(t, st.Index().QueryHistory)
	assert.NotEmpty(t, st.Index().LastUpdated)
}

func TestOpen_CorruptIndexIsAnError(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, IndexFile), []byte("{corrupt"), 0o644))

	_, err := Open(base, logging.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse analysis index")
}

func TestOpen_SparseIndexNormalized(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, IndexFile),
		[]byte(`{"last_updated": "2024-01-01 00:00:00"}`), 0o644))

	st, err := Open(base, logging.Discard())
	require.NoError(t, err)

	// Sparse files decode to usable empty containers, not nil maps.
	assert.NotNil(t, st.Index().Events)
	assert.NotNil(t, st.Index().SimilarEvents)
	assert.NotNil(t, st.Index().QueryHistory)
	assert.Empty(t, st.AllHistorical())
}

func TestSaveIndex_StampsLastUpdated(t *testing.T) {
	st := openTestStore(t)

	st.now = func() time.Time { return time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC) }

	_, err := st.SaveHistoricalEvent(eventDoc("AAPL", "2024-03-15"))
	require.NoError(t, err)

	assert.Equal(t, "2030-01-02 03:04:05", st.Index().LastUpdated)
}
