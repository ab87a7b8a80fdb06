// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snlongmore/morning-report/pkg/types"
)

func TestLoadMissingFileIsEmptyHistory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "ads_history.json"))

	history, err := store.Load()

	require.NoError(t, err)
	assert.Empty(t, history)
	assert.NotNil(t, history)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "briefings", "ads_history.json"))
	history := types.MetricsHistory{
		"2026-02-24": snapshot(38, 62, 82, 5000, 3000, 142),
		"2026-02-25": snapshot(38, 62, 82, 5010, 3004, 142),
	}

	require.NoError(t, store.Save(history))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, history, loaded)
}

func TestLoadCorruptFileIsHardError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ads_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing metrics history")
}

func TestLoadAcceptsPythonHistoryFile(t *testing.T) {
	// Format written by the original briefing system: section names with
	// spaces, mixed int and float values, the odd non-numeric member.
	raw := `{
	  "2026-02-24": {
	    "indicators": {"h": 38, "m": 1.73, "skipped bibcodes": ["x"]},
	    "citation stats": {"total number of citations": 5000},
	    "basic stats": {"number of papers": 142}
	  }
	}`
	path := filepath.Join(t.TempDir(), "ads_history.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	history, err := NewStore(path).Load()

	require.NoError(t, err)
	require.Contains(t, history, "2026-02-24")
	snap := history["2026-02-24"]
	assert.Equal(t, 38.0, snap.Indicators["h"])
	assert.Equal(t, 1.73, snap.Indicators["m"])
	assert.NotContains(t, snap.Indicators, "skipped bibcodes")
	assert.Equal(t, 5000.0, snap.CitationStats["total number of citations"])
}

func TestRecordOverwritesSameDate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "ads_history.json"))
	history := types.MetricsHistory{
		"2026-02-26": snapshot(38, 62, 82, 5000, 3000, 142),
	}

	require.NoError(t, store.Record("2026-02-26", snapshot(39, 62, 82, 5001, 3000, 142), history))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 39.0, loaded["2026-02-26"].Indicators["h"])
}

func TestRecordAppendsNewDate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "ads_history.json"))
	history := types.MetricsHistory{
		"2026-02-25": snapshot(38, 62, 82, 5000, 3000, 142),
	}

	require.NoError(t, store.Record("2026-02-26", snapshot(39, 62, 82, 5050, 3010, 143), history))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}
