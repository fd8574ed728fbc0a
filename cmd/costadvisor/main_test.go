package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWhatIfCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"whatif", "--material", "200000", "--labor", "300000", "--reliability", "8", "--terrain", "urban"})
	require.NoError(t, root.Execute())

	var est struct {
		PredictedCost     float64 `json:"predicted_cost"`
		PredictedTimeline int     `json:"predicted_timeline"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &est))
	require.InDelta(t, 715000, est.PredictedCost, 1e-6)
	require.Equal(t, 72, est.PredictedTimeline)
}

func TestWhatIfCommand_RejectsSoftwareTerrain(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"whatif", "--material", "1", "--labor", "1", "--terrain", "na_software"})
	require.Error(t, root.Execute())
}

func TestEnsureDBDir(t *testing.T) {
	require.NoError(t, ensureDBDir(":memory:"))
	require.NoError(t, ensureDBDir("local.db"))

	path := filepath.Join(t.TempDir(), "nested", "data", "costadvisor.db")
	require.NoError(t, ensureDBDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}
