package journal_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/journal"
)

func TestWriter_WriteDecision_PersistsJSONAndIncrementsSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	w := journal.NewWriter(dir)

	path1, err := w.WriteDecision(&journal.DecisionRecord{Wallet: "0xabc", MarketID: "m1", Executed: true})
	require.NoError(t, err)
	path2, err := w.WriteDecision(&journal.DecisionRecord{Wallet: "0xabc", MarketID: "m2", Executed: false})
	require.NoError(t, err)
	assert.NotEqual(t, path1, path2)

	data, err := os.ReadFile(path2)
	require.NoError(t, err)
	var rec journal.DecisionRecord
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Equal(t, "m2", rec.MarketID)
	assert.Equal(t, 2, rec.SequenceNum)
}

func TestWriter_WriteDecision_RejectsNilRecord(t *testing.T) {
	w := journal.NewWriter(t.TempDir())
	_, err := w.WriteDecision(nil)
	assert.Error(t, err)
}

func TestNewWriter_DefaultsDirWhenEmpty(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer func() { _ = os.Chdir(wd) }()

	journal.NewWriter("")
	info, err := os.Stat("journal")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
