package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryAppendWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.history.json")
	h := NewHistory(path)

	require.NoError(t, h.Append(EvalRecord{Epoch: 0, AvgLoss: 3.2, KL: 0.1, NLL: 3.2, PPL: 24.5, LR: 1.0}))
	require.NoError(t, h.Append(EvalRecord{Epoch: 1, AvgLoss: 3.0, KL: 0.2, NLL: 3.0, PPL: 20.1, LR: 0.5}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []EvalRecord
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Equal(t, h.Rows, rows)
}

func TestHistoryWithoutPathStaysInMemory(t *testing.T) {
	h := NewHistory("")
	require.NoError(t, h.Append(EvalRecord{Epoch: 0, AvgLoss: 1}))
	assert.Len(t, h.Rows, 1)
}
