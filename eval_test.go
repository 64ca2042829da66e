package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateIdempotentAndSideEffectFree(t *testing.T) {
	cfg, m, _, testC, _ := newToyRun(t)

	snapshot := make(map[string][]float64)
	for _, e := range m.params.entries() {
		snapshot[e.name] = append([]float64(nil), e.t.Data().([]float64)...)
	}

	r1, err := Evaluate(m, testC, cfg)
	require.NoError(t, err)
	r2, err := Evaluate(m, testC, cfg)
	require.NoError(t, err)

	assert.Equal(t, r1, r2, "repeated evaluation of a frozen model must match exactly")
	for _, e := range m.params.entries() {
		assert.Equal(t, snapshot[e.name], e.t.Data().([]float64), e.name)
	}
}

func TestEvaluateAverages(t *testing.T) {
	cfg, m, _, testC, _ := newToyRun(t)

	res, err := Evaluate(m, testC, cfg)
	require.NoError(t, err)

	assert.Equal(t, res.AvgLoss, res.NLL)
	assert.GreaterOrEqual(t, res.KL, 0.0)
	assert.GreaterOrEqual(t, res.PPL, 1.0)
}
