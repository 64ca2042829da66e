package main

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := tinyConfig()
	p1 := NewParams(cfg, 7, rand.New(rand.NewSource(11)))
	p2 := NewParams(cfg, 7, rand.New(rand.NewSource(22)))

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, SaveParams(p1, path))
	require.NoError(t, LoadParams(p2, path))

	e1, e2 := p1.entries(), p2.entries()
	for i := range e1 {
		assert.Equal(t, e1[i].t.Data().([]float64), e2[i].t.Data().([]float64), e1[i].name)
	}
}

func TestLoadParamsKeepsTensorIdentity(t *testing.T) {
	cfg := tinyConfig()
	p1 := NewParams(cfg, 7, rand.New(rand.NewSource(1)))
	p2 := NewParams(cfg, 7, rand.New(rand.NewSource(2)))

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, SaveParams(p1, path))

	before := p2.WMu
	require.NoError(t, LoadParams(p2, path))
	assert.Same(t, before, p2.WMu)
}

func TestLoadParamsMissingFile(t *testing.T) {
	cfg := tinyConfig()
	p := NewParams(cfg, 7, rand.New(rand.NewSource(1)))
	assert.Error(t, LoadParams(p, filepath.Join(t.TempDir(), "nope.bin")))
}

func TestLoadParamsShapeMismatch(t *testing.T) {
	cfg := tinyConfig()
	p1 := NewParams(cfg, 7, rand.New(rand.NewSource(1)))
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, SaveParams(p1, path))

	wider := tinyConfig()
	wider.NH = cfg.NH + 1
	p2 := NewParams(wider, 7, rand.New(rand.NewSource(1)))

	err := LoadParams(p2, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape")
}
