package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
)

func tinyConfig() *Config {
	return &Config{
		NZ: 2, NI: 3, NH: 4,
		DecDropoutIn: 0.5, DecDropoutOut: 0.5,
		LR: 0.01, LRDecay: 0.5, ClipGrad: 5.0,
		Optim: "adam", Epochs: 1, BatchSize: 2,
		NIter: 1, NEpoch: 1, Seed: 783435,
	}
}

func TestNewParamsShapes(t *testing.T) {
	cfg := tinyConfig()
	p := NewParams(cfg, 7, rand.New(rand.NewSource(cfg.Seed)))

	assert.Equal(t, []int{7, 3}, []int(p.EncEmb.Shape()))
	assert.Equal(t, []int{3, 4}, []int(p.EncWxI.Shape()))
	assert.Equal(t, []int{4, 4}, []int(p.EncWhG.Shape()))
	assert.Equal(t, []int{1, 4}, []int(p.EncBO.Shape()))
	assert.Equal(t, []int{4, 2}, []int(p.WMu.Shape()))
	assert.Equal(t, []int{4, 2}, []int(p.WLv.Shape()))
	assert.Equal(t, []int{7, 3}, []int(p.DecEmb.Shape()))
	assert.Equal(t, []int{5, 4}, []int(p.DecWxF.Shape())) // ni+nz input width
	assert.Equal(t, []int{2, 4}, []int(p.WZ.Shape()))
	assert.Equal(t, []int{4, 7}, []int(p.WP.Shape()))
	assert.Equal(t, []int{1, 7}, []int(p.BP.Shape()))
}

func TestNewParamsInitRanges(t *testing.T) {
	cfg := tinyConfig()
	p := NewParams(cfg, 50, rand.New(rand.NewSource(1)))

	for _, x := range p.EncEmb.Data().([]float64) {
		assert.LessOrEqual(t, x, 0.1)
		assert.GreaterOrEqual(t, x, -0.1)
	}
	for _, x := range p.EncWxI.Data().([]float64) {
		assert.LessOrEqual(t, x, 0.01)
		assert.GreaterOrEqual(t, x, -0.01)
	}
	for _, x := range p.DecBI.Data().([]float64) {
		assert.Zero(t, x)
	}
}

func TestNewParamsSeedReproducible(t *testing.T) {
	cfg := tinyConfig()
	p1 := NewParams(cfg, 7, rand.New(rand.NewSource(9)))
	p2 := NewParams(cfg, 7, rand.New(rand.NewSource(9)))

	e1, e2 := p1.entries(), p2.entries()
	require.Len(t, e2, len(e1))
	for i := range e1 {
		assert.Equal(t, e1[i].t.Data().([]float64), e2[i].t.Data().([]float64), e1[i].name)
	}
}

func TestMountMatchesEntriesOrder(t *testing.T) {
	cfg := tinyConfig()
	p := NewParams(cfg, 7, rand.New(rand.NewSource(1)))

	g := gorgonia.NewGraph()
	gp := p.mount(g)

	entries := p.entries()
	require.Len(t, gp.all, len(entries))
	for i, e := range entries {
		assert.Equal(t, e.name, gp.all[i].Name())
		assert.Equal(t, []int(e.t.Shape()), []int(gp.all[i].Shape()))
	}
}
