package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestGlobalClipScalesWhenOverLimit(t *testing.T) {
	a := []float64{3, 0}
	b := []float64{0, 4}
	norm := globalClip([][]float64{a, b}, 2.5) // combined norm 5

	assert.InDelta(t, 5.0, norm, 1e-12)
	assert.InDelta(t, 1.5, a[0], 1e-12)
	assert.InDelta(t, 2.0, b[1], 1e-12)
}

func TestGlobalClipLeavesSmallGradientsAlone(t *testing.T) {
	a := []float64{0.3, 0.4}
	norm := globalClip([][]float64{a}, 5.0)

	assert.InDelta(t, 0.5, norm, 1e-12)
	assert.Equal(t, []float64{0.3, 0.4}, a)
}

func TestGlobalClipDisabledByZeroLimit(t *testing.T) {
	a := []float64{30, 40}
	globalClip([][]float64{a}, 0)
	assert.Equal(t, []float64{30, 40}, a)
}

func TestClipGradNormOnGraph(t *testing.T) {
	g := gorgonia.NewGraph()
	w := gorgonia.NodeFromAny(g, tensor.New(
		tensor.WithShape(1, 2),
		tensor.WithBacking([]float64{3, 4}),
	), gorgonia.WithName("w"))
	loss := gorgonia.Must(gorgonia.Sum(gorgonia.Must(gorgonia.Square(w))))

	_, err := gorgonia.Grad(loss, w)
	require.NoError(t, err)

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(w))
	defer vm.Close()
	require.NoError(t, vm.RunAll())

	// dLoss/dw = 2w = (6, 8), norm 10, clipped down to 5
	norm, err := clipGradNorm(gorgonia.Nodes{w}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, norm, 1e-9)

	gv, err := w.Grad()
	require.NoError(t, err)
	data := gv.Data().([]float64)
	assert.InDelta(t, 3.0, data[0], 1e-9)
	assert.InDelta(t, 4.0, data[1], 1e-9)
}
