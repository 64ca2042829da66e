package main

import (
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// lstmGates bundles the parameter nodes of one LSTM layer, one weight set
// per gate rather than a fused block.
type lstmGates struct {
	wxi, whi, bi *gorgonia.Node
	wxf, whf, bf *gorgonia.Node
	wxo, who, bo *gorgonia.Node
	wxg, whg, bg *gorgonia.Node
}

// lstmStep advances one timestep of a standard LSTM (no peepholes).
// x is [B, in], h and c are [B, nh]; returns the new h and c.
func lstmStep(x, h, c *gorgonia.Node, gs lstmGates) (*gorgonia.Node, *gorgonia.Node) {
	pre := func(wx, wh, b *gorgonia.Node) *gorgonia.Node {
		s := gorgonia.Must(gorgonia.Add(
			gorgonia.Must(gorgonia.Mul(x, wx)),
			gorgonia.Must(gorgonia.Mul(h, wh)),
		))
		return gorgonia.Must(gorgonia.BroadcastAdd(s, b, nil, []byte{0}))
	}

	i := gorgonia.Must(gorgonia.Sigmoid(pre(gs.wxi, gs.whi, gs.bi)))
	f := gorgonia.Must(gorgonia.Sigmoid(pre(gs.wxf, gs.whf, gs.bf)))
	o := gorgonia.Must(gorgonia.Sigmoid(pre(gs.wxo, gs.who, gs.bo)))
	g := gorgonia.Must(gorgonia.Tanh(pre(gs.wxg, gs.whg, gs.bg)))

	cNew := gorgonia.Must(gorgonia.Add(
		gorgonia.Must(gorgonia.HadamardProd(f, c)),
		gorgonia.Must(gorgonia.HadamardProd(i, g)),
	))
	hNew := gorgonia.Must(gorgonia.HadamardProd(o, gorgonia.Must(gorgonia.Tanh(cNew))))
	return hNew, cNew
}

// zerosNode mounts a [rows, cols] zero matrix as a graph input.
func zerosNode(g *gorgonia.ExprGraph, name string, rows, cols int) *gorgonia.Node {
	z := tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(make([]float64, rows*cols)))
	return gorgonia.NodeFromAny(g, z, gorgonia.WithName(name))
}

// affine computes x*w + b with the bias row broadcast over the batch.
func affine(x, w, b *gorgonia.Node) *gorgonia.Node {
	return gorgonia.Must(gorgonia.BroadcastAdd(gorgonia.Must(gorgonia.Mul(x, w)), b, nil, []byte{0}))
}
