package main

import (
	"fmt"
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// decode computes the teacher-forced reconstruction loss for one latent
// sample z [B, nz] and returns a [B] vector: each sequence's negative
// log-likelihood summed over its len-1 predicted positions. Position t
// reads token t and predicts token t+1, with z concatenated to every input.
//
// sample tags node names so repeated draws can share one graph.
func decode(g *gorgonia.ExprGraph, gp *graphParams, b *Batch, z *gorgonia.Node, sample int, train bool, cfg *Config, rng *rand.Rand) *gorgonia.Node {
	B := b.Size()
	steps := b.T - 1
	vocab := gp.decEmb.Shape()[0]
	ni := gp.decEmb.Shape()[1]
	nh := gp.dec.whi.Shape()[0]

	name := func(base string) string { return fmt.Sprintf("%s_%d", base, sample) }

	// initial state comes from the latent code
	c := affine(z, gp.wz, gp.bz)
	h := gorgonia.Must(gorgonia.Tanh(c))

	outs := make(gorgonia.Nodes, 0, steps)
	for t := 0; t < steps; t++ {
		oneHot := gorgonia.NodeFromAny(g, b.StepOneHot(t, vocab),
			gorgonia.WithName(name(fmt.Sprintf("dec_in_%d", t))))
		xt := gorgonia.Must(gorgonia.Mul(oneHot, gp.decEmb)) // [B, ni]

		if train && cfg.DecDropoutIn > 0 {
			mask := dropoutMask(B, ni, cfg.DecDropoutIn, rng)
			mn := gorgonia.NodeFromAny(g, mask, gorgonia.WithName(name(fmt.Sprintf("dec_drop_in_%d", t))))
			xt = gorgonia.Must(gorgonia.HadamardProd(xt, mn))
		}

		xt = gorgonia.Must(gorgonia.Concat(1, xt, z)) // [B, ni+nz]
		h, c = lstmStep(xt, h, c, gp.dec)
		outs = append(outs, h)
	}
	out := outs[0]
	if steps > 1 {
		out = gorgonia.Must(gorgonia.Concat(0, outs...)) // [steps*B, nh], row t*B+i
	}

	if train && cfg.DecDropoutOut > 0 {
		mask := dropoutMask(steps*B, nh, cfg.DecDropoutOut, rng)
		mn := gorgonia.NodeFromAny(g, mask, gorgonia.WithName(name("dec_drop_out")))
		out = gorgonia.Must(gorgonia.HadamardProd(out, mn))
	}

	logits := affine(out, gp.wp, gp.bp) // [steps*B, V]
	logp := logProbs(logits)

	// Target rows are one-hot for real positions and all-zero past each
	// sequence's end, so padded positions select nothing and drop out of
	// the loss without a separate mask.
	targets := gorgonia.NodeFromAny(g, b.TargetOneHot(vocab), gorgonia.WithName(name("dec_tgt")))
	picked := gorgonia.Must(gorgonia.Sum(gorgonia.Must(gorgonia.HadamardProd(logp, targets)), 1))

	perStep := gorgonia.Must(gorgonia.Reshape(picked, tensor.Shape{steps, B}))
	perSeq := gorgonia.Must(gorgonia.Sum(perStep, 0)) // [B]
	return gorgonia.Must(gorgonia.Neg(perSeq))
}
