package main

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// encode runs the encoder LSTM over the whole padded batch and maps the
// final hidden state to the posterior parameters, each [B, nz]. Padding
// positions are consumed like real tokens; only the decoder's loss mask
// keeps them out of the objective.
func encode(g *gorgonia.ExprGraph, gp *graphParams, b *Batch) (mu, logvar *gorgonia.Node) {
	B, T := b.Size(), b.T
	vocab := gp.encEmb.Shape()[0]
	nh := gp.enc.whi.Shape()[0]

	h := zerosNode(g, "enc_h0", B, nh)
	c := zerosNode(g, "enc_c0", B, nh)
	for t := 0; t < T; t++ {
		oneHot := gorgonia.NodeFromAny(g, b.StepOneHot(t, vocab),
			gorgonia.WithName(fmt.Sprintf("enc_in_%d", t)))
		xt := gorgonia.Must(gorgonia.Mul(oneHot, gp.encEmb)) // [B, ni]
		h, c = lstmStep(xt, h, c, gp.enc)
	}

	mu = affine(h, gp.wmu, gp.bmu)
	logvar = affine(h, gp.wlv, gp.blv)
	return mu, logvar
}
