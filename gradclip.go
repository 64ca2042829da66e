package main

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gorgonia.org/gorgonia"
)

// clipGradNorm rescales every gradient in place so their combined L2 norm
// is at most clip, mirroring clip-by-global-norm. A non-positive clip
// disables rescaling. Returns the norm seen before any scaling.
func clipGradNorm(learnables gorgonia.Nodes, clip float64) (float64, error) {
	grads := make([][]float64, 0, len(learnables))
	for _, n := range learnables {
		gv, err := n.Grad()
		if err != nil {
			return 0, errors.Wrapf(err, "gradient of %s", n.Name())
		}
		grads = append(grads, gv.Data().([]float64))
	}
	return globalClip(grads, clip), nil
}

// globalClip computes the L2 norm over all slices and, when it exceeds
// clip, scales every slice in place by clip/norm.
func globalClip(grads [][]float64, clip float64) float64 {
	var sq float64
	for _, data := range grads {
		sq += floats.Dot(data, data)
	}
	norm := math.Sqrt(sq)
	if clip > 0 && norm > clip {
		scale := clip / norm
		for _, data := range grads {
			floats.Scale(scale, data)
		}
	}
	return norm
}
