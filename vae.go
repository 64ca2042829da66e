package main

import (
	"fmt"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// klWeight scales the KL term in the training objective. Annealing is
// disabled in this configuration, so the weight is a constant.
const klWeight = 1.0

// VAE composes the encoder and decoder over one shared parameter set.
// buildLoss is the only place the two halves interact.
type VAE struct {
	cfg    *Config
	vocab  int
	params *Params
}

func NewVAE(cfg *Config, vocabSize int, rng *rand.Rand) *VAE {
	return &VAE{cfg: cfg, vocab: vocabSize, params: NewParams(cfg, vocabSize, rng)}
}

// lossGraph is one mounted pass over a batch. The Value fields are bound
// by Read nodes and hold results after the tape machine runs.
type lossGraph struct {
	g          *gorgonia.ExprGraph
	learnables gorgonia.Nodes

	recVal   gorgonia.Value // summed per-sequence reconstruction loss
	klVal    gorgonia.Value // summed per-sequence KL
	totalVal gorgonia.Value // training objective, train mode only
}

// buildLoss mounts the parameters on a fresh graph and assembles the batch
// loss. nsamples controls how many latent draws estimate the reconstruction
// term; the KL term is closed form and needs none. In train mode the scalar
// objective (rec + klWeight*kl)/B is built and differentiated; in eval mode
// the graph stays forward-only and dropout is skipped.
func (m *VAE) buildLoss(b *Batch, nsamples int, train bool, rng *rand.Rand) (*lossGraph, error) {
	if nsamples < 1 {
		return nil, errors.Errorf("nsamples must be at least 1, got %d", nsamples)
	}
	g := gorgonia.NewGraph()
	gp := m.params.mount(g)
	B := b.Size()

	mu, logvar := encode(g, gp, b)
	kl := gaussianKL(mu, logvar) // [B]

	var rec *gorgonia.Node
	for s := 0; s < nsamples; s++ {
		eps := gaussNoise(B, m.cfg.NZ, rng)
		z := reparam(g, mu, logvar, eps, fmt.Sprintf("eps_%d", s))
		r := decode(g, gp, b, z, s, train, m.cfg, rng) // [B]
		if rec == nil {
			rec = r
		} else {
			rec = gorgonia.Must(gorgonia.Add(rec, r))
		}
	}
	if nsamples > 1 {
		inv := gorgonia.NewConstant(1.0 / float64(nsamples))
		rec = gorgonia.Must(gorgonia.Mul(rec, inv))
	}

	recSum := gorgonia.Must(gorgonia.Sum(rec))
	klSum := gorgonia.Must(gorgonia.Sum(kl))

	lg := &lossGraph{g: g, learnables: gp.all}
	gorgonia.Read(recSum, &lg.recVal)
	gorgonia.Read(klSum, &lg.klVal)

	if train {
		weighted := gorgonia.Must(gorgonia.Mul(klSum, gorgonia.NewConstant(klWeight)))
		total := gorgonia.Must(gorgonia.Add(recSum, weighted))
		total = gorgonia.Must(gorgonia.Mul(total, gorgonia.NewConstant(1.0/float64(B))))
		gorgonia.Read(total, &lg.totalVal)
		if _, err := gorgonia.Grad(total, gp.all...); err != nil {
			return nil, errors.Wrap(err, "build gradient")
		}
	}
	return lg, nil
}

// gaussianKL gives each sequence's KL from N(mu, diag(exp(logvar))) to the
// standard normal prior in closed form, shape [B].
func gaussianKL(mu, logvar *gorgonia.Node) *gorgonia.Node {
	sum := gorgonia.Must(gorgonia.Add(
		gorgonia.Must(gorgonia.Square(mu)),
		gorgonia.Must(gorgonia.Exp(logvar)),
	))
	sum = gorgonia.Must(gorgonia.Sub(sum, logvar))
	sum = gorgonia.Must(gorgonia.Sub(sum, gorgonia.NewConstant(1.0)))
	perSeq := gorgonia.Must(gorgonia.Sum(sum, 1)) // [B]
	return gorgonia.Must(gorgonia.Mul(perSeq, gorgonia.NewConstant(0.5)))
}

// reparam draws z = mu + exp(logvar/2) .* eps with eps supplied by the
// caller, keeping all randomness under the run's own RNGs.
func reparam(g *gorgonia.ExprGraph, mu, logvar *gorgonia.Node, eps *tensor.Dense, name string) *gorgonia.Node {
	en := gorgonia.NodeFromAny(g, eps, gorgonia.WithName(name))
	std := gorgonia.Must(gorgonia.Exp(gorgonia.Must(gorgonia.Mul(logvar, gorgonia.NewConstant(0.5)))))
	return gorgonia.Must(gorgonia.Add(mu, gorgonia.Must(gorgonia.HadamardProd(std, en))))
}

// logProbs turns logits into row-wise log-probabilities. The epsilon keeps
// fully confident rows away from log(0).
func logProbs(logits *gorgonia.Node) *gorgonia.Node {
	sm := gorgonia.Must(gorgonia.SoftMax(logits, 1))
	guarded := gorgonia.Must(gorgonia.Add(sm, gorgonia.NewConstant(1e-12)))
	return gorgonia.Must(gorgonia.Log(guarded))
}

// gaussNoise fills a [rows, cols] tensor with standard normal draws.
func gaussNoise(rows, cols int, rng *rand.Rand) *tensor.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

// dropoutMask draws an inverted-dropout mask: zero with probability p and
// 1/(1-p) otherwise, so activations keep their expected scale.
func dropoutMask(rows, cols int, p float64, rng *rand.Rand) *tensor.Dense {
	keep := 1.0 / (1.0 - p)
	data := make([]float64, rows*cols)
	for i := range data {
		if rng.Float64() >= p {
			data[i] = keep
		}
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
}

// scalarValue unwraps a scalar result read from a graph.
func scalarValue(v gorgonia.Value) float64 {
	return v.Data().(float64)
}
