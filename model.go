package main

import (
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Params holds every trainable tensor of the model as float64 dense
// tensors. The optimizer mutates them in place; each step mounts them onto
// a fresh expression graph, so the tensors are the durable model state.
type Params struct {
	// encoder
	EncEmb                *tensor.Dense // [V, ni]
	EncWxI, EncWhI, EncBI *tensor.Dense // input gate [ni,nh] [nh,nh] [1,nh]
	EncWxF, EncWhF, EncBF *tensor.Dense // forget gate
	EncWxO, EncWhO, EncBO *tensor.Dense // output gate
	EncWxG, EncWhG, EncBG *tensor.Dense // cell candidate
	WMu, BMu              *tensor.Dense // posterior mean head [nh,nz] [1,nz]
	WLv, BLv              *tensor.Dense // posterior log-variance head

	// decoder; the latent code rides along every input, so Wx is [ni+nz,nh]
	DecEmb                *tensor.Dense // [V, ni]
	DecWxI, DecWhI, DecBI *tensor.Dense
	DecWxF, DecWhF, DecBF *tensor.Dense
	DecWxO, DecWhO, DecBO *tensor.Dense
	DecWxG, DecWhG, DecBG *tensor.Dense
	WZ, BZ                *tensor.Dense // latent to initial cell [nz,nh] [1,nh]
	WP, BP                *tensor.Dense // output projection [nh,V] [1,V]
}

// NewParams builds and initializes all parameters from the run's RNG:
// embeddings uniform in [-0.1, 0.1], weights uniform in [-0.01, 0.01],
// biases zero. Construction order is fixed so a given seed always yields
// the same model.
func NewParams(cfg *Config, vocabSize int, rng *rand.Rand) *Params {
	uni := func(lo, hi float64, rows, cols int) *tensor.Dense {
		data := make([]float64, rows*cols)
		for i := range data {
			data[i] = lo + (hi-lo)*rng.Float64()
		}
		return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(data))
	}
	weight := func(rows, cols int) *tensor.Dense { return uni(-0.01, 0.01, rows, cols) }
	emb := func(rows, cols int) *tensor.Dense { return uni(-0.1, 0.1, rows, cols) }
	zeros := func(rows, cols int) *tensor.Dense {
		return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(make([]float64, rows*cols)))
	}

	v, ni, nh, nz := vocabSize, cfg.NI, cfg.NH, cfg.NZ
	p := &Params{}

	p.EncEmb = emb(v, ni)
	p.EncWxI, p.EncWhI, p.EncBI = weight(ni, nh), weight(nh, nh), zeros(1, nh)
	p.EncWxF, p.EncWhF, p.EncBF = weight(ni, nh), weight(nh, nh), zeros(1, nh)
	p.EncWxO, p.EncWhO, p.EncBO = weight(ni, nh), weight(nh, nh), zeros(1, nh)
	p.EncWxG, p.EncWhG, p.EncBG = weight(ni, nh), weight(nh, nh), zeros(1, nh)
	p.WMu, p.BMu = weight(nh, nz), zeros(1, nz)
	p.WLv, p.BLv = weight(nh, nz), zeros(1, nz)

	p.DecEmb = emb(v, ni)
	p.DecWxI, p.DecWhI, p.DecBI = weight(ni+nz, nh), weight(nh, nh), zeros(1, nh)
	p.DecWxF, p.DecWhF, p.DecBF = weight(ni+nz, nh), weight(nh, nh), zeros(1, nh)
	p.DecWxO, p.DecWhO, p.DecBO = weight(ni+nz, nh), weight(nh, nh), zeros(1, nh)
	p.DecWxG, p.DecWhG, p.DecBG = weight(ni+nz, nh), weight(nh, nh), zeros(1, nh)
	p.WZ, p.BZ = weight(nz, nh), zeros(1, nh)
	p.WP, p.BP = weight(nh, v), zeros(1, v)

	return p
}

type paramEntry struct {
	name string
	t    *tensor.Dense
}

// entries enumerates the parameters in canonical order. The optimizer's
// adaptive state is positional, so this order must never change within or
// across steps.
func (p *Params) entries() []paramEntry {
	return []paramEntry{
		{"enc_emb", p.EncEmb},
		{"enc_wxi", p.EncWxI}, {"enc_whi", p.EncWhI}, {"enc_bi", p.EncBI},
		{"enc_wxf", p.EncWxF}, {"enc_whf", p.EncWhF}, {"enc_bf", p.EncBF},
		{"enc_wxo", p.EncWxO}, {"enc_who", p.EncWhO}, {"enc_bo", p.EncBO},
		{"enc_wxg", p.EncWxG}, {"enc_whg", p.EncWhG}, {"enc_bg", p.EncBG},
		{"w_mu", p.WMu}, {"b_mu", p.BMu},
		{"w_lv", p.WLv}, {"b_lv", p.BLv},
		{"dec_emb", p.DecEmb},
		{"dec_wxi", p.DecWxI}, {"dec_whi", p.DecWhI}, {"dec_bi", p.DecBI},
		{"dec_wxf", p.DecWxF}, {"dec_whf", p.DecWhF}, {"dec_bf", p.DecBF},
		{"dec_wxo", p.DecWxO}, {"dec_who", p.DecWhO}, {"dec_bo", p.DecBO},
		{"dec_wxg", p.DecWxG}, {"dec_whg", p.DecWhG}, {"dec_bg", p.DecBG},
		{"w_z", p.WZ}, {"b_z", p.BZ},
		{"w_p", p.WP}, {"b_p", p.BP},
	}
}

// graphParams mirrors Params as nodes mounted on one expression graph.
type graphParams struct {
	encEmb             *gorgonia.Node
	enc                lstmGates
	wmu, bmu, wlv, blv *gorgonia.Node

	decEmb         *gorgonia.Node
	dec            lstmGates
	wz, bz, wp, bp *gorgonia.Node

	all gorgonia.Nodes // mount order matches Params.entries
}

// mount attaches every parameter tensor to g. The nodes share the tensors'
// backing memory, so solver steps persist across graphs.
func (p *Params) mount(g *gorgonia.ExprGraph) *graphParams {
	gp := &graphParams{}
	mk := func(name string, t *tensor.Dense) *gorgonia.Node {
		n := gorgonia.NodeFromAny(g, t, gorgonia.WithName(name))
		gp.all = append(gp.all, n)
		return n
	}

	gp.encEmb = mk("enc_emb", p.EncEmb)
	gp.enc = lstmGates{
		wxi: mk("enc_wxi", p.EncWxI), whi: mk("enc_whi", p.EncWhI), bi: mk("enc_bi", p.EncBI),
		wxf: mk("enc_wxf", p.EncWxF), whf: mk("enc_whf", p.EncWhF), bf: mk("enc_bf", p.EncBF),
		wxo: mk("enc_wxo", p.EncWxO), who: mk("enc_who", p.EncWhO), bo: mk("enc_bo", p.EncBO),
		wxg: mk("enc_wxg", p.EncWxG), whg: mk("enc_whg", p.EncWhG), bg: mk("enc_bg", p.EncBG),
	}
	gp.wmu = mk("w_mu", p.WMu)
	gp.bmu = mk("b_mu", p.BMu)
	gp.wlv = mk("w_lv", p.WLv)
	gp.blv = mk("b_lv", p.BLv)

	gp.decEmb = mk("dec_emb", p.DecEmb)
	gp.dec = lstmGates{
		wxi: mk("dec_wxi", p.DecWxI), whi: mk("dec_whi", p.DecWhI), bi: mk("dec_bi", p.DecBI),
		wxf: mk("dec_wxf", p.DecWxF), whf: mk("dec_whf", p.DecWhF), bf: mk("dec_bf", p.DecBF),
		wxo: mk("dec_wxo", p.DecWxO), who: mk("dec_who", p.DecWhO), bo: mk("dec_bo", p.DecBO),
		wxg: mk("dec_wxg", p.DecWxG), whg: mk("dec_whg", p.DecWhG), bg: mk("dec_bg", p.DecBG),
	}
	gp.wz = mk("w_z", p.WZ)
	gp.bz = mk("b_z", p.BZ)
	gp.wp = mk("w_p", p.WP)
	gp.bp = mk("b_p", p.BP)

	return gp
}
