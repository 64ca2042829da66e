package main

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// savedTensor is the on-disk form of one parameter.
type savedTensor struct {
	Name  string
	Shape []int
	Data  []float64
}

// SaveParams writes every parameter to path with encoding/gob. The file is
// self-describing by name and shape, so loading does not depend on field
// order.
func SaveParams(p *Params, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create checkpoint %s", path)
	}

	recs := make([]savedTensor, 0, len(p.entries()))
	for _, e := range p.entries() {
		recs = append(recs, savedTensor{
			Name:  e.name,
			Shape: []int(e.t.Shape()),
			Data:  append([]float64(nil), e.t.Data().([]float64)...),
		})
	}
	if err := gob.NewEncoder(f).Encode(recs); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode checkpoint %s", path)
	}
	return errors.Wrapf(f.Close(), "close checkpoint %s", path)
}

// LoadParams restores a checkpoint into p. Data is copied into the existing
// tensors so anything already holding them stays valid.
func LoadParams(p *Params, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open checkpoint %s", path)
	}
	defer f.Close()

	var recs []savedTensor
	if err := gob.NewDecoder(f).Decode(&recs); err != nil {
		return errors.Wrapf(err, "decode checkpoint %s", path)
	}
	byName := make(map[string]savedTensor, len(recs))
	for _, r := range recs {
		byName[r.Name] = r
	}
	for _, e := range p.entries() {
		r, ok := byName[e.name]
		if !ok {
			return errors.Errorf("checkpoint %s is missing %s", path, e.name)
		}
		if !tensor.Shape(r.Shape).Eq(e.t.Shape()) {
			return errors.Errorf("checkpoint %s: %s has shape %v, want %v",
				path, e.name, r.Shape, e.t.Shape())
		}
		copy(e.t.Data().([]float64), r.Data)
	}
	return nil
}
