package main

import (
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
)

// OptimKind selects the gradient-descent strategy. The string flag is
// resolved into this once at startup; the loop never re-parses it.
type OptimKind int

const (
	OptimSGD OptimKind = iota
	OptimAdam
)

func ParseOptim(s string) (OptimKind, error) {
	switch s {
	case "sgd":
		return OptimSGD, nil
	case "adam":
		return OptimAdam, nil
	}
	return 0, errors.Errorf("unknown optimizer %q (want sgd or adam)", s)
}

func (k OptimKind) String() string {
	if k == OptimSGD {
		return "sgd"
	}
	return "adam"
}

// Adam moments run with beta1 0.5 instead of the usual 0.9.
const (
	adamBeta1 = 0.5
	adamBeta2 = 0.999
	adamEps   = 1e-8
)

// NewSolver builds a fresh solver at the given rate. Swapping solvers on
// decay discards adaptive-moment history; callers rely on that.
func (k OptimKind) NewSolver(lr float64) gorgonia.Solver {
	if k == OptimSGD {
		return gorgonia.NewVanillaSolver(gorgonia.WithLearnRate(lr))
	}
	return gorgonia.NewAdamSolver(
		gorgonia.WithLearnRate(lr),
		gorgonia.WithBeta1(adamBeta1),
		gorgonia.WithBeta2(adamBeta2),
		gorgonia.WithEps(adamEps),
	)
}
