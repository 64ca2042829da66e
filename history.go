package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// EvalRecord is one evaluation outcome as written to the run history.
type EvalRecord struct {
	Epoch   int     `json:"epoch"`
	AvgLoss float64 `json:"avg_loss"`
	KL      float64 `json:"kl"`
	NLL     float64 `json:"nll"`
	PPL     float64 `json:"ppl"`
	LR      float64 `json:"lr"`
	Elapsed float64 `json:"elapsed_sec"`
}

// History accumulates evaluation rows and mirrors them to disk, so a run's
// KL trajectory can be inspected while training is still going. An empty
// path keeps the history in memory only.
type History struct {
	path string
	Rows []EvalRecord
}

func NewHistory(path string) *History { return &History{path: path} }

// Append records one evaluation and rewrites the history file.
func (h *History) Append(rec EvalRecord) error {
	h.Rows = append(h.Rows, rec)
	if h.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(h.Rows, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal history")
	}
	if err := os.WriteFile(h.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "write history %s", h.path)
	}
	return nil
}
