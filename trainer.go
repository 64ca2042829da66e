package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"gorgonia.org/gorgonia"
)

// BestRecord tracks the strongest evaluation seen so far. Loss starts at
// +Inf so the first evaluation always becomes the baseline.
type BestRecord struct {
	Loss float64
	NLL  float64
	KL   float64
	PPL  float64
}

// Trainer owns all mutable state of one run: the model, optimizer, counters
// and the best record. Everything the loop touches lives here rather than
// in enclosing scopes.
type Trainer struct {
	cfg     *Config
	vae     *VAE
	train   *Corpus
	test    *Corpus
	optim   OptimKind
	solver  gorgonia.Solver
	lr      float64
	rng     *rand.Rand
	history *History

	iter  int // global step counter across epochs
	evals int // evaluation passes run
	best  BestRecord
	start time.Time
}

func NewTrainer(cfg *Config, m *VAE, train, test *Corpus, optim OptimKind, rng *rand.Rand) *Trainer {
	return &Trainer{
		cfg:     cfg,
		vae:     m,
		train:   train,
		test:    test,
		optim:   optim,
		solver:  optim.NewSolver(cfg.LR),
		lr:      cfg.LR,
		rng:     rng,
		history: NewHistory(cfg.HistoryPath()),
		best:    BestRecord{Loss: math.Inf(1)},
	}
}

// Run executes the full training schedule. Every nepoch epochs the model is
// evaluated on held-out data and checkpointed on improvement; the learning
// rate decays on the epochs/5 schedule. Any fault is terminal.
func (t *Trainer) Run() (BestRecord, error) {
	schedule := t.cfg.Epochs / 5
	t.start = time.Now()

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if err := t.runEpoch(epoch); err != nil {
			return t.best, err
		}

		if epoch%t.cfg.NEpoch == 0 {
			fmt.Printf("kl weight %.4f\n", klWeight)
			fmt.Printf("epoch: %d, testing\n", epoch)
			res, err := Evaluate(t.vae, t.test, t.cfg)
			if err != nil {
				return t.best, err
			}
			t.evals++
			if err := t.recordEval(epoch, res); err != nil {
				return t.best, err
			}
		}

		if schedule > 0 && (epoch+1)%schedule == 0 {
			t.decayLR()
		}
	}

	fmt.Printf("best_loss: %.4f, kl: %.4f, nll: %.4f, ppl: %.4f\n",
		t.best.Loss, t.best.KL, t.best.NLL, t.best.PPL)
	return t.best, nil
}

// runEpoch trains over one shuffled pass of the corpus, accumulating the
// epoch counters and reporting running averages every niter steps.
func (t *Trainer) runEpoch(epoch int) error {
	var recLoss, klLoss float64
	var numWords, numSents int

	var bar *progressbar.ProgressBar
	if t.cfg.Progress {
		bar = progressbar.NewOptions(t.train.NumBatches(t.cfg.BatchSize),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("epoch %d", epoch)),
		)
	}

	it := t.train.Batches(t.cfg.BatchSize, t.rng)
	for b := it.Next(); b != nil; b = it.Next() {
		numWords += b.Words()
		numSents += b.Size()

		rec, kl, err := t.step(b)
		if err != nil {
			return errors.Wrapf(err, "epoch %d iter %d", epoch, t.iter)
		}
		recLoss += rec
		klLoss += kl

		if t.iter%t.cfg.NIter == 0 {
			trainLoss := (recLoss + klLoss) / float64(numSents)
			fmt.Printf("epoch: %d, iter: %d, avg_loss: %.4f, kl: %.4f, recon: %.4f, time elapsed %.2fs\n",
				epoch, t.iter, trainLoss, klLoss/float64(numSents), recLoss/float64(numSents),
				time.Since(t.start).Seconds())
		}
		t.iter++

		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Fprintln(os.Stderr)
	}
	return nil
}

// step runs one forward/backward pass, clips the global gradient norm and
// applies the optimizer. A non-finite objective aborts before any update so
// the parameters stay usable.
func (t *Trainer) step(b *Batch) (rec, kl float64, err error) {
	lg, err := t.vae.buildLoss(b, 1, true, t.rng)
	if err != nil {
		return 0, 0, err
	}
	vm := gorgonia.NewTapeMachine(lg.g, gorgonia.BindDualValues(lg.learnables...))
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return 0, 0, errors.Wrap(err, "training pass")
	}

	rec = scalarValue(lg.recVal)
	kl = scalarValue(lg.klVal)
	if obj := scalarValue(lg.totalVal); math.IsNaN(obj) || math.IsInf(obj, 0) {
		return rec, kl, errors.Errorf("batch loss is not finite: %v", obj)
	}

	if _, err := clipGradNorm(lg.learnables, t.cfg.ClipGrad); err != nil {
		return rec, kl, err
	}
	if err := t.solver.Step(gorgonia.NodesToValueGrads(lg.learnables)); err != nil {
		return rec, kl, errors.Wrap(err, "optimizer step")
	}
	return rec, kl, nil
}

// recordEval appends the evaluation to the history and, when the loss
// strictly improves on the best record, persists the parameters. Ties never
// save.
func (t *Trainer) recordEval(epoch int, res EvalResult) error {
	if err := t.history.Append(EvalRecord{
		Epoch:   epoch,
		AvgLoss: res.AvgLoss,
		KL:      res.KL,
		NLL:     res.NLL,
		PPL:     res.PPL,
		LR:      t.lr,
		Elapsed: time.Since(t.start).Seconds(),
	}); err != nil {
		return err
	}

	if res.AvgLoss < t.best.Loss {
		fmt.Println("update best loss")
		t.best = BestRecord{Loss: res.AvgLoss, NLL: res.NLL, KL: res.KL, PPL: res.PPL}
		if t.cfg.SavePath != "" {
			if err := SaveParams(t.vae.params, t.cfg.SavePath); err != nil {
				return err
			}
			log.Info().Str("path", t.cfg.SavePath).Float64("loss", res.AvgLoss).Msg("checkpoint saved")
		}
	}
	return nil
}

// decayLR multiplies the rate by lr_decay and swaps in a fresh solver,
// discarding any adaptive-moment history.
func (t *Trainer) decayLR() {
	fmt.Printf("update lr, old lr: %f\n", t.lr)
	t.lr *= t.cfg.LRDecay
	fmt.Printf("new lr: %f\n", t.lr)
	t.solver = t.optim.NewSolver(t.lr)
}
