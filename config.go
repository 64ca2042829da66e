package main

import (
	"flag"

	"github.com/pkg/errors"
)

// Config carries every run hyperparameter. Flag names follow the ones the
// experiment scripts in this area already use.
type Config struct {
	NZ            int
	NI            int
	NH            int
	DecDropoutIn  float64
	DecDropoutOut float64

	LR        float64
	LRDecay   float64
	ClipGrad  float64
	Optim     string
	Epochs    int
	BatchSize int

	TrainData string
	TestData  string

	NIter  int
	NEpoch int

	Eval      bool
	LoadModel string

	Seed     int64
	SavePath string
	Progress bool
}

// ParseConfig reads flags from args (without the program name) and
// validates the result.
func ParseConfig(args []string) (*Config, error) {
	cfg := &Config{}
	fs := flag.NewFlagSet("textvae", flag.ContinueOnError)

	fs.IntVar(&cfg.NZ, "nz", 32, "latent z size")
	fs.IntVar(&cfg.NI, "ni", 512, "word embedding size")
	fs.IntVar(&cfg.NH, "nh", 1024, "LSTM hidden state size")
	fs.Float64Var(&cfg.DecDropoutIn, "dec_dropout_in", 0.5, "decoder input dropout")
	fs.Float64Var(&cfg.DecDropoutOut, "dec_dropout_out", 0.5, "decoder output dropout")

	fs.Float64Var(&cfg.LR, "lr", 1.0, "learning rate")
	fs.Float64Var(&cfg.LRDecay, "lr_decay", 0.5, "learning rate decay factor")
	fs.Float64Var(&cfg.ClipGrad, "clip_grad", 5.0, "global gradient norm clip")
	fs.StringVar(&cfg.Optim, "optim", "adam", "optimizer (sgd or adam)")
	fs.IntVar(&cfg.Epochs, "epochs", 40, "number of training epochs")
	fs.IntVar(&cfg.BatchSize, "batch_size", 32, "batch size")

	fs.StringVar(&cfg.TrainData, "train_data", "", "training data file")
	fs.StringVar(&cfg.TestData, "test_data", "", "testing data file")

	fs.IntVar(&cfg.NIter, "niter", 50, "report every niter iterations")
	fs.IntVar(&cfg.NEpoch, "nepoch", 1, "validate every nepoch epochs")

	fs.BoolVar(&cfg.Eval, "eval", false, "evaluate a saved model instead of training")
	fs.StringVar(&cfg.LoadModel, "load_model", "", "checkpoint to evaluate")

	fs.Int64Var(&cfg.Seed, "seed", 783435, "random seed")
	fs.StringVar(&cfg.SavePath, "save_path", "", "where to store the best checkpoint")
	fs.BoolVar(&cfg.Progress, "progress", false, "render a per-epoch progress bar on stderr")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the loops cannot run.
func (cfg *Config) Validate() error {
	switch {
	case cfg.NZ <= 0 || cfg.NI <= 0 || cfg.NH <= 0:
		return errors.New("model sizes must be positive")
	case cfg.DecDropoutIn < 0 || cfg.DecDropoutIn >= 1:
		return errors.New("dec_dropout_in must be in [0, 1)")
	case cfg.DecDropoutOut < 0 || cfg.DecDropoutOut >= 1:
		return errors.New("dec_dropout_out must be in [0, 1)")
	case cfg.Epochs <= 0:
		return errors.New("epochs must be positive")
	case cfg.BatchSize <= 0:
		return errors.New("batch_size must be positive")
	case cfg.NIter <= 0:
		return errors.New("niter must be positive")
	case cfg.NEpoch <= 0:
		return errors.New("nepoch must be positive")
	case cfg.TrainData == "":
		return errors.New("train_data is required")
	case cfg.TestData == "":
		return errors.New("test_data is required")
	case cfg.Eval && cfg.LoadModel == "":
		return errors.New("eval mode needs load_model")
	}
	if _, err := ParseOptim(cfg.Optim); err != nil {
		return err
	}
	return nil
}

// HistoryPath is where evaluation rows land, next to the checkpoint. Empty
// when no checkpoint path is configured.
func (cfg *Config) HistoryPath() string {
	if cfg.SavePath == "" {
		return ""
	}
	return cfg.SavePath + ".history.json"
}
