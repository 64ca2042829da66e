package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func run(cfg *Config) error {
	optim, err := ParseOptim(cfg.Optim)
	if err != nil {
		return err
	}

	log.Info().
		Str("optim", optim.String()).
		Float64("lr", cfg.LR).
		Int("nz", cfg.NZ).
		Int("ni", cfg.NI).
		Int("nh", cfg.NH).
		Int("epochs", cfg.Epochs).
		Int("batch_size", cfg.BatchSize).
		Int64("seed", cfg.Seed).
		Str("save_path", cfg.SavePath).
		Msg("configuration")

	vocab, err := BuildVocab(cfg.TrainData)
	if err != nil {
		return err
	}
	trainCorpus, err := LoadCorpus(cfg.TrainData, vocab)
	if err != nil {
		return err
	}
	testCorpus, err := LoadCorpus(cfg.TestData, vocab)
	if err != nil {
		return err
	}
	log.Info().
		Int("vocab", vocab.Size()).
		Str("train_sents", humanize.Comma(int64(trainCorpus.Len()))).
		Str("train_words", humanize.Comma(int64(trainCorpus.Words()))).
		Str("test_sents", humanize.Comma(int64(testCorpus.Len()))).
		Msg("datasets loaded")

	rng := rand.New(rand.NewSource(cfg.Seed))
	model := NewVAE(cfg, vocab.Size(), rng)

	if cfg.Eval {
		if err := LoadParams(model.params, cfg.LoadModel); err != nil {
			return err
		}
		log.Info().Str("path", cfg.LoadModel).Msg("checkpoint loaded")
		_, err := Evaluate(model, testCorpus, cfg)
		return err
	}

	trainer := NewTrainer(cfg, model, trainCorpus, testCorpus, optim, rng)
	_, err = trainer.Run()
	return err
}
