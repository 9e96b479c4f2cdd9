// Package tune drives a LoRA fine-tuning run for one model version. It
// resolves the version to its pretrained model, prepares the tokenized
// dataset, hands the job to the training agent, and verifies the artifacts
// the agent writes back.
package tune

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/dataset"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/lemur/observ/metrics"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/lemur/trainer"
	"github.com/ardanlabs/lemur/sdk/tools/models"
)

// Config represents settings for a tuner.
//
// PollInterval: How often the tuner asks the training agent for job status.
// Defaults to 30 seconds if the value is 0.
type Config struct {
	Log           *logger.Logger
	Registry      *registry.Registry
	Trainer       *trainer.Client
	Device        string
	ContextWindow int
	PollInterval  time.Duration
}

func validateConfig(cfg Config) Config {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}

	return cfg
}

// Tuner runs fine-tuning jobs.
type Tuner struct {
	log           *logger.Logger
	registry      *registry.Registry
	trainer       *trainer.Client
	device        string
	contextWindow int
	pollInterval  time.Duration
	models        *models.Models
}

// New constructs a tuner for use.
func New(cfg Config) (*Tuner, error) {
	cfg = validateConfig(cfg)

	models, err := models.New()
	if err != nil {
		return nil, fmt.Errorf("creating models system: %w", err)
	}

	return &Tuner{
		log:           cfg.Log,
		registry:      cfg.Registry,
		trainer:       cfg.Trainer,
		device:        cfg.Device,
		contextWindow: cfg.ContextWindow,
		pollInterval:  cfg.PollInterval,
		models:        models,
	}, nil
}

// Run executes the full tuning workflow for the specified version against
// the specified dataset file and returns the final evaluation.
func (t *Tuner) Run(ctx context.Context, version string, datasetPath string) (trainer.EvalResult, error) {
	entry, err := t.registry.Resolve(version)
	if err != nil {
		return trainer.EvalResult{}, fmt.Errorf("run: %w", err)
	}

	t.log.Info(ctx, "tune", "status", "using model", "version", version, "model", entry.ModelID)

	split, err := t.prepareDataset(ctx, entry, datasetPath)
	if err != nil {
		metrics.AddErrors()
		return trainer.EvalResult{}, fmt.Errorf("run: %w", err)
	}

	t.log.Info(ctx, "tune", "status", "dataset ready", "train", len(split.Train), "val", len(split.Val))

	result, err := t.train(ctx, entry)
	if err != nil {
		metrics.AddErrors()
		return trainer.EvalResult{}, fmt.Errorf("run: %w", err)
	}

	if err := t.verifyArtifacts(entry.Version); err != nil {
		metrics.AddErrors()
		return trainer.EvalResult{}, fmt.Errorf("run: %w", err)
	}

	t.log.Info(ctx, "tune", "status", "complete", "version", version, "evalLoss", result.EvalLoss)

	return result, nil
}

// =============================================================================

// prepareDataset loads the base model for its tokenizer, builds or loads the
// tokenized splits, and unloads the model again. The weights are only needed
// here for tokenization.
func (t *Tuner) prepareDataset(ctx context.Context, entry registry.Entry, datasetPath string) (dataset.Split, error) {
	fi, err := t.models.RetrieveForModel(entry.ModelID)
	if err != nil {
		return dataset.Split{}, fmt.Errorf("prepare-dataset: %w", err)
	}

	now := time.Now()

	mdl, err := llamacpp.NewModel(engine.Config{
		Log:           t.log.Info,
		ModelFile:     fi.ModelFile,
		Device:        t.device,
		ContextWindow: t.contextWindow,
	})
	if err != nil {
		return dataset.Split{}, fmt.Errorf("prepare-dataset: loading model: %w", err)
	}

	metrics.AddModelFileLoadTime(time.Since(now))

	defer func() {
		if err := mdl.Unload(ctx); err != nil {
			t.log.Info(ctx, "tune", "status", "unable to unload model", "ERROR", err)
		}
	}()

	p := dataset.NewPreparer(t.log.Info, mdl, t.registry.TrainCacheDir(entry.Version), t.registry.ValCacheDir(entry.Version))

	now = time.Now()

	split, err := p.LoadOrBuild(ctx, datasetPath)
	if err != nil {
		return dataset.Split{}, fmt.Errorf("prepare-dataset: %w", err)
	}

	metrics.AddTokenizeTime(time.Since(now))

	return split, nil
}

// train submits the job, follows its progress, and returns the final
// evaluation.
func (t *Tuner) train(ctx context.Context, entry registry.Entry) (trainer.EvalResult, error) {
	job := trainer.Job{
		ModelID:       entry.ModelID,
		TrainDataDir:  t.registry.TrainCacheDir(entry.Version),
		ValDataDir:    t.registry.ValCacheDir(entry.Version),
		AdapterDir:    t.registry.AdapterDir(entry.Version),
		TokenizerDir:  t.registry.TokenizerDir(entry.Version),
		CheckpointDir: t.registry.CheckpointDir(entry.Version),
		LoRA:          trainer.DefaultLoRA(),
		Arguments:     trainer.DefaultArguments(),
		Tokenizer:     trainer.DefaultTokenizer(),
	}

	job, err := t.trainer.Submit(ctx, job)
	if err != nil {
		return trainer.EvalResult{}, fmt.Errorf("train: %w", err)
	}

	watchDone := make(chan struct{})

	go func() {
		defer close(watchDone)

		metrics.AddGoroutines()

		err := t.trainer.Watch(ctx, job.ID, func(evt trainer.Event) {
			t.log.Info(ctx, "tune", "status", "progress", "epoch", evt.Epoch, "step", evt.Step, "trainLoss", evt.TrainLoss, "evalLoss", evt.EvalLoss)

			metrics.AddEpochsCompleted()
			metrics.AddTrainLoss(evt.TrainLoss)
			metrics.AddEvalLoss(evt.EvalLoss)
		})
		if err != nil && ctx.Err() == nil {
			t.log.Info(ctx, "tune", "status", "event stream ended", "ERROR", err)
		}
	}()

	if _, err := t.trainer.WaitForCompletion(ctx, job.ID, t.pollInterval); err != nil {
		return trainer.EvalResult{}, fmt.Errorf("train: %w", err)
	}

	// The agent closes the event stream when the job finishes. Wait for the
	// watcher to drain it so late events are not lost.
	select {
	case <-watchDone:
	case <-ctx.Done():
	}

	result, err := t.trainer.Evaluate(ctx, job.ID)
	if err != nil {
		return trainer.EvalResult{}, fmt.Errorf("train: %w", err)
	}

	return result, nil
}

// verifyArtifacts checks that the training agent wrote the adapter and
// tokenizer directories the generation side depends on.
func (t *Tuner) verifyArtifacts(version string) error {
	for _, dir := range []string{t.registry.AdapterDir(version), t.registry.TokenizerDir(version)} {
		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("verify-artifacts: %s: %w", dir, engine.ErrAdapterMissing)
		}
	}

	return nil
}
