package tune_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/lemur/trainer"
	"github.com/ardanlabs/lemur/sdk/lemur/tune"
)

func Test_Run_UnknownVersion(t *testing.T) {
	t.Setenv("LEMUR_MODELS", t.TempDir())

	reg, err := registry.Default(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the registry: %s", err)
	}

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	tnr, err := tune.New(tune.Config{
		Log:      log,
		Registry: reg,
		Trainer:  trainer.NewClient(log.Info, "http://localhost:0"),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the tuner: %s", err)
	}

	if _, err := tnr.Run(context.Background(), "99", "dataset.json"); !errors.Is(err, registry.ErrUnknownVersion) {
		t.Fatalf("Should get back ErrUnknownVersion before touching any data, got %v", err)
	}
}

func Test_Run_MissingModelFile(t *testing.T) {
	t.Setenv("LEMUR_MODELS", t.TempDir())

	reg, err := registry.Default(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the registry: %s", err)
	}

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	tnr, err := tune.New(tune.Config{
		Log:      log,
		Registry: reg,
		Trainer:  trainer.NewClient(log.Info, "http://localhost:0"),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the tuner: %s", err)
	}

	// The version is known but no model file has been pulled, so the run
	// must fail before submitting a job.
	if _, err := tnr.Run(context.Background(), "2", "dataset.json"); err == nil {
		t.Fatal("Should fail when the model file is not installed")
	}
}
