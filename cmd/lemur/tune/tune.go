// Package tune provides the tune command code.
package tune

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/lemur/trainer"
	"github.com/ardanlabs/lemur/sdk/lemur/tune"
	"github.com/ardanlabs/lemur/sdk/tools/defaults"
	"github.com/spf13/cobra"
)

type config struct {
	Tune struct {
		Version       string `conf:"required"`
		Dataset       string `conf:"required"`
		TunedDir      string
		RegistryFile  string
		Device        string
		ContextWindow int
	}
	Trainer struct {
		Host         string        `conf:"default:http://localhost:8500"`
		PollInterval time.Duration `conf:"default:30s"`
	}
}

func run(cmd *cobra.Command) error {
	for _, env := range buildEnvVars(cmd) {
		if key, value, found := strings.Cut(env, "="); found {
			os.Setenv(key, value)
		}
	}

	var cfg config

	help, err := conf.Parse("LEMUR", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}

		return fmt.Errorf("parsing config: %w", err)
	}

	log := logger.New(os.Stdout, logger.LevelInfo, "lemur", nil)

	ctx := context.Background()

	if err := llamacpp.Init(); err != nil {
		return fmt.Errorf("init: %w", err)
	}

	reg, err := registry.Build(defaults.TunedDir(cfg.Tune.TunedDir), cfg.Tune.RegistryFile)
	if err != nil {
		return fmt.Errorf("creating registry: %w", err)
	}

	tnr, err := tune.New(tune.Config{
		Log:           log,
		Registry:      reg,
		Trainer:       trainer.NewClient(log.Info, cfg.Trainer.Host),
		Device:        cfg.Tune.Device,
		ContextWindow: cfg.Tune.ContextWindow,
		PollInterval:  cfg.Trainer.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("creating tuner: %w", err)
	}

	result, err := tnr.Run(ctx, cfg.Tune.Version, cfg.Tune.Dataset)
	if err != nil {
		return err
	}

	fmt.Printf("Tuning complete: version %s, eval loss %.4f\n", cfg.Tune.Version, result.EvalLoss)

	return nil
}

func buildEnvVars(cmd *cobra.Command) []string {
	var envVars []string

	if v, _ := cmd.Flags().GetString("version"); v != "" {
		envVars = append(envVars, "LEMUR_TUNE_VERSION="+v)
	}

	if v, _ := cmd.Flags().GetString("dataset"); v != "" {
		envVars = append(envVars, "LEMUR_TUNE_DATASET="+v)
	}

	if v, _ := cmd.Flags().GetString("tuned-dir"); v != "" {
		envVars = append(envVars, "LEMUR_TUNE_TUNED_DIR="+v)
	}

	if v, _ := cmd.Flags().GetString("registry-file"); v != "" {
		envVars = append(envVars, "LEMUR_TUNE_REGISTRY_FILE="+v)
	}

	if v, _ := cmd.Flags().GetString("device"); v != "" {
		envVars = append(envVars, "LEMUR_TUNE_DEVICE="+v)
	}

	if v, _ := cmd.Flags().GetInt("context-window"); v != 0 {
		envVars = append(envVars, "LEMUR_TUNE_CONTEXT_WINDOW="+strconv.Itoa(v))
	}

	return envVars
}
