// Package prepare provides the dataset prepare command code.
package prepare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/dataset"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/tools/defaults"
	"github.com/ardanlabs/lemur/sdk/tools/models"
	"github.com/spf13/cobra"
)

type config struct {
	Dataset struct {
		Version       string `conf:"required"`
		Dataset       string `conf:"required"`
		TunedDir      string
		RegistryFile  string
		Device        string
		ContextWindow int
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

	reg, err := registry.Build(defaults.TunedDir(cfg.Dataset.TunedDir), cfg.Dataset.RegistryFile)
	if err != nil {
		return fmt.Errorf("creating registry: %w", err)
	}

	entry, err := reg.Resolve(cfg.Dataset.Version)
	if err != nil {
		return err
	}

	mdls, err := models.New()
	if err != nil {
		return fmt.Errorf("creating models system: %w", err)
	}

	fi, err := mdls.RetrieveForModel(entry.ModelID)
	if err != nil {
		return err
	}

	mdl, err := llamacpp.NewModel(engine.Config{
		Log:           log.Info,
		ModelFile:     fi.ModelFile,
		Device:        cfg.Dataset.Device,
		ContextWindow: cfg.Dataset.ContextWindow,
	})
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}
	defer mdl.Unload(ctx)

	p := dataset.NewPreparer(log.Info, mdl, reg.TrainCacheDir(entry.Version), reg.ValCacheDir(entry.Version))

	split, err := p.LoadOrBuild(ctx, cfg.Dataset.Dataset)
	if err != nil {
		return err
	}

	fmt.Printf("Datasets have been processed and saved: %d train, %d val\n", len(split.Train), len(split.Val))

	return nil
}

func buildEnvVars(cmd *cobra.Command) []string {
	var envVars []string

	if v, _ := cmd.Flags().GetString("version"); v != "" {
		envVars = append(envVars, "LEMUR_DATASET_VERSION="+v)
	}

	if v, _ := cmd.Flags().GetString("dataset"); v != "" {
		envVars = append(envVars, "LEMUR_DATASET_DATASET="+v)
	}

	if v, _ := cmd.Flags().GetString("tuned-dir"); v != "" {
		envVars = append(envVars, "LEMUR_DATASET_TUNED_DIR="+v)
	}

	if v, _ := cmd.Flags().GetString("registry-file"); v != "" {
		envVars = append(envVars, "LEMUR_DATASET_REGISTRY_FILE="+v)
	}

	if v, _ := cmd.Flags().GetString("device"); v != "" {
		envVars = append(envVars, "LEMUR_DATASET_DEVICE="+v)
	}

	if v, _ := cmd.Flags().GetInt("context-window"); v != 0 {
		envVars = append(envVars, "LEMUR_DATASET_CONTEXT_WINDOW="+strconv.Itoa(v))
	}

	return envVars
}
