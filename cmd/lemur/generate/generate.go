// Package generate provides the generate command code.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/cache"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/lemur/generate"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/tools/defaults"
	"github.com/spf13/cobra"
)

type config struct {
	Generate struct {
		Version       string `conf:"required"`
		Input         string `conf:"required"`
		Output        string `conf:"required"`
		Log           string `conf:"default:generation_logs.txt"`
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

	reg, err := registry.Build(defaults.TunedDir(cfg.Generate.TunedDir), cfg.Generate.RegistryFile)
	if err != nil {
		return fmt.Errorf("creating registry: %w", err)
	}

	mdlCache, err := cache.New(cache.Config{
		Log:           log,
		Registry:      reg,
		Device:        cfg.Generate.Device,
		ContextWindow: cfg.Generate.ContextWindow,
	})
	if err != nil {
		return fmt.Errorf("creating model cache: %w", err)
	}
	defer mdlCache.Shutdown(ctx)

	gen := generate.New(generate.Config{
		Log:      log,
		Registry: reg,
		Cache:    mdlCache,
	})

	if err := gen.All(ctx, cfg.Generate.Version, cfg.Generate.Input, cfg.Generate.Output, cfg.Generate.Log); err != nil {
		return err
	}

	fmt.Printf("All hyperparameters have been saved to %s\n", cfg.Generate.Output)

	return nil
}

func buildEnvVars(cmd *cobra.Command) []string {
	var envVars []string

	if v, _ := cmd.Flags().GetString("version"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_VERSION="+v)
	}

	if v, _ := cmd.Flags().GetString("input"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_INPUT="+v)
	}

	if v, _ := cmd.Flags().GetString("output"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_OUTPUT="+v)
	}

	if v, _ := cmd.Flags().GetString("log"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_LOG="+v)
	}

	if v, _ := cmd.Flags().GetString("tuned-dir"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_TUNED_DIR="+v)
	}

	if v, _ := cmd.Flags().GetString("registry-file"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_REGISTRY_FILE="+v)
	}

	if v, _ := cmd.Flags().GetString("device"); v != "" {
		envVars = append(envVars, "LEMUR_GENERATE_DEVICE="+v)
	}

	if v, _ := cmd.Flags().GetInt("context-window"); v != 0 {
		envVars = append(envVars, "LEMUR_GENERATE_CONTEXT_WINDOW="+strconv.Itoa(v))
	}

	return envVars
}
