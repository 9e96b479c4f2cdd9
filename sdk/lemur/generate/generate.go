// Package generate drives hyperparameter prediction with a tuned model. It
// walks the task records in an input file, asks the model for the
// hyperparameter values of each one, and writes the records back out with
// the model's responses attached.
package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/observ/metrics"
	"github.com/ardanlabs/lemur/sdk/lemur/prompts"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
)

// maxNewTokens caps the length of each predicted response.
const maxNewTokens = 150

// Acquirer provides a loaded tuned model for a version. The model cache
// satisfies this interface.
type Acquirer interface {
	Acquire(ctx context.Context, version string) (engine.Model, error)
}

// Config represents settings for a generator.
type Config struct {
	Log      *logger.Logger
	Registry *registry.Registry
	Cache    Acquirer
}

// Generator produces hyperparameter predictions for task records.
type Generator struct {
	log      *logger.Logger
	registry *registry.Registry
	cache    Acquirer
}

// New constructs a generator for use.
func New(cfg Config) *Generator {
	return &Generator{
		log:      cfg.Log,
		registry: cfg.Registry,
		cache:    cfg.Cache,
	}
}

// All generates a prediction for every record in the input file. The records
// are written to the output file with a Response field added, and a readable
// prompt/response log is appended to the logs file record by record. Nothing
// is written to the output file unless every record succeeds.
func (g *Generator) All(ctx context.Context, version string, inputPath string, outputPath string, logsPath string) error {
	if err := g.all(ctx, version, inputPath, outputPath, logsPath); err != nil {
		metrics.AddErrors()
		return err
	}

	return nil
}

func (g *Generator) all(ctx context.Context, version string, inputPath string, outputPath string, logsPath string) error {
	entry, err := g.registry.Resolve(version)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}

	g.log.Info(ctx, "generate", "status", "using model", "version", version, "model", entry.ModelID)

	mdl, err := g.cache.Acquire(ctx, version)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}

	records, err := readRecords(inputPath)
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}

	rand.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	logs, err := os.Create(logsPath)
	if err != nil {
		return fmt.Errorf("all: creating logs file: %w", err)
	}
	defer logs.Close()

	for i, rec := range records {
		prompt, err := predictionPrompt(rec)
		if err != nil {
			return fmt.Errorf("all: record[%d]: %w", i, err)
		}

		result, err := mdl.Generate(ctx, prompt, engine.Params{MaxTokens: maxNewTokens})
		if err != nil {
			return fmt.Errorf("all: record[%d]: %w", i, err)
		}

		response := prompts.ExtractResponse(result.Text)

		fmt.Fprintf(logs, "Model #%d\n", i+1)
		fmt.Fprintf(logs, "Prompt:\n%s\n", prompt)
		fmt.Fprintf(logs, "Response:\n%s\n\n", response)

		if err := logs.Sync(); err != nil {
			return fmt.Errorf("all: record[%d]: flushing logs: %w", i, err)
		}

		rec["Response"] = response

		metrics.AddRecordsProcessed()
		metrics.AddGenerationUsage(result.Usage.PromptTokens, result.Usage.OutputTokens, result.Usage.TotalTokens, result.Usage.TokensPerSecond)

		g.log.Info(ctx, "generate", "status", "progress", "responses", i+1, "total", len(records))
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("all: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("all: writing output: %w", err)
	}

	g.log.Info(ctx, "generate", "status", "complete", "records", len(records), "output", outputPath, "logs", logsPath)

	return nil
}

// =============================================================================

func readRecords(inputPath string) ([]map[string]any, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("readrecords: %w", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("readrecords: %w", err)
	}

	return records, nil
}

// predictionPrompt maps a raw task record into the prediction prompt. The
// hyperparameter names are sorted so the prompt for a record is stable.
func predictionPrompt(rec map[string]any) (string, error) {
	prm, _ := rec["prm"].(map[string]any)

	names := make([]string, 0, len(prm))
	for name := range prm {
		names = append(names, name)
	}
	sort.Strings(names)

	p := prompts.Prediction{
		PrmNames:      names,
		Metric:        str(rec["metric"]),
		Task:          str(rec["task"]),
		Dataset:       str(rec["dataset"]),
		TransformCode: str(rec["transform_code"]),
		Accuracy:      num(rec["accuracy"]),
		Epoch:         int(num(rec["epoch"])),
		NNCode:        str(rec["nn_code"]),
	}

	return prompts.PredictionPrompt(p)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}
