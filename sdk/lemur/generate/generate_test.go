package generate_test

import (
	"context"
	"encoding/json"
	"errors"
	"expvar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/generate"
	"github.com/ardanlabs/lemur/sdk/lemur/prompts"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
)

// echoModel answers every prompt with a fixed response appended after the
// prompt, the way a causal model echoes its input.
type echoModel struct {
	response string
	genErr   error
	calls    int
}

func (m *echoModel) Tokenize(text string) []int32 { return make([]int32, len(text)) }
func (m *echoModel) Decode(tokens []int32) string { return "" }
func (m *echoModel) MaxSequenceLength() int       { return 4096 }
func (m *echoModel) Info() engine.Info            { return engine.Info{ID: "echo"} }
func (m *echoModel) Unload(ctx context.Context) error {
	return nil
}

func (m *echoModel) Generate(ctx context.Context, prompt string, params engine.Params) (engine.Result, error) {
	m.calls++

	if m.genErr != nil {
		return engine.Result{}, m.genErr
	}

	if params.MaxTokens != 150 {
		return engine.Result{}, errors.New("unexpected max tokens")
	}

	return engine.Result{
		Text: prompt + "\n" + m.response,
		Usage: engine.Usage{
			PromptTokens: len(prompt),
			OutputTokens: len(m.response),
			TotalTokens:  len(prompt) + len(m.response),
		},
	}, nil
}

type fakeAcquirer struct {
	mdl engine.Model
}

func (a fakeAcquirer) Acquire(ctx context.Context, version string) (engine.Model, error) {
	return a.mdl, nil
}

func newGenerator(t *testing.T, mdl engine.Model) *generate.Generator {
	t.Helper()

	reg, err := registry.Default(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the registry: %s", err)
	}

	log := logger.New(io.Discard, logger.LevelInfo, "TEST", nil)

	return generate.New(generate.Config{
		Log:      log,
		Registry: reg,
		Cache:    fakeAcquirer{mdl: mdl},
	})
}

func writeInput(t *testing.T, dir string, count int) string {
	t.Helper()

	records := make([]map[string]any, count)
	for i := range records {
		records[i] = map[string]any{
			"prm":            map[string]any{"lr": 0.01, "momentum": 0.9},
			"metric":         "acc",
			"task":           "img-classification",
			"dataset":        "cifar-10",
			"transform_code": "norm_256_flip",
			"accuracy":       0.9,
			"epoch":          float64(5),
			"nn_code":        "class Net: ...",
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("Should be able to marshal the records: %s", err)
	}

	path := filepath.Join(dir, "input.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Should be able to write the input file: %s", err)
	}

	return path
}

func Test_All(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 3)
	output := filepath.Join(dir, "output.json")
	logs := filepath.Join(dir, "logs.txt")

	mdl := &echoModel{response: "0.02, 0.95"}
	gen := newGenerator(t, mdl)

	if err := gen.All(context.Background(), "2", input, output, logs); err != nil {
		t.Fatalf("Should be able to generate all responses: %s", err)
	}

	if mdl.calls != 3 {
		t.Errorf("Should generate once per record, got %d calls", mdl.calls)
	}

	t.Run("output", func(t *testing.T) {
		data, err := os.ReadFile(output)
		if err != nil {
			t.Fatalf("Should be able to read the output file: %s", err)
		}

		var records []map[string]any
		if err := json.Unmarshal(data, &records); err != nil {
			t.Fatalf("Should be able to decode the output file: %s", err)
		}

		if len(records) != 3 {
			t.Fatalf("Should write 3 records, got %d", len(records))
		}

		for i, rec := range records {
			if rec["Response"] != "0.02, 0.95" {
				t.Errorf("Should attach the response to record %d, got %v", i, rec["Response"])
			}
			if rec["dataset"] != "cifar-10" {
				t.Errorf("Should keep the original fields of record %d", i)
			}
		}

		if !strings.HasPrefix(string(data), "[\n    {") {
			t.Errorf("Should indent the output with four spaces")
		}
	})

	t.Run("logs", func(t *testing.T) {
		data, err := os.ReadFile(logs)
		if err != nil {
			t.Fatalf("Should be able to read the logs file: %s", err)
		}

		text := string(data)

		for _, c := range []string{"Model #1", "Model #3", "Prompt:", "Response:\n0.02, 0.95", prompts.ResponseMarker} {
			if !strings.Contains(text, c) {
				t.Errorf("Should find %q in the logs file", c)
			}
		}
	})
}

func Test_All_UnknownVersion(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 1)

	gen := newGenerator(t, &echoModel{})

	err := gen.All(context.Background(), "99", input, filepath.Join(dir, "out.json"), filepath.Join(dir, "logs.txt"))
	if !errors.Is(err, registry.ErrUnknownVersion) {
		t.Fatalf("Should get back ErrUnknownVersion, got %v", err)
	}
}

func Test_All_GenerateError(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, 2)
	output := filepath.Join(dir, "out.json")

	mdl := &echoModel{genErr: errors.New("decode failed")}
	gen := newGenerator(t, mdl)

	before := expvar.Get("service_errors").(*expvar.Int).Value()

	if err := gen.All(context.Background(), "2", input, output, filepath.Join(dir, "logs.txt")); err == nil {
		t.Fatal("Should report the generation error")
	}

	if _, err := os.Stat(output); !errors.Is(err, os.ErrNotExist) {
		t.Error("Should not write the output file when generation fails")
	}

	if got := expvar.Get("service_errors").(*expvar.Int).Value(); got != before+1 {
		t.Errorf("Should count the failure in the errors metric, got %d want %d", got, before+1)
	}
}
