// Package llamacpp implements the engine boundary on top of llama.cpp
// using the yzma bindings. Model weights are loaded from quantized GGUF
// files and trained adapters are applied as an additive overlay.
package llamacpp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/hybridgroup/yzma/pkg/llama"
)

// Model represents a loaded model and implements engine.Model.
type Model struct {
	cfg       engine.Config
	log       engine.Logger
	model     llama.Model
	vocab     llama.Vocab
	ctxParams llama.ContextParams
	adapter   adapter
	info      engine.Info
}

// NewModel loads the specified quantized model file and, when configured,
// overlays a trained adapter. Init must have been called first.
func NewModel(cfg engine.Config) (*Model, error) {
	if libraryLocation == "" {
		return nil, fmt.Errorf("new-model: the Init() function has not been called")
	}

	if cfg.ModelFile == "" {
		return nil, fmt.Errorf("new-model: model file is required")
	}

	log := cfg.Log
	if log == nil {
		log = func(ctx context.Context, msg string, args ...any) {}
	}

	// -------------------------------------------------------------------------

	mparams := llama.ModelDefaultParams()
	if cfg.Device != "" {
		dev := llama.GGMLBackendDeviceByName(cfg.Device)
		if dev == 0 {
			return nil, fmt.Errorf("new-model: unknown device: %s", cfg.Device)
		}
		mparams.SetDevices([]llama.GGMLBackendDevice{dev})
	}

	now := time.Now()

	mdl, err := llama.ModelLoadFromFile(cfg.ModelFile, mparams)
	if err != nil {
		return nil, fmt.Errorf("new-model: unable to load model: %w", err)
	}

	log(context.Background(), "model-load", "file", cfg.ModelFile, "took", time.Since(now).String())

	cfg = adjustConfig(cfg, mdl)
	vocab := llama.ModelGetVocab(mdl)

	// -------------------------------------------------------------------------

	m := Model{
		cfg:       cfg,
		log:       log,
		model:     mdl,
		vocab:     vocab,
		ctxParams: modelCtxParams(cfg),
		info:      toInfo(cfg, mdl),
	}

	if cfg.AdapterFile != "" {
		if _, err := os.Stat(cfg.AdapterFile); err != nil {
			llama.ModelFree(mdl)
			return nil, fmt.Errorf("new-model: %s: %w", cfg.AdapterFile, engine.ErrAdapterMissing)
		}

		adp, err := newAdapter(mdl, cfg.AdapterFile)
		if err != nil {
			llama.ModelFree(mdl)
			return nil, fmt.Errorf("new-model: unable to load adapter: %w", err)
		}

		m.adapter = adp
		m.info.HasAdapter = true

		log(context.Background(), "adapter-load", "file", cfg.AdapterFile)
	}

	return &m, nil
}

// Info returns the loaded model's information.
func (m *Model) Info() engine.Info {
	return m.info
}

// MaxSequenceLength returns the maximum number of tokens a single sequence
// can carry. Tokenization truncates at this bound.
func (m *Model) MaxSequenceLength() int {
	return m.cfg.ContextWindow
}

// Unload releases the model and any applied adapter.
func (m *Model) Unload(ctx context.Context) error {
	m.adapter.free()
	llama.ModelFree(m.model)
	llama.BackendFree()

	return nil
}

// =============================================================================

// Tokenize converts text into model token ids.
func (m *Model) Tokenize(text string) []int32 {
	tokens := llama.Tokenize(m.vocab, text, true, true)

	ids := make([]int32, len(tokens))
	for i, token := range tokens {
		ids[i] = int32(token)
	}

	return ids
}

// Decode converts token ids back into text.
func (m *Model) Decode(ids []int32) string {
	const bufferSize = 32 * 1024
	buf := make([]byte, bufferSize)

	var sb strings.Builder

	for _, id := range ids {
		l := llama.TokenToPiece(m.vocab, llama.Token(id), buf, 0, false)
		if l <= 0 {
			continue
		}

		sb.Write(buf[:l])
	}

	return sb.String()
}

// =============================================================================

// Generate produces a bounded length continuation of the specified prompt.
// The call is synchronous and returns the full decoded continuation.
func (m *Model) Generate(ctx context.Context, prompt string, params engine.Params) (engine.Result, error) {
	params = adjustParams(params)

	lctx, err := llama.InitFromModel(m.model, m.ctxParams)
	if err != nil {
		return engine.Result{}, fmt.Errorf("generate: unable to init from model: %w", err)
	}

	defer func() {
		llama.Synchronize(lctx)
		llama.Free(lctx)
	}()

	if err := m.adapter.apply(lctx); err != nil {
		return engine.Result{}, fmt.Errorf("generate: %w", err)
	}

	// -------------------------------------------------------------------------

	sampler := toSampler(params)
	defer llama.SamplerFree(sampler)

	tokens := llama.Tokenize(m.vocab, prompt, true, true)
	batch := llama.BatchGetOne(tokens)
	inputTokens := int(batch.NTokens)

	if inputTokens > m.cfg.ContextWindow {
		return engine.Result{}, fmt.Errorf("generate: input tokens %d exceed context window %d", inputTokens, m.cfg.ContextWindow)
	}

	// -------------------------------------------------------------------------

	const bufferSize = 32 * 1024
	buf := make([]byte, bufferSize)

	var sb strings.Builder
	var outputTokens int

	now := time.Now()

	for outputTokens < params.MaxTokens {
		if err := ctx.Err(); err != nil {
			return engine.Result{}, fmt.Errorf("generate: %w", err)
		}

		content, token, err := m.nextPiece(lctx, batch, sampler, buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return engine.Result{}, fmt.Errorf("generate: %w", err)
		}

		sb.WriteString(content)

		batch = llama.BatchGetOne([]llama.Token{token})
		outputTokens += int(batch.NTokens)

		if outputTokens%100 == 0 {
			m.log(ctx, "generate", "status", "delta", "output-tokens", outputTokens)
		}
	}

	elapsedSeconds := time.Since(now).Seconds()

	usage := engine.Usage{
		PromptTokens:    inputTokens,
		OutputTokens:    outputTokens,
		TotalTokens:     inputTokens + outputTokens,
		TokensPerSecond: float64(outputTokens) / elapsedSeconds,
	}

	m.log(ctx, "generate", "status", "final", "prompt", usage.PromptTokens, "output", usage.OutputTokens,
		"tps", fmt.Sprintf("%.2f", usage.TokensPerSecond))

	return engine.Result{
		Text:  sb.String(),
		Usage: usage,
	}, nil
}

func (m *Model) nextPiece(lctx llama.Context, batch llama.Batch, sampler llama.Sampler, buf []byte) (string, llama.Token, error) {
	llama.Decode(lctx, batch)
	token := llama.SamplerSample(sampler, lctx, -1)

	if llama.VocabIsEOG(m.vocab, token) {
		return "", 0, io.EOF
	}

	l := llama.TokenToPiece(m.vocab, token, buf, 0, false)

	content := string(buf[:l])
	if content == "" {
		return "", 0, io.EOF
	}

	return content, token, nil
}

// =============================================================================

func toInfo(cfg engine.Config, model llama.Model) engine.Info {
	count := llama.ModelMetaCount(model)
	metadata := make(map[string]string)

	for i := range count {
		key, ok := llama.ModelMetaKeyByIndex(model, i)
		if !ok {
			continue
		}

		value, ok := llama.ModelMetaValStrByIndex(model, i)
		if !ok {
			continue
		}

		metadata[key] = value
	}

	return engine.Info{
		ID:            modelID(cfg.ModelFile),
		Desc:          llama.ModelDesc(model),
		Size:          llama.ModelSize(model),
		ContextWindow: cfg.ContextWindow,
		Metadata:      metadata,
	}
}
