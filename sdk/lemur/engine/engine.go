// Package engine defines the boundary to the underlying model framework.
// The hard parts of the system, quantized matrix math, the training loop,
// sampling and decoding, live on the far side of these interfaces and are
// never reimplemented here.
package engine

import (
	"context"
	"errors"
)

// ErrAdapterMissing is returned when a model is asked to apply an adapter
// that has not been trained or has been removed from disk.
var ErrAdapterMissing = errors.New("adapter not found")

// Logger provides a function for logging messages from the engine.
type Logger func(ctx context.Context, msg string, args ...any)

// =============================================================================

// Config represents model level configuration for loading a model.
//
// ModelFile is the path to the quantized model file. Mandatory.
//
// AdapterFile is the path to a trained low rank adapter to overlay on the
// base weights. The base weights are never mutated. Optional.
//
// Device is the compute device to use. Empty selects the default device.
//
// ContextWindow is the maximum number of tokens the model processes at one
// time. When 0, the value from the model metadata is used.
//
// NBatch and NUBatch are the logical and physical batch sizes. When 0 the
// defaults of 2048 and 512 are used.
//
// NThreads and NThreadsBatch are thread counts for generation and batch
// processing. When 0 the framework defaults are used.
type Config struct {
	Log           Logger
	ModelFile     string
	AdapterFile   string
	Device        string
	ContextWindow int
	NBatch        int
	NUBatch       int
	NThreads      int
	NThreadsBatch int
}

// Params represents the decoding options for a single generation request.
// A Temperature of 0 selects greedy decoding where the most probable token
// is always taken. MaxTokens caps the number of newly generated tokens.
type Params struct {
	MaxTokens   int
	Temperature float32
	TopK        int32
	TopP        float32
	MinP        float32
}

// Info describes a loaded model.
type Info struct {
	ID            string
	Desc          string
	Size          uint64
	ContextWindow int
	HasAdapter    bool
	Metadata      map[string]string
}

// Usage provides token accounting for a generation request.
type Usage struct {
	PromptTokens    int
	OutputTokens    int
	TotalTokens     int
	TokensPerSecond float64
}

// Result represents the output of a generation request.
type Result struct {
	Text  string
	Usage Usage
}

// =============================================================================

// Tokenizer converts between text and model token ids.
type Tokenizer interface {
	Tokenize(text string) []int32
	Decode(tokens []int32) string
	MaxSequenceLength() int
}

// Model provides the inference side of the framework boundary.
type Model interface {
	Tokenizer
	Generate(ctx context.Context, prompt string, params Params) (Result, error)
	Info() Info
	Unload(ctx context.Context) error
}
