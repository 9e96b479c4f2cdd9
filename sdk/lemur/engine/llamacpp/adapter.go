package llamacpp

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/hybridgroup/yzma/pkg/llama"
)

// adapter wraps a loaded low rank adapter. The zero value represents no
// adapter and every method is safe to call on it.
type adapter struct {
	lora   llama.AdapterLora
	loaded bool
}

func newAdapter(model llama.Model, adapterFile string) (adapter, error) {
	lora, err := llama.AdapterLoraInit(model, adapterFile)
	if err != nil {
		return adapter{}, fmt.Errorf("new-adapter: %w", err)
	}

	return adapter{
		lora:   lora,
		loaded: true,
	}, nil
}

// apply attaches the adapter to a context so the overlay participates in
// every forward pass. The base weights are left untouched.
func (a adapter) apply(lctx llama.Context) error {
	if !a.loaded {
		return nil
	}

	if code := llama.SetAdapterLora(lctx, a.lora, 1.0); code != 0 {
		return fmt.Errorf("apply-adapter: set adapter failed: code %d", code)
	}

	return nil
}

func (a adapter) free() {
	if a.loaded {
		llama.AdapterLoraFree(a.lora)
	}
}

// =============================================================================

func modelID(modelFile string) string {
	filename := filepath.Base(modelFile)
	return strings.TrimSuffix(filename, path.Ext(filename))
}
