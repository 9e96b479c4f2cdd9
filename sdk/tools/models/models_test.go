package models_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/lemur/sdk/tools/models"
)

func newStore(t *testing.T) (*models.Models, string) {
	t.Helper()

	dir := t.TempDir()

	m, err := models.NewWithPath(dir)
	if err != nil {
		t.Fatalf("Should be able to create the models system: %s", err)
	}

	return m, dir
}

func addModelFile(t *testing.T, dir string, org string, family string, name string) {
	t.Helper()

	p := filepath.Join(dir, org, family)
	if err := os.MkdirAll(p, 0o755); err != nil {
		t.Fatalf("Should be able to create the model directory: %s", err)
	}

	if err := os.WriteFile(filepath.Join(p, name), []byte("gguf"), 0o644); err != nil {
		t.Fatalf("Should be able to write the model file: %s", err)
	}
}

func Test_BuildIndex(t *testing.T) {
	m, dir := newStore(t)

	addModelFile(t, dir, "deepseek-ai", "deepseek-coder-1.3b-base", "deepseek-coder-1.3b-base.Q8_0.gguf")
	addModelFile(t, dir, "deepseek-ai", "deepseek-math-7b-base", "deepseek-math-7b-base.Q8_0.gguf")

	if err := m.BuildIndex(); err != nil {
		t.Fatalf("Should be able to build the index: %s", err)
	}

	t.Run("retrievepath", func(t *testing.T) {
		mp, err := m.RetrievePath("deepseek-coder-1.3b-base.q8_0")
		if err != nil {
			t.Fatalf("Should be able to retrieve the model path: %s", err)
		}

		if filepath.Base(mp.ModelFile) != "deepseek-coder-1.3b-base.Q8_0.gguf" {
			t.Errorf("Should point at the model file, got %s", mp.ModelFile)
		}
	})

	t.Run("retrievefiles", func(t *testing.T) {
		files, err := m.RetrieveFiles()
		if err != nil {
			t.Fatalf("Should be able to retrieve the model files: %s", err)
		}

		if len(files) != 2 {
			t.Fatalf("Should index 2 models, got %d", len(files))
		}

		if files[0].OwnedBy != "deepseek-ai" {
			t.Errorf("Should record the owning organization, got %s", files[0].OwnedBy)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := m.RetrievePath("no-such-model"); err == nil {
			t.Error("Should fail for an unknown model id")
		}
	})
}

func Test_Remove(t *testing.T) {
	m, dir := newStore(t)

	addModelFile(t, dir, "deepseek-ai", "deepseek-coder-1.3b-base", "deepseek-coder-1.3b-base.Q8_0.gguf")
	addModelFile(t, dir, "deepseek-ai", "deepseek-math-7b-base", "deepseek-math-7b-base.Q8_0.gguf")

	if err := m.BuildIndex(); err != nil {
		t.Fatalf("Should be able to build the index: %s", err)
	}

	mp, err := m.RetrievePath("deepseek-coder-1.3b-base.q8_0")
	if err != nil {
		t.Fatalf("Should be able to retrieve the model path: %s", err)
	}

	if err := m.Remove(mp); err != nil {
		t.Fatalf("Should be able to remove the model: %s", err)
	}

	if _, err := os.Stat(mp.ModelFile); !os.IsNotExist(err) {
		t.Errorf("Should delete the model file, got %v", err)
	}

	if _, err := m.RetrievePath("deepseek-coder-1.3b-base.q8_0"); err == nil {
		t.Error("Should drop the removed model from the index")
	}

	if _, err := m.RetrievePath("deepseek-math-7b-base.q8_0"); err != nil {
		t.Errorf("Should keep the remaining model in the index: %s", err)
	}
}

func Test_RetrieveForModel(t *testing.T) {
	m, dir := newStore(t)

	addModelFile(t, dir, "deepseek-ai", "deepseek-coder-1.3b-base", "deepseek-coder-1.3b-base.Q8_0.gguf")

	if err := m.BuildIndex(); err != nil {
		t.Fatalf("Should be able to build the index: %s", err)
	}

	t.Run("quant suffix", func(t *testing.T) {
		mp, err := m.RetrieveForModel("deepseek-ai/deepseek-coder-1.3b-base")
		if err != nil {
			t.Fatalf("Should resolve the model identifier: %s", err)
		}

		if filepath.Base(mp.ModelFile) != "deepseek-coder-1.3b-base.Q8_0.gguf" {
			t.Errorf("Should match the quantized file, got %s", mp.ModelFile)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		if _, err := m.RetrieveForModel("deepseek-ai/deepseek-coder-7b-base-v1.5"); err == nil {
			t.Error("Should fail when no local file exists for the model")
		}
	})
}
