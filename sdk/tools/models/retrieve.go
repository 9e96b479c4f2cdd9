package models

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Path returns file path information about a model.
type Path struct {
	ModelFile  string `yaml:"model_file"`
	Downloaded bool   `yaml:"downloaded"`
}

// File provides information about a model.
type File struct {
	ID          string
	OwnedBy     string
	ModelFamily string
	Size        int64
	Modified    time.Time
}

// RetrievePath locates the physical location on disk and returns the
// full path.
func (m *Models) RetrievePath(modelID string) (Path, error) {
	index := m.loadIndex()

	modelID = strings.ToLower(modelID)

	modelPath, exists := index[modelID]
	if !exists {
		return Path{}, fmt.Errorf("model %q not found", modelID)
	}

	return modelPath, nil
}

// RetrieveForModel locates the local quantized file for a model identifier
// such as "deepseek-ai/deepseek-coder-1.3b-base". The index is keyed by file
// name, so the lookup accepts an exact match or one that carries a
// quantization suffix like deepseek-coder-1.3b-base.q8_0.
func (m *Models) RetrieveForModel(modelID string) (Path, error) {
	name := strings.ToLower(path.Base(modelID))

	index := m.loadIndex()

	if mp, exists := index[name]; exists {
		return mp, nil
	}

	keys := make([]string, 0, len(index))
	for key := range index {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if strings.HasPrefix(key, name+".") || strings.HasPrefix(key, name+"-") {
			return index[key], nil
		}
	}

	return Path{}, fmt.Errorf("no local file for model %q", modelID)
}

// RetrieveFiles returns all the models in the models directory.
func (m *Models) RetrieveFiles() ([]File, error) {
	var list []File

	index := m.loadIndex()

	for modelID, mp := range index {
		mf, err := m.toFile(modelID, mp)
		if err != nil {
			return nil, err
		}

		list = append(list, mf)
	}

	slices.SortFunc(list, func(a, b File) int {
		return strings.Compare(a.ID, b.ID)
	})

	return list, nil
}

// RetrieveFile finds the model and returns the model file information.
func (m *Models) RetrieveFile(modelID string) (File, error) {
	if modelID == "" {
		return File{}, fmt.Errorf("missing model id")
	}

	mp, err := m.RetrievePath(modelID)
	if err != nil {
		return File{}, fmt.Errorf("retrieve-model-path: %w", err)
	}

	return m.toFile(strings.ToLower(modelID), mp)
}

// =============================================================================

func (m *Models) toFile(modelID string, mp Path) (File, error) {
	info, err := os.Stat(mp.ModelFile)
	if err != nil {
		return File{}, fmt.Errorf("stat: %w", err)
	}

	rel, err := filepath.Rel(m.modelsPath, mp.ModelFile)
	if err != nil {
		return File{}, fmt.Errorf("rel: %w", err)
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")

	mf := File{
		ID:       modelID,
		Size:     info.Size(),
		Modified: info.ModTime(),
	}

	if len(parts) >= 3 {
		mf.OwnedBy = parts[0]
		mf.ModelFamily = parts[1]
	}

	return mf, nil
}
