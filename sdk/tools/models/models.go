// Package models provides support for tooling around model file management.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ardanlabs/lemur/sdk/tools/defaults"
	"go.yaml.in/yaml/v2"
)

const indexFile = "index.yaml"

// Models manages the local store of pretrained model files. Files live
// under <modelsPath>/<org>/<family>/<file>.gguf and are addressed by a
// lowercased model id derived from the file name.
type Models struct {
	modelsPath string
	biMutex    sync.Mutex
}

// New constructs the model file system using the default models location.
func New() (*Models, error) {
	return NewWithPath("")
}

// NewWithPath constructs the model file system against the specified
// models directory.
func NewWithPath(modelsPath string) (*Models, error) {
	modelsPath = defaults.ModelsDir(modelsPath)

	if err := os.MkdirAll(modelsPath, 0755); err != nil {
		return nil, fmt.Errorf("new-models: unable to create models directory: %w", err)
	}

	return &Models{
		modelsPath: modelsPath,
	}, nil
}

// ModelsPath returns the location of the models directory.
func (m *Models) ModelsPath() string {
	return m.modelsPath
}

// BuildIndex builds the model index for fast model access.
func (m *Models) BuildIndex() error {
	m.biMutex.Lock()
	defer m.biMutex.Unlock()

	if err := removeEmptyDirs(m.modelsPath); err != nil {
		return fmt.Errorf("remove-empty-dirs: %w", err)
	}

	entries, err := os.ReadDir(m.modelsPath)
	if err != nil {
		return fmt.Errorf("build-index: reading models directory: %w", err)
	}

	index := make(map[string]Path)

	for _, orgEntry := range entries {
		if !orgEntry.IsDir() {
			continue
		}

		org := orgEntry.Name()

		modelEntries, err := os.ReadDir(filepath.Join(m.modelsPath, org))
		if err != nil {
			continue
		}

		for _, modelEntry := range modelEntries {
			if !modelEntry.IsDir() {
				continue
			}

			modelFamily := modelEntry.Name()

			fileEntries, err := os.ReadDir(filepath.Join(m.modelsPath, org, modelFamily))
			if err != nil {
				continue
			}

			for _, fileEntry := range fileEntries {
				if fileEntry.IsDir() {
					continue
				}

				name := fileEntry.Name()

				if name == ".DS_Store" {
					continue
				}

				modelID := strings.ToLower(extractModelID(name))

				index[modelID] = Path{
					ModelFile:  filepath.Join(m.modelsPath, org, modelFamily, name),
					Downloaded: true,
				}
			}
		}
	}

	indexData, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	indexPath := filepath.Join(m.modelsPath, indexFile)
	if err := os.WriteFile(indexPath, indexData, 0644); err != nil {
		return fmt.Errorf("write index file: %w", err)
	}

	return nil
}

func (m *Models) loadIndex() map[string]Path {
	m.biMutex.Lock()
	defer m.biMutex.Unlock()

	indexPath := filepath.Join(m.modelsPath, indexFile)

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return make(map[string]Path)
	}

	var index map[string]Path
	if err := yaml.Unmarshal(data, &index); err != nil {
		return make(map[string]Path)
	}

	return index
}

// =============================================================================

func removeEmptyDirs(modelBasePath string) error {
	var dirs []string

	err := filepath.WalkDir(modelBasePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != modelBasePath {
			dirs = append(dirs, path)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("walking directory tree: %w", err)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		entries, err := os.ReadDir(dirs[i])
		if err != nil {
			continue
		}

		if len(entries) == 0 {
			os.Remove(dirs[i])
		}
	}

	return nil
}

func extractModelID(modelFileName string) string {
	return strings.TrimSuffix(modelFileName, filepath.Ext(modelFileName))
}
