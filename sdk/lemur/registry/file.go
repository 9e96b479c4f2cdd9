package registry

import (
	"fmt"
	"os"

	yaml "go.yaml.in/yaml/v2"
)

// LoadFile constructs a registry from a yaml file mapping versions to model
// identifiers:
//
//	"2": deepseek-ai/deepseek-coder-1.3b-base
//	"8": deepseek-ai/deepseek-coder-6.7b-base
//
// This lets a deployment add or repoint versions without a rebuild.
func LoadFile(baseDir string, registryFile string) (*Registry, error) {
	data, err := os.ReadFile(registryFile)
	if err != nil {
		return nil, fmt.Errorf("load-file: %w", err)
	}

	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("load-file: parsing %s: %w", registryFile, err)
	}

	reg, err := New(baseDir, table)
	if err != nil {
		return nil, fmt.Errorf("load-file: %s: %w", registryFile, err)
	}

	return reg, nil
}

// Build returns the registry for the specified base directory, loading the
// version table from the specified file when one is provided and falling
// back to the standard table when not.
func Build(baseDir string, registryFile string) (*Registry, error) {
	if registryFile != "" {
		return LoadFile(baseDir, registryFile)
	}

	return Default(baseDir)
}
