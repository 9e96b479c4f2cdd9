// Package registry maps tuned model versions to the pretrained models they
// are built from and provides the version scoped paths used by the tuning
// and generation drivers.
package registry

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// ErrUnknownVersion is returned when a version has no registry entry. Both
// drivers check for this before touching the disk or the network.
var ErrUnknownVersion = errors.New("unknown model version")

// Entry represents the pretrained model configured for a version.
type Entry struct {
	Version string
	ModelID string
}

// Name returns the short model name without the owning organization. This is
// the identifier the local model index is keyed by.
func (e Entry) Name() string {
	return path.Base(e.ModelID)
}

// =============================================================================

// Registry provides lookup support for resolving a tuned model version to
// its pretrained model.
type Registry struct {
	entries map[string]Entry
	baseDir string
}

// New constructs a registry from the specified table. The table is validated
// up front so a bad entry fails construction and not a training run.
func New(baseDir string, table map[string]string) (*Registry, error) {
	if len(table) == 0 {
		return nil, errors.New("new-registry: empty version table")
	}

	entries := make(map[string]Entry, len(table))

	for version, modelID := range table {
		version = strings.TrimSpace(version)

		if version == "" {
			return nil, errors.New("new-registry: version key is empty")
		}

		if strings.TrimSpace(modelID) == "" {
			return nil, fmt.Errorf("new-registry: version %s: model id is empty", version)
		}

		entries[version] = Entry{
			Version: version,
			ModelID: modelID,
		}
	}

	return &Registry{
		entries: entries,
		baseDir: baseDir,
	}, nil
}

// Default returns a registry with the standard version table.
func Default(baseDir string) (*Registry, error) {
	return New(baseDir, map[string]string{
		"1":   "deepseek-ai/DeepSeek-Coder-V2-Lite-Base",
		"2":   "deepseek-ai/deepseek-coder-1.3b-base",
		"3":   "deepseek-ai/deepseek-coder-1.3b-base",
		"3.5": "deepseek-ai/deepseek-coder-1.3b-base",
		"4":   "deepseek-ai/DeepSeek-R1-Distill-Qwen-7B",
		"5":   "deepseek-ai/deepseek-coder-7b-base-v1.5",
		"6":   "deepseek-ai/deepseek-math-7b-base",
		"7":   "deepseek-ai/deepseek-coder-7b-instruct-v1.5",
	})
}

// Resolve returns the entry for the specified version.
func (r *Registry) Resolve(version string) (Entry, error) {
	entry, exists := r.entries[strings.TrimSpace(version)]
	if !exists {
		return Entry{}, fmt.Errorf("resolve: version %s: %w", version, ErrUnknownVersion)
	}

	return entry, nil
}

// Versions returns the set of configured versions.
func (r *Registry) Versions() []string {
	versions := make([]string, 0, len(r.entries))
	for version := range r.entries {
		versions = append(versions, version)
	}

	return versions
}

// =============================================================================
// Version scoped paths. Everything a tuning run produces lives under a
// single tuned_model_v<version> directory.

// VersionDir returns the root directory for the artifacts of a version.
func (r *Registry) VersionDir(version string) string {
	return filepath.Join(r.baseDir, fmt.Sprintf("tuned_model_v%s", version))
}

// TrainCacheDir returns the directory holding the tokenized training set.
func (r *Registry) TrainCacheDir(version string) string {
	return filepath.Join(r.VersionDir(version), "tokenized_train_dataset")
}

// ValCacheDir returns the directory holding the tokenized validation set.
func (r *Registry) ValCacheDir(version string) string {
	return filepath.Join(r.VersionDir(version), "tokenized_val_dataset")
}

// AdapterDir returns the directory the adapter weights are saved to.
func (r *Registry) AdapterDir(version string) string {
	return filepath.Join(r.VersionDir(version), "model")
}

// TokenizerDir returns the directory the tokenizer is saved to.
func (r *Registry) TokenizerDir(version string) string {
	return filepath.Join(r.VersionDir(version), "tokenizer")
}

// CheckpointDir returns the directory the trainer writes checkpoints to.
func (r *Registry) CheckpointDir(version string) string {
	return filepath.Join(r.VersionDir(version), "output")
}
