// Package cache manages the set of tuned models loaded in memory. Generation
// runs acquire a model by version and the cache unloads models that sit
// unused past their TTL.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/tools/models"
	"github.com/maypok86/otter/v2"
)

// adapterFileName is the file the training side writes the converted LoRA
// adapter to inside a version's adapter directory.
const adapterFileName = "adapter.gguf"

// Config represents settings for the model cache.
//
// Device: Specify a specific device. Leave empty for the system to pick
// the device.
//
// ContextWindow: Sets the context window for all models. Defaults to what is
// in the model metadata if set to 0.
//
// MaxInCache: Defines the maximum number of tuned models held in memory at a
// time. Defaults to 1 if the value is 0.
//
// CacheTTL: Defines the time a loaded model can live in the cache without
// being used.
type Config struct {
	Log           *logger.Logger
	Registry      *registry.Registry
	Device        string
	ContextWindow int
	MaxInCache    int
	CacheTTL      time.Duration
}

func validateConfig(cfg Config) Config {
	if cfg.MaxInCache <= 0 {
		cfg.MaxInCache = 1
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return cfg
}

// Cache maintains loaded tuned models keyed by their version.
type Cache struct {
	log           *logger.Logger
	registry      *registry.Registry
	device        string
	contextWindow int
	cache         *otter.Cache[string, engine.Model]
	itemsInCache  atomic.Int32
	models        *models.Models
}

// New constructs the cache for use.
func New(cfg Config) (*Cache, error) {
	cfg = validateConfig(cfg)

	models, err := models.New()
	if err != nil {
		return nil, fmt.Errorf("creating models system: %w", err)
	}

	c := Cache{
		log:           cfg.Log,
		registry:      cfg.Registry,
		device:        cfg.Device,
		contextWindow: cfg.ContextWindow,
		models:        models,
	}

	opt := otter.Options[string, engine.Model]{
		MaximumSize:      cfg.MaxInCache,
		ExpiryCalculator: otter.ExpiryWriting[string, engine.Model](cfg.CacheTTL),
		OnDeletion:       c.eviction,
	}

	cache, err := otter.New(&opt)
	if err != nil {
		return nil, fmt.Errorf("constructing cache: %w", err)
	}

	c.cache = cache

	return &c, nil
}

// Shutdown releases all models from the cache and performs a proper
// unloading.
func (c *Cache) Shutdown(ctx context.Context) error {
	if _, exists := ctx.Deadline(); !exists {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 45*time.Second)
		defer cancel()
	}

	c.cache.InvalidateAll()

	for c.itemsInCache.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.NewTimer(100 * time.Millisecond).C:
		}
	}

	return nil
}

// Acquire provides the tuned model for the specified version, loading the
// base weights plus the version's adapter when the model is not already in
// memory.
func (c *Cache) Acquire(ctx context.Context, version string) (engine.Model, error) {
	mdl, exists := c.cache.GetIfPresent(version)
	if exists {
		return mdl, nil
	}

	entry, err := c.registry.Resolve(version)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	fi, err := c.models.RetrieveForModel(entry.ModelID)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	mdl, err = llamacpp.NewModel(engine.Config{
		Log:           c.log.Info,
		ModelFile:     fi.ModelFile,
		AdapterFile:   filepath.Join(c.registry.AdapterDir(version), adapterFileName),
		Device:        c.device,
		ContextWindow: c.contextWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("acquire: unable to create inference model: %w", err)
	}

	c.cache.Set(version, mdl)
	c.itemsInCache.Add(1)

	info := mdl.Info()
	c.log.Info(ctx, "acquire-model", "status", "model cache add", "version", version, "model", entry.ModelID, "desc", info.Desc, "contextWindow", info.ContextWindow)

	return mdl, nil
}

func (c *Cache) eviction(event otter.DeletionEvent[string, engine.Model]) {
	const unloadTimeout = 5 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), unloadTimeout)
	defer cancel()

	c.log.Info(ctx, "model cache eviction", "key", event.Key, "cause", event.Cause, "was-evicted", event.WasEvicted())
	if err := event.Value.Unload(ctx); err != nil {
		c.log.Info(ctx, "model cache eviction", "key", event.Key, "ERROR", err)
	}

	c.itemsInCache.Add(-1)
}
