package cache_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/cache"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
)

func newCache(t *testing.T) *cache.Cache {
	t.Helper()

	t.Setenv("LEMUR_MODELS", t.TempDir())

	reg, err := registry.Default(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the registry: %s", err)
	}

	c, err := cache.New(cache.Config{
		Log:      logger.New(io.Discard, logger.LevelInfo, "TEST", nil),
		Registry: reg,
		CacheTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("Should be able to construct the cache: %s", err)
	}

	return c
}

func Test_Acquire_UnknownVersion(t *testing.T) {
	c := newCache(t)

	if _, err := c.Acquire(context.Background(), "99"); !errors.Is(err, registry.ErrUnknownVersion) {
		t.Fatalf("Should get back ErrUnknownVersion, got %v", err)
	}
}

func Test_Acquire_MissingModelFile(t *testing.T) {
	c := newCache(t)

	// The version is known but no model file has been pulled.
	if _, err := c.Acquire(context.Background(), "2"); err == nil {
		t.Fatal("Should fail when the model file is not installed")
	}
}

func Test_Shutdown_Empty(t *testing.T) {
	c := newCache(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("Should be able to shut down an empty cache: %s", err)
	}
}
