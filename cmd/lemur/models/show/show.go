// Package show provides the models show command code.
package show

import (
	"context"
	"fmt"

	"github.com/ardanlabs/lemur/sdk/lemur"
	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/tools/models"
)

func run(args []string) error {
	modelID := args[0]

	models, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	fi, err := models.RetrieveFile(modelID)
	if err != nil {
		return fmt.Errorf("unable to retrieve model info: %w", err)
	}

	mp, err := models.RetrievePath(modelID)
	if err != nil {
		return fmt.Errorf("unable to retrieve model path: %w", err)
	}

	if err := llamacpp.Init(); err != nil {
		return fmt.Errorf("unable to init llama.cpp: %w", err)
	}

	mdl, err := llamacpp.NewModel(engine.Config{
		Log:       lemur.FmtLogger,
		ModelFile: mp.ModelFile,
	})
	if err != nil {
		return err
	}
	defer mdl.Unload(context.Background())

	printModel(fi, mdl.Info())

	return nil
}

// =============================================================================

func printModel(fi models.File, info engine.Info) {
	fmt.Printf("ID:           %s\n", fi.ID)
	fmt.Printf("OwnedBy:      %s\n", fi.OwnedBy)
	fmt.Printf("ModelFamily:  %s\n", fi.ModelFamily)
	fmt.Printf("Desc:         %s\n", info.Desc)
	fmt.Printf("Size:         %.2f MiB\n", float64(info.Size)/(1024*1024))
	fmt.Printf("CtxWindow:    %d\n", info.ContextWindow)
	fmt.Println("Metadata:")
	for k, v := range info.Metadata {
		fmt.Printf("  %s: %s\n", k, v)
	}
}
