// Package libs provides the libs command code.
package libs

import (
	"context"
	"fmt"
	"time"

	"github.com/ardanlabs/lemur/sdk/lemur"
	"github.com/ardanlabs/lemur/sdk/lemur/engine/llamacpp"
	"github.com/ardanlabs/lemur/sdk/tools/libs"
)

func run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	lib, err := libs.New()
	if err != nil {
		return err
	}

	tag, err := lib.Download(ctx, lemur.FmtLogger)
	if err != nil {
		return fmt.Errorf("unable to install llama.cpp: %w", err)
	}

	if err := llamacpp.Init(); err != nil {
		return fmt.Errorf("installation invalid: %w", err)
	}

	fmt.Println("Installed llama.cpp version:", tag)

	return nil
}
