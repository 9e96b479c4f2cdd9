// Package pull provides the models pull command code.
package pull

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ardanlabs/lemur/sdk/lemur"
	"github.com/ardanlabs/lemur/sdk/tools/models"
)

func run(args []string) error {
	modelURL := args[0]

	if _, err := url.ParseRequestURI(modelURL); err != nil {
		return fmt.Errorf("parse-request-uri: invalid URL: %s", modelURL)
	}

	models, err := models.New()
	if err != nil {
		return fmt.Errorf("unable to create models system: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()

	if _, err := models.Download(ctx, lemur.FmtLogger, modelURL); err != nil {
		return fmt.Errorf("download-model: %w", err)
	}

	return nil
}
