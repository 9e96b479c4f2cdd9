package models

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/lemur/sdk/tools/downloader"
)

// Logger represents a logger for capturing events.
type Logger func(ctx context.Context, msg string, args ...any)

// Download performs a complete workflow for downloading and installing
// the specified model.
func (m *Models) Download(ctx context.Context, log Logger, modelURL string) (Path, error) {
	if !hasNetwork() {
		return Path{}, fmt.Errorf("download-model: no network available")
	}

	defer func() {
		if err := m.BuildIndex(); err != nil {
			log(ctx, "download-model: unable to create index", "ERROR", err)
		}
	}()

	modelFileName, err := extractFileName(modelURL)
	if err != nil {
		return Path{}, fmt.Errorf("download-model: unable to extract file name: %w", err)
	}

	modelID := extractModelID(modelFileName)

	log(ctx, fmt.Sprintf("download-model: model-url[%s] model-id[%s]", modelURL, modelID))

	progress := func(src string, currentSize int64, totalSize int64, mibPerSec float64, complete bool) {
		log(ctx, fmt.Sprintf("\x1b[1A\r\x1b[Kdownload-model: Downloading %s... %d MiB of %d MiB (%.2f MiB/s)", src, currentSize/(1024*1024), totalSize/(1024*1024), mibPerSec))
	}

	mp, errOrg := m.downloadModel(ctx, modelURL, progress)
	if errOrg != nil {
		log(ctx, "download-model:", "ERROR", errOrg, "model-file-url", modelURL)

		if mp, err := m.RetrievePath(modelID); err == nil {
			size, err := fileSize(mp.ModelFile)
			if err != nil {
				return Path{}, fmt.Errorf("download-model: unable to check file size of model: %w", err)
			}

			if size == 0 {
				os.Remove(mp.ModelFile)
				return Path{}, fmt.Errorf("download-model: unable to download file: %w", errOrg)
			}

			log(ctx, "download-model: status[using installed version of model]")
			return mp, nil
		}

		return Path{}, fmt.Errorf("download-model: unable to download model: %w", errOrg)
	}

	switch mp.Downloaded {
	case true:
		log(ctx, "download-model: status[downloaded]")

	default:
		log(ctx, "download-model: status[already exists]")
	}

	return mp, nil
}

// =============================================================================

func (m *Models) downloadModel(ctx context.Context, modelURL string, progress downloader.ProgressFunc) (Path, error) {
	modelFileName, err := extractFileName(modelURL)
	if err != nil {
		return Path{}, err
	}

	u, err := url.Parse(modelURL)
	if err != nil {
		return Path{}, fmt.Errorf("parse-url: %w", err)
	}

	// Hugging face urls carry <org>/<family>/resolve/<rev>/<file>. Keep the
	// org/family structure on disk so the index can report ownership.
	org, family := extractOwnership(u.Path)

	dest := filepath.Join(m.modelsPath, org, family, modelFileName)

	if size, err := fileSize(dest); err == nil && size > 0 {
		return Path{ModelFile: dest, Downloaded: false}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Path{}, fmt.Errorf("mkdir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 60*time.Minute)
	defer cancel()

	downloaded, err := downloader.Download(ctx, modelURL, dest, progress, downloader.SizeIntervalMIB100)
	if err != nil {
		return Path{}, err
	}

	return Path{ModelFile: dest, Downloaded: downloaded}, nil
}

func extractOwnership(urlPath string) (org string, family string) {
	parts := strings.Split(strings.Trim(urlPath, "/"), "/")

	org = "local"
	family = "misc"

	if len(parts) >= 2 {
		org = parts[0]
		family = parts[1]
	}

	return org, family
}

func extractFileName(modelFileURL string) (string, error) {
	u, err := url.Parse(modelFileURL)
	if err != nil {
		return "", fmt.Errorf("parse-url: %w", err)
	}

	fileName := path.Base(u.Path)
	if fileName == "." || fileName == "/" {
		return "", fmt.Errorf("no file name in url: %s", modelFileURL)
	}

	return fileName, nil
}

func fileSize(filePath string) (int64, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func hasNetwork() bool {
	conn, err := net.DialTimeout("tcp", "8.8.8.8:53", 2*time.Second)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}
