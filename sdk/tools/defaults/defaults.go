// Package defaults provides default values for the cli tooling.
package defaults

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/hybridgroup/yzma/pkg/download"
)

var (
	basePath   = ".lemur"
	libsFolder = "libraries"
	modelsDir  = "models"
	tunedDir   = "finetuned_models"
)

// BaseDir is the default base folder location for lemur files.
func BaseDir(override string) string {
	if override != "" {
		return override
	}

	if v := os.Getenv("LEMUR_BASE_PATH"); v != "" {
		return v
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Sprintf("./%s", basePath)
	}

	return filepath.Join(homeDir, basePath)
}

// LibsDir returns the default location for the llama.cpp libraries. It will
// check the LEMUR_LIB_PATH env var first and then default to the home
// directory if one can be identified.
func LibsDir(override string) string {
	if override != "" {
		return override
	}

	if v := os.Getenv("LEMUR_LIB_PATH"); v != "" {
		return v
	}

	return filepath.Join(BaseDir(""), libsFolder)
}

// ModelsDir returns the default location for the pretrained model files. It
// will check the LEMUR_MODELS env var first.
func ModelsDir(override string) string {
	if override != "" {
		return override
	}

	if v := os.Getenv("LEMUR_MODELS"); v != "" {
		return v
	}

	return filepath.Join(BaseDir(""), modelsDir)
}

// TunedDir returns the default base location for tuned model artifacts. The
// version scoped tuned_model_v* directories live underneath it. It will
// check the LEMUR_TUNED env var first.
func TunedDir(override string) string {
	if override != "" {
		return override
	}

	if v := os.Getenv("LEMUR_TUNED"); v != "" {
		return v
	}

	return filepath.Join(BaseDir(""), tunedDir)
}

// Arch will check the LEMUR_ARCH var first and check its value against the
// proper set of architectures. If that variable is not set, then
// runtime.GOARCH is used.
func Arch(override string) (download.Arch, error) {
	if override != "" {
		return download.ParseArch(override)
	}

	if v := os.Getenv("LEMUR_ARCH"); v != "" {
		return download.ParseArch(v)
	}

	return download.ParseArch(runtime.GOARCH)
}

// OS will check the LEMUR_OS var first and check its value against the
// proper set of operating systems. If that variable is not set, then
// runtime.GOOS is used.
func OS(override string) (download.OS, error) {
	if override != "" {
		return download.ParseOS(override)
	}

	if v := os.Getenv("LEMUR_OS"); v != "" {
		return download.ParseOS(v)
	}

	return download.ParseOS(runtime.GOOS)
}

// Processor will check the LEMUR_PROCESSOR env var first and check its value
// against the proper set of processor values (cpu, cuda, metal, vulkan). If
// that variable is not set, then cpu is used as the default.
func Processor(override string) (download.Processor, error) {
	if override != "" {
		return download.ParseProcessor(override)
	}

	if v := os.Getenv("LEMUR_PROCESSOR"); v != "" {
		return download.ParseProcessor(v)
	}

	return download.CPU, nil
}
