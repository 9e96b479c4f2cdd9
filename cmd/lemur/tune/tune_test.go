package tune

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_BuildEnvVars(t *testing.T) {
	if err := Cmd.Flags().Set("version", "2"); err != nil {
		t.Fatalf("setting version flag: %s", err)
	}

	if err := Cmd.Flags().Set("dataset", "dataset.json"); err != nil {
		t.Fatalf("setting dataset flag: %s", err)
	}

	if err := Cmd.Flags().Set("context-window", "4096"); err != nil {
		t.Fatalf("setting context-window flag: %s", err)
	}

	exp := []string{
		"LEMUR_TUNE_VERSION=2",
		"LEMUR_TUNE_DATASET=dataset.json",
		"LEMUR_TUNE_CONTEXT_WINDOW=4096",
	}

	got := buildEnvVars(Cmd)

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("env vars mismatch: %s", diff)
	}
}
