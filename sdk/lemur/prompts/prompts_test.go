package prompts_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/lemur/sdk/lemur/prompts"
	"github.com/google/go-cmp/cmp"
)

func Test_Training(t *testing.T) {
	got, err := prompts.Training("how many layers", "3")
	if err != nil {
		t.Fatalf("Should be able to render the training prompt: %s", err)
	}

	exp := "### Input:\nhow many layers\n\n### Response:\n3\n"

	if diff := cmp.Diff(got, exp); diff != "" {
		t.Log("got:", got)
		t.Log("exp:", exp)
		t.Fatalf("Should get back the expected prompt: %s", diff)
	}
}

func Test_PredictionPrompt(t *testing.T) {
	p := prompts.Prediction{
		PrmNames:      []string{"lr", "momentum"},
		Metric:        "acc",
		Task:          "img-classification",
		Dataset:       "cifar-10",
		TransformCode: "norm_256_flip",
		Accuracy:      0.91,
		Epoch:         5,
		NNCode:        "class Net: ...",
	}

	got, err := prompts.PredictionPrompt(p)
	if err != nil {
		t.Fatalf("Should be able to render the prediction prompt: %s", err)
	}

	checks := []string{
		"(lr, momentum)",
		"for the task: img-classification",
		"on dataset: cifar-10",
		"with transformation: norm_256_flip",
		"accuracy = 0.91",
		"training epochs = 5",
		"class Net: ...",
	}

	for _, c := range checks {
		if !strings.Contains(got, c) {
			t.Log("got:", got)
			t.Errorf("Should find %q in the rendered prompt", c)
		}
	}

	if !strings.HasSuffix(strings.TrimRight(got, "\n"), prompts.ResponseMarker) {
		t.Log("got:", got)
		t.Errorf("Should end the prompt with the response marker")
	}
}

func Test_ExtractResponse(t *testing.T) {
	tests := []struct {
		name    string
		decoded string
		exp     string
	}{
		{
			name:    "single",
			decoded: "### Input:\nquestion\n\n### Response:\n  42  \n",
			exp:     "42",
		},
		{
			name:    "multiple",
			decoded: "### Response:\nfirst\n### Response:\nsecond\n",
			exp:     "second",
		},
		{
			name:    "missing",
			decoded: "  raw output  ",
			exp:     "raw output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prompts.ExtractResponse(tt.decoded)
			if got != tt.exp {
				t.Errorf("Should extract %q, got %q", tt.exp, got)
			}
		})
	}
}
