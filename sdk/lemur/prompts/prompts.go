// Package prompts renders the prompt text for training examples and for
// hyperparameter prediction requests.
package prompts

import (
	"fmt"
	"strings"

	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
)

// ResponseMarker separates the task description from the model's answer in
// every prompt this system renders. Response extraction keys off the last
// occurrence of this marker.
const ResponseMarker = "### Response:"

const trainingScript = `### Input:
{{ question }}

### Response:
{{ answer }}
`

const predictionScript = `### Input:
Generate only the values (don't provide any explanation) of the hyperparameters ({{ prm_names }}) of a given model: {{ metric }} for the task: {{ task }} on dataset: {{ dataset }}, with transformation: {{ transform_code }}, so that the model achieves accuracy = {{ accuracy }} with number of training epochs = {{ epoch }}.
Code of that model:
{{ nn_code }}

### Response:
`

// Prediction carries the fields of a task record that the prediction
// prompt embeds.
type Prediction struct {
	PrmNames      []string
	Metric        string
	Task          string
	Dataset       string
	TransformCode string
	Accuracy      float64
	Epoch         int
	NNCode        string
}

// Training renders the prompt used to build a training example from a
// question/answer record.
func Training(question string, answer string) (string, error) {
	return render(trainingScript, map[string]any{
		"question": question,
		"answer":   answer,
	})
}

// PredictionPrompt renders the task description asking the model for the
// hyperparameter values of a record.
func PredictionPrompt(p Prediction) (string, error) {
	return render(predictionScript, map[string]any{
		"prm_names":      strings.Join(p.PrmNames, ", "),
		"metric":         p.Metric,
		"task":           p.Task,
		"dataset":        p.Dataset,
		"transform_code": p.TransformCode,
		"accuracy":       p.Accuracy,
		"epoch":          p.Epoch,
		"nn_code":        p.NNCode,
	})
}

// ExtractResponse returns the text after the last response marker in the
// decoded model output, trimmed of surrounding whitespace. Output with no
// marker is returned whole, trimmed.
func ExtractResponse(decoded string) string {
	idx := strings.LastIndex(decoded, ResponseMarker)
	if idx == -1 {
		return strings.TrimSpace(decoded)
	}

	return strings.TrimSpace(decoded[idx+len(ResponseMarker):])
}

// =============================================================================

func render(script string, values map[string]any) (string, error) {
	t, err := gonja.FromString(script)
	if err != nil {
		return "", fmt.Errorf("render: failed to parse template: %w", err)
	}

	s, err := t.ExecuteToString(exec.NewContext(values))
	if err != nil {
		return "", fmt.Errorf("render: failed to execute template: %w", err)
	}

	return s, nil
}
