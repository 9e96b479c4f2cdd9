// Package trainer provides a client to a PEFT training agent that runs the
// LoRA fine-tuning job and writes the adapter, tokenizer, and checkpoint
// artifacts back to the shared model directory.
package trainer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/google/uuid"
)

// Set of job states reported by the training agent.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job represents the tuning job submitted to the training agent.
type Job struct {
	ID            string          `json:"id"`
	ModelID       string          `json:"model_id"`
	TrainDataDir  string          `json:"train_dataset_dir"`
	ValDataDir    string          `json:"val_dataset_dir"`
	AdapterDir    string          `json:"adapter_dir"`
	TokenizerDir  string          `json:"tokenizer_dir"`
	CheckpointDir string          `json:"checkpoint_dir"`
	LoRA          LoRAConfig      `json:"lora"`
	Arguments     Arguments       `json:"training_arguments"`
	Tokenizer     TokenizerConfig `json:"tokenizer"`
}

// Event represents one progress report from a running job.
type Event struct {
	JobID     string  `json:"job_id"`
	Epoch     float64 `json:"epoch"`
	Step      int     `json:"step"`
	TrainLoss float64 `json:"train_loss"`
	EvalLoss  float64 `json:"eval_loss"`
	Message   string  `json:"message"`
}

// Status represents the state of a job as reported by the training agent.
type Status struct {
	JobID string `json:"job_id"`
	State string `json:"state"`
	Error string `json:"error"`
}

// EvalResult represents the final evaluation of the tuned model.
type EvalResult struct {
	JobID    string  `json:"job_id"`
	EvalLoss float64 `json:"eval_loss"`
}

// Client provides access to a running training agent.
type Client struct {
	log     engine.Logger
	baseURL string
	http    *http.Client
}

// NewClient constructs a client for the training agent at the specified
// base URL.
func NewClient(log engine.Logger, baseURL string) *Client {
	return &Client{
		log:     log,
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// Submit registers a tuning job with the training agent and returns the job
// with its assigned id. A job submitted without an id gets a fresh uuid.
func (c *Client) Submit(ctx context.Context, job Job) (Job, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	c.log(ctx, "trainer", "status", "submitting job", "id", job.ID, "model", job.ModelID)

	if err := c.do(ctx, http.MethodPost, "/v1/jobs", job, &job); err != nil {
		return Job{}, fmt.Errorf("submit: %w", err)
	}

	return job, nil
}

// Watch streams progress events for the specified job until the stream ends
// or the context is canceled. Every event is passed to the specified
// function.
func (c *Client) Watch(ctx context.Context, jobID string, f func(Event)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/jobs/"+jobID+"/events", nil)
	if err != nil {
		return fmt.Errorf("watch: creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch: status %d", resp.StatusCode)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var evt Event
		if err := json.Unmarshal(line, &evt); err != nil {
			return fmt.Errorf("watch: invalid event: %w", err)
		}

		f(evt)
	}

	if err := sc.Err(); err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	return nil
}

// WaitForCompletion polls the job until the training agent reports a
// terminal state.
func (c *Client) WaitForCompletion(ctx context.Context, jobID string, interval time.Duration) (Status, error) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		var status Status
		if err := c.do(ctx, http.MethodGet, "/v1/jobs/"+jobID, nil, &status); err != nil {
			return Status{}, fmt.Errorf("waitforcompletion: %w", err)
		}

		switch status.State {
		case StatusCompleted:
			return status, nil

		case StatusFailed:
			return status, fmt.Errorf("waitforcompletion: job failed: %s", status.Error)
		}

		select {
		case <-ctx.Done():
			return Status{}, ctx.Err()

		case <-t.C:
		}
	}
}

// Evaluate asks the training agent for the final evaluation of a completed
// job.
func (c *Client) Evaluate(ctx context.Context, jobID string) (EvalResult, error) {
	var result EvalResult
	if err := c.do(ctx, http.MethodPost, "/v1/jobs/"+jobID+"/evaluate", nil, &result); err != nil {
		return EvalResult{}, fmt.Errorf("evaluate: %w", err)
	}

	return result, nil
}

// =============================================================================

func (c *Client) do(ctx context.Context, method string, path string, body any, v any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, er.Error)
		}

		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	}

	return nil
}
