package trainer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/lemur/sdk/lemur/trainer"
	"github.com/google/go-cmp/cmp"
)

func noLog(ctx context.Context, msg string, args ...any) {}

func Test_Submit(t *testing.T) {
	var got trainer.Job

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/jobs" {
			t.Errorf("Should post to /v1/jobs, got %s %s", r.Method, r.URL.Path)
		}

		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Should be able to decode the job: %s", err)
		}

		json.NewEncoder(w).Encode(got)
	}))
	defer srv.Close()

	c := trainer.NewClient(noLog, srv.URL)

	job := trainer.Job{
		ModelID:      "deepseek-ai/deepseek-coder-1.3b-base",
		TrainDataDir: "/data/train",
		ValDataDir:   "/data/val",
		LoRA:         trainer.DefaultLoRA(),
		Arguments:    trainer.DefaultArguments(),
		Tokenizer:    trainer.DefaultTokenizer(),
	}

	sub, err := c.Submit(context.Background(), job)
	if err != nil {
		t.Fatalf("Should be able to submit the job: %s", err)
	}

	if sub.ID == "" {
		t.Errorf("Should assign a job id")
	}

	if diff := cmp.Diff(got.LoRA, trainer.DefaultLoRA()); diff != "" {
		t.Errorf("Should send the adapter settings unchanged: %s", diff)
	}

	if got.Arguments.NumTrainEpochs != 35 {
		t.Errorf("Should train for 35 epochs, got %d", got.Arguments.NumTrainEpochs)
	}

	if got.Arguments.LoggingSteps != 10 {
		t.Errorf("Should log every 10 steps, got %d", got.Arguments.LoggingSteps)
	}

	if got.Tokenizer.PadTokenID != 0 || got.Tokenizer.PaddingSide != "right" {
		t.Errorf("Should send the tokenizer padding settings, got %+v", got.Tokenizer)
	}
}

func Test_Watch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/jobs/job-1/events" {
			t.Errorf("Should request the event stream, got %s", r.URL.Path)
		}

		enc := json.NewEncoder(w)
		for i := 1; i <= 3; i++ {
			enc.Encode(trainer.Event{JobID: "job-1", Epoch: float64(i), TrainLoss: 1.0 / float64(i)})
		}
	}))
	defer srv.Close()

	c := trainer.NewClient(noLog, srv.URL)

	var events []trainer.Event
	err := c.Watch(context.Background(), "job-1", func(evt trainer.Event) {
		events = append(events, evt)
	})
	if err != nil {
		t.Fatalf("Should be able to watch the job: %s", err)
	}

	if len(events) != 3 {
		t.Fatalf("Should receive 3 events, got %d", len(events))
	}

	if events[2].Epoch != 3 {
		t.Errorf("Should receive events in order, got final epoch %v", events[2].Epoch)
	}
}

func Test_WaitForCompletion(t *testing.T) {
	var polls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++

		state := trainer.StatusRunning
		if polls >= 3 {
			state = trainer.StatusCompleted
		}

		json.NewEncoder(w).Encode(trainer.Status{JobID: "job-1", State: state})
	}))
	defer srv.Close()

	c := trainer.NewClient(noLog, srv.URL)

	status, err := c.WaitForCompletion(context.Background(), "job-1", time.Millisecond)
	if err != nil {
		t.Fatalf("Should be able to wait for the job: %s", err)
	}

	if status.State != trainer.StatusCompleted {
		t.Errorf("Should end in the completed state, got %s", status.State)
	}

	if polls < 3 {
		t.Errorf("Should poll until the job completes, got %d polls", polls)
	}
}

func Test_WaitForCompletion_Failed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(trainer.Status{JobID: "job-1", State: trainer.StatusFailed, Error: "out of memory"})
	}))
	defer srv.Close()

	c := trainer.NewClient(noLog, srv.URL)

	if _, err := c.WaitForCompletion(context.Background(), "job-1", time.Millisecond); err == nil {
		t.Fatal("Should report an error for a failed job")
	}
}

func Test_Evaluate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/jobs/job-1/evaluate" {
			t.Errorf("Should post to the evaluate endpoint, got %s %s", r.Method, r.URL.Path)
		}

		json.NewEncoder(w).Encode(trainer.EvalResult{JobID: "job-1", EvalLoss: 0.42})
	}))
	defer srv.Close()

	c := trainer.NewClient(noLog, srv.URL)

	result, err := c.Evaluate(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Should be able to evaluate the job: %s", err)
	}

	if result.EvalLoss != 0.42 {
		t.Errorf("Should get back the eval loss, got %v", result.EvalLoss)
	}
}
