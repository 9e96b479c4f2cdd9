package tune

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/lemur/foundation/logger"
	"github.com/ardanlabs/lemur/sdk/lemur/registry"
	"github.com/ardanlabs/lemur/sdk/lemur/trainer"
)

func Test_Train_DrainsEventStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/jobs":
			var job trainer.Job
			if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
				t.Errorf("Should be able to decode the job: %s", err)
			}
			json.NewEncoder(w).Encode(job)

		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/events"):
			fl := w.(http.Flusher)

			json.NewEncoder(w).Encode(trainer.Event{Epoch: 1, Step: 10, TrainLoss: 0.5, EvalLoss: 0.6})
			fl.Flush()

			// The stream stays open past the completed status poll so a
			// run that does not drain it misses this event.
			time.Sleep(100 * time.Millisecond)

			json.NewEncoder(w).Encode(trainer.Event{Epoch: 2, Step: 20, TrainLoss: 0.4, EvalLoss: 0.5})
			fl.Flush()

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/evaluate"):
			json.NewEncoder(w).Encode(trainer.EvalResult{EvalLoss: 0.42})

		case r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(trainer.Status{State: trainer.StatusCompleted})

		default:
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	var progress atomic.Int32

	log := logger.NewWithEvents(io.Discard, logger.LevelInfo, "TEST", nil, logger.Events{
		Info: func(ctx context.Context, r logger.Record) {
			if r.Attributes["status"] == "progress" {
				progress.Add(1)
			}
		},
	})

	reg, err := registry.Default(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to construct the registry: %s", err)
	}

	entry, err := reg.Resolve("2")
	if err != nil {
		t.Fatalf("Should be able to resolve the version: %s", err)
	}

	tnr := Tuner{
		log:          log,
		registry:     reg,
		trainer:      trainer.NewClient(log.Info, srv.URL),
		pollInterval: time.Millisecond,
	}

	result, err := tnr.train(context.Background(), entry)
	if err != nil {
		t.Fatalf("Should be able to run the training job: %s", err)
	}

	if result.EvalLoss != 0.42 {
		t.Errorf("Should return the final evaluation, got %v", result.EvalLoss)
	}

	if got := progress.Load(); got != 2 {
		t.Errorf("Should process every progress event before returning, got %d", got)
	}
}
