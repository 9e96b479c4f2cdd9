package dataset_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/lemur/sdk/lemur/dataset"
	"github.com/google/go-cmp/cmp"
)

// wordTokenizer assigns one token per byte so tests stay deterministic
// without a real vocabulary.
type wordTokenizer struct {
	maxSeq int
}

func (t wordTokenizer) Tokenize(text string) []int32 {
	ids := make([]int32, len(text))
	for i := range text {
		ids[i] = int32(text[i])
	}
	return ids
}

func (t wordTokenizer) Decode(ids []int32) string {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteByte(byte(id))
	}
	return sb.String()
}

func (t wordTokenizer) MaxSequenceLength() int {
	return t.maxSeq
}

func noLog(ctx context.Context, msg string, args ...any) {}

func writeDataset(t *testing.T, dir string, count int) string {
	t.Helper()

	records := make([]dataset.Record, count)
	for i := range records {
		records[i] = dataset.Record{
			Question: "question " + strings.Repeat("q", i+1),
			Answer:   "answer " + strings.Repeat("a", i+1),
		}
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("Should be able to marshal the records: %s", err)
	}

	path := filepath.Join(dir, "dataset.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Should be able to write the dataset file: %s", err)
	}

	return path
}

func Test_LoadOrBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, 10)

	p := dataset.NewPreparer(noLog, wordTokenizer{maxSeq: 4096}, filepath.Join(dir, "train"), filepath.Join(dir, "val"))

	split, err := p.LoadOrBuild(context.Background(), path)
	if err != nil {
		t.Fatalf("Should be able to build the splits: %s", err)
	}

	t.Run("sizes", func(t *testing.T) {
		if len(split.Train) != 8 {
			t.Errorf("Should have 8 training examples, got %d", len(split.Train))
		}
		if len(split.Val) != 2 {
			t.Errorf("Should have 2 eval examples, got %d", len(split.Val))
		}
	})

	t.Run("tokens", func(t *testing.T) {
		for i, ex := range split.Train {
			if !strings.Contains(ex.Prompt, "### Response:") {
				t.Errorf("Should include the response marker in example %d", i)
			}
			if len(ex.InputIDs) != len(ex.Prompt) {
				t.Errorf("Should tokenize example %d fully, got %d tokens for %d bytes", i, len(ex.InputIDs), len(ex.Prompt))
			}
			if len(ex.AttentionMask) != len(ex.InputIDs) {
				t.Errorf("Should mask every token in example %d", i)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		dir2 := t.TempDir()
		path2 := writeDataset(t, dir2, 10)

		p2 := dataset.NewPreparer(noLog, wordTokenizer{maxSeq: 4096}, filepath.Join(dir2, "train"), filepath.Join(dir2, "val"))

		split2, err := p2.LoadOrBuild(context.Background(), path2)
		if err != nil {
			t.Fatalf("Should be able to build the splits again: %s", err)
		}

		if diff := cmp.Diff(split.Train, split2.Train); diff != "" {
			t.Errorf("Should shuffle identically across runs: %s", diff)
		}
	})
}

func Test_LoadOrBuild_Cache(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, 10)

	trainDir := filepath.Join(dir, "train")
	valDir := filepath.Join(dir, "val")

	p := dataset.NewPreparer(noLog, wordTokenizer{maxSeq: 4096}, trainDir, valDir)

	first, err := p.LoadOrBuild(context.Background(), path)
	if err != nil {
		t.Fatalf("Should be able to build the splits: %s", err)
	}

	// The dataset file is gone now, so a second call can only succeed by
	// reading the cache.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Should be able to remove the dataset file: %s", err)
	}

	second, err := p.LoadOrBuild(context.Background(), path)
	if err != nil {
		t.Fatalf("Should be able to load the splits from cache: %s", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Should get back the cached splits unchanged: %s", diff)
	}
}

func Test_LoadOrBuild_Truncation(t *testing.T) {
	dir := t.TempDir()
	path := writeDataset(t, dir, 5)

	p := dataset.NewPreparer(noLog, wordTokenizer{maxSeq: 8}, filepath.Join(dir, "train"), filepath.Join(dir, "val"))

	split, err := p.LoadOrBuild(context.Background(), path)
	if err != nil {
		t.Fatalf("Should be able to build the splits: %s", err)
	}

	for i, ex := range split.Train {
		if len(ex.InputIDs) > 8 {
			t.Errorf("Should truncate example %d to 8 tokens, got %d", i, len(ex.InputIDs))
		}
	}
}

func Test_ReadRecords_JSONLines(t *testing.T) {
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString(`{"question": "q1", "answer": "a1"}` + "\n")
	sb.WriteString("\n")
	sb.WriteString(`{"question": "q2", "answer": "a2"}` + "\n")

	path := filepath.Join(dir, "dataset.jsonl")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("Should be able to write the dataset file: %s", err)
	}

	p := dataset.NewPreparer(noLog, wordTokenizer{maxSeq: 4096}, filepath.Join(dir, "train"), filepath.Join(dir, "val"))

	split, err := p.LoadOrBuild(context.Background(), path)
	if err != nil {
		t.Fatalf("Should be able to build the splits: %s", err)
	}

	if got := len(split.Train) + len(split.Val); got != 2 {
		t.Errorf("Should read 2 records, got %d", got)
	}
}
