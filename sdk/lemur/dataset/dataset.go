// Package dataset loads the question/answer training data, shuffles and
// splits it, and produces tokenized examples ready for fine tuning. Tokenized
// splits are cached on disk so repeated runs skip the tokenization pass.
package dataset

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"runtime"

	"github.com/ardanlabs/lemur/sdk/lemur/engine"
	"github.com/ardanlabs/lemur/sdk/lemur/prompts"
	"golang.org/x/sync/errgroup"
)

// shuffleSeed keeps the shuffle order stable across runs so the cached
// splits stay valid.
const shuffleSeed = 42

// valFraction is the share of the shuffled records held out for evaluation.
const valFraction = 0.2

// Record represents one question/answer pair from the raw dataset file.
type Record struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Example represents one tokenized training example.
type Example struct {
	Prompt        string  `json:"prompt"`
	InputIDs      []int32 `json:"input_ids"`
	AttentionMask []int32 `json:"attention_mask"`
}

// Split holds the tokenized training and evaluation sets.
type Split struct {
	Train []Example
	Val   []Example
}

// Preparer produces tokenized train/val splits for a model version.
type Preparer struct {
	log      engine.Logger
	tkn      engine.Tokenizer
	trainDir string
	valDir   string
	workers  int
}

// NewPreparer constructs a preparer that caches the tokenized splits under
// the specified directories.
func NewPreparer(log engine.Logger, tkn engine.Tokenizer, trainDir string, valDir string) *Preparer {
	workers := runtime.GOMAXPROCS(0) / 2
	if workers < 1 {
		workers = 1
	}

	return &Preparer{
		log:      log,
		tkn:      tkn,
		trainDir: trainDir,
		valDir:   valDir,
		workers:  workers,
	}
}

// LoadOrBuild returns the tokenized splits, reading them from the cache when
// both splits are present and rebuilding them from the raw dataset file when
// either is missing or unreadable.
func (p *Preparer) LoadOrBuild(ctx context.Context, datasetPath string) (Split, error) {
	train, trainErr := loadCache(p.trainDir)
	val, valErr := loadCache(p.valDir)

	if trainErr == nil && valErr == nil {
		p.log(ctx, "dataset", "status", "loaded tokenized splits from cache", "train", len(train), "val", len(val))
		return Split{Train: train, Val: val}, nil
	}

	p.log(ctx, "dataset", "status", "cache miss, tokenizing", "trainErr", errString(trainErr), "valErr", errString(valErr))

	records, err := readRecords(datasetPath)
	if err != nil {
		return Split{}, fmt.Errorf("loadorbuild: %w", err)
	}

	if len(records) == 0 {
		return Split{}, errors.New("loadorbuild: dataset file has no records")
	}

	rnd := rand.New(rand.NewSource(shuffleSeed))
	rnd.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	valCount := int(float64(len(records)) * valFraction)
	trainRecs := records[:len(records)-valCount]
	valRecs := records[len(records)-valCount:]

	split := Split{}

	if split.Train, err = p.tokenizeAll(ctx, trainRecs); err != nil {
		return Split{}, fmt.Errorf("loadorbuild: train: %w", err)
	}

	if split.Val, err = p.tokenizeAll(ctx, valRecs); err != nil {
		return Split{}, fmt.Errorf("loadorbuild: val: %w", err)
	}

	if err := saveCache(p.trainDir, split.Train); err != nil {
		p.log(ctx, "dataset", "status", "unable to cache train split", "ERROR", err)
	}

	if err := saveCache(p.valDir, split.Val); err != nil {
		p.log(ctx, "dataset", "status", "unable to cache val split", "ERROR", err)
	}

	p.log(ctx, "dataset", "status", "tokenized splits built", "train", len(split.Train), "val", len(split.Val))

	return split, nil
}

// =============================================================================

func (p *Preparer) tokenizeAll(ctx context.Context, records []Record) ([]Example, error) {
	examples := make([]Example, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			prompt, err := prompts.Training(rec.Question, rec.Answer)
			if err != nil {
				return fmt.Errorf("record[%d]: %w", i, err)
			}

			ids := p.tkn.Tokenize(prompt)
			if max := p.tkn.MaxSequenceLength(); max > 0 && len(ids) > max {
				ids = ids[:max]
			}

			mask := make([]int32, len(ids))
			for j := range mask {
				mask[j] = 1
			}

			examples[i] = Example{
				Prompt:        prompt,
				InputIDs:      ids,
				AttentionMask: mask,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return examples, nil
}

// readRecords parses the dataset file as a JSON array, falling back to JSON
// Lines when the file holds one object per line.
func readRecords(datasetPath string) ([]Record, error) {
	data, err := os.ReadFile(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("readrecords: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	f, err := os.Open(datasetPath)
	if err != nil {
		return nil, fmt.Errorf("readrecords: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("readrecords: invalid line: %w", err)
		}

		records = append(records, rec)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("readrecords: %w", err)
	}

	return records, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
