// Package metrics constructs the metrics the application will track.
package metrics

import (
	"expvar"
	"runtime"
	"time"
)

var m metrics

type metrics struct {
	goroutines        *expvar.Int
	errors            *expvar.Int
	recordsProcessed  *expvar.Int
	epochsCompleted   *expvar.Int
	modelFileLoadTime *avgMetric
	tokenizeTime      *avgMetric
	trainLoss         *avgMetric
	evalLoss          *avgMetric
	generations       *usage
}

func init() {
	m = metrics{
		goroutines:        expvar.NewInt("service_goroutines"),
		errors:            expvar.NewInt("service_errors"),
		recordsProcessed:  expvar.NewInt("generate_records"),
		epochsCompleted:   expvar.NewInt("tune_epochs"),
		modelFileLoadTime: newAvgMetric("model_load"),
		tokenizeTime:      newAvgMetric("dataset_tokenize"),
		trainLoss:         newAvgMetric("tune_loss_train"),
		evalLoss:          newAvgMetric("tune_loss_eval"),
		generations:       newUsage("usage_generations"),
	}
}

// AddGoroutines refreshes the goroutine metric.
func AddGoroutines() int64 {
	g := int64(runtime.NumGoroutine())
	m.goroutines.Set(g)
	return g
}

// AddErrors increments the errors metric by 1.
func AddErrors() int64 {
	m.errors.Add(1)
	return m.errors.Value()
}

// AddRecordsProcessed increments the processed record metric by 1.
func AddRecordsProcessed() int64 {
	m.recordsProcessed.Add(1)
	return m.recordsProcessed.Value()
}

// AddEpochsCompleted increments the completed epoch metric by 1.
func AddEpochsCompleted() int64 {
	m.epochsCompleted.Add(1)
	return m.epochsCompleted.Value()
}

// AddModelFileLoadTime captures the specified duration for loading a model file.
func AddModelFileLoadTime(duration time.Duration) {
	m.modelFileLoadTime.add(duration.Seconds())
}

// AddTokenizeTime captures the specified duration for tokenizing a dataset split.
func AddTokenizeTime(duration time.Duration) {
	m.tokenizeTime.add(duration.Seconds())
}

// AddTrainLoss captures the training loss reported for an epoch.
func AddTrainLoss(loss float64) {
	m.trainLoss.add(loss)
}

// AddEvalLoss captures the eval loss reported for an epoch.
func AddEvalLoss(loss float64) {
	m.evalLoss.add(loss)
}

// AddGenerationUsage captures the specified usage values for a generation.
func AddGenerationUsage(promptTokens, outputTokens, totalTokens int, tokensPerSecond float64) {
	data := usageData{
		PromptTokens:    promptTokens,
		OutputTokens:    outputTokens,
		TotalTokens:     totalTokens,
		TokensPerSecond: tokensPerSecond,
	}

	m.generations.add(data)
}
