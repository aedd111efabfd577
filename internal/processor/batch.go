package processor

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"facturas/internal/model"
)

// ErrNoValidData is the batch-scoped failure raised when every document of a
// batch was excluded. Individual exclusions are not errors; all of them
// together are.
var ErrNoValidData = errors.New("no valid data could be extracted from any document")

// BatchOutcome collects everything a finished batch produced. Record order is
// completion order and carries no meaning.
type BatchOutcome struct {
	Records  []model.ExtractedRecord
	Failures []model.ProcessingFailure
	Stats    model.SummaryStats
}

// DocumentPipeline is the per-document unit of work the coordinator fans out
type DocumentPipeline interface {
	Process(ctx context.Context, ref model.DocumentRef) Result
}

// BatchCoordinator fans a batch out to one goroutine per document, joins all
// outcomes, and aggregates the successes. Documents share no state while in
// flight; each unit reports exactly one Result.
type BatchCoordinator struct {
	pipeline DocumentPipeline
}

// NewBatchCoordinator creates a coordinator over the given pipeline
func NewBatchCoordinator(pipeline DocumentPipeline) *BatchCoordinator {
	return &BatchCoordinator{pipeline: pipeline}
}

// Run processes all documents concurrently and aggregates the successes.
// It fails with ErrNoValidData only when zero records result; a batch with
// any success completes, carrying the failures as diagnostic metadata.
func (c *BatchCoordinator) Run(ctx context.Context, docs []model.DocumentRef) (*BatchOutcome, error) {
	results := make(chan Result, len(docs))

	var wg sync.WaitGroup
	wg.Add(len(docs))
	for _, ref := range docs {
		go func(ref model.DocumentRef) {
			defer wg.Done()
			results <- c.pipeline.Process(ctx, ref)
		}(ref)
	}
	wg.Wait()
	close(results)

	outcome := &BatchOutcome{}
	for result := range results {
		if result.Succeeded() {
			outcome.Records = append(outcome.Records, *result.Record)
		} else {
			outcome.Failures = append(outcome.Failures, *result.Failure)
		}
	}

	log.Info().
		Int("documents", len(docs)).
		Int("records", len(outcome.Records)).
		Int("failures", len(outcome.Failures)).
		Msg("Batch processing settled")

	if len(outcome.Records) == 0 {
		return nil, ErrNoValidData
	}

	outcome.Stats = Summarize(outcome.Records)
	return outcome, nil
}

// Summarize computes the batch statistics over the successful records only.
// Callers must not invoke it with an empty set; the coordinator never does.
// Billing dates are compared lexicographically since the pipeline performs no
// calendar parsing.
func Summarize(records []model.ExtractedRecord) model.SummaryStats {
	stats := model.SummaryStats{
		FilesProcessed: len(records),
	}

	for _, record := range records {
		stats.TotalConsumption += record.EnergyP1
		stats.TotalAmount += record.TotalAmount

		if record.BillingStart != "" {
			if stats.EarliestBillingStart == "" || record.BillingStart < stats.EarliestBillingStart {
				stats.EarliestBillingStart = record.BillingStart
			}
		}
		if record.BillingEnd != "" {
			if stats.LatestBillingEnd == "" || record.BillingEnd > stats.LatestBillingEnd {
				stats.LatestBillingEnd = record.BillingEnd
			}
		}
	}

	stats.AverageAmount = stats.TotalAmount / float64(stats.FilesProcessed)
	return stats
}
