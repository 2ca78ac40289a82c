package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/logger"
	"github.com/dvloznov/receipt-processor/internal/metrics"
)

// Deps groups the collaborators a Processor needs.
type Deps struct {
	Images     ImageSource
	Analyzer   Analyzer
	Archive    RecordArchive // optional
	Normalizer *Normalizer   // optional, defaults to NewNormalizer()
	Metrics    *metrics.Metrics
	ModelName  string
}

// Failure records a receipt that was dropped from a batch.
type Failure struct {
	Source string
	Err    error
}

// BatchResult holds the records of a batch in input order plus any failures.
type BatchResult struct {
	RunID    string
	Records  []domain.Record
	Failures []Failure
}

// LineItemCount returns the number of line items across all records.
func (r *BatchResult) LineItemCount() int {
	n := 0
	for _, rec := range r.Records {
		n += len(rec.LineItems)
	}
	return n
}

// Processor runs receipt images through the extraction pipeline one at a time.
type Processor struct {
	pipeline *Pipeline
	metrics  *metrics.Metrics
}

// NewProcessor wires the standard receipt pipeline.
func NewProcessor(deps Deps) *Processor {
	return &Processor{
		pipeline: NewReceiptPipeline(deps.Images, deps.Analyzer, deps.Archive, deps.Normalizer, deps.ModelName, deps.Metrics),
		metrics:  deps.Metrics,
	}
}

// ProcessReceipt runs a single image through the pipeline.
func (p *Processor) ProcessReceipt(ctx context.Context, source, eventName string) (domain.Record, error) {
	return p.process(ctx, uuid.New().String(), source, eventName)
}

// ProcessBatch processes sources sequentially in the given order.
// A receipt that fails is logged, recorded in Failures and skipped.
func (p *Processor) ProcessBatch(ctx context.Context, sources []string, eventName string) *BatchResult {
	log := logger.FromContext(ctx)
	result := &BatchResult{
		RunID:   uuid.New().String(),
		Records: make([]domain.Record, 0, len(sources)),
	}

	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			for _, rest := range sources[i:] {
				result.Failures = append(result.Failures, Failure{Source: rest, Err: err})
			}
			log.Warn().Err(err).Int("remaining", len(sources)-i).Msg("Batch interrupted")
			break
		}

		log.Info().Str("source", source).Msgf("Processing receipt %d/%d", i+1, len(sources))

		rec, err := p.process(ctx, result.RunID, source, eventName)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Source: source, Err: err})
			continue
		}
		result.Records = append(result.Records, rec)
	}

	log.Info().
		Str("run_id", result.RunID).
		Int("succeeded", len(result.Records)).
		Int("failed", len(result.Failures)).
		Msg("Batch finished")

	return result
}

func (p *Processor) process(ctx context.Context, runID, source, eventName string) (domain.Record, error) {
	ctx, log := logger.WithReceipt(ctx, runID, source)

	state := &PipelineState{
		RunID:     runID,
		Source:    source,
		EventName: eventName,
	}

	if err := p.pipeline.Execute(ctx, state); err != nil {
		var pf *ParseFailure
		if errors.As(err, &pf) {
			p.metrics.ObserveReceipt(metrics.StatusParseFailure)
			log.Warn().Err(err).Str("raw_excerpt", pf.Excerpt(rawExcerptLen)).Msg("Could not parse model response")
		} else {
			p.metrics.ObserveReceipt(metrics.StatusError)
			log.Error().Err(err).Msg("Receipt processing failed")
		}
		return domain.Record{}, fmt.Errorf("process %s: %w", source, err)
	}

	p.metrics.ObserveReceipt(metrics.StatusSuccess)
	log.Info().
		Str("merchant", state.Record.Merchant).
		Int("line_items", len(state.Record.LineItems)).
		Msg("Receipt processed")

	return *state.Record, nil
}
