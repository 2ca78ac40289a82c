package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/receipt-processor/internal/domain"
	"github.com/dvloznov/receipt-processor/internal/logger"
	"github.com/dvloznov/receipt-processor/internal/metrics"
)

// PipelineStep represents a single step in receipt processing.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps for one receipt.
type PipelineState struct {
	RunID     string
	Source    string
	EventName string

	Image    []byte
	MIMEType string

	RawResponse string
	Parsed      map[string]interface{}
	Record      *domain.Record
}

// Step 1: FetchImageStep loads the receipt image.
type FetchImageStep struct {
	Images ImageSource
}

func (s *FetchImageStep) Execute(ctx context.Context, state *PipelineState) error {
	data, mimeType, err := s.Images.Fetch(ctx, state.Source)
	if err != nil {
		return fmt.Errorf("fetch image: %w", err)
	}
	state.Image = data
	state.MIMEType = mimeType
	return nil
}

// Step 2: AnalyzeReceiptStep asks the model to describe the receipt.
type AnalyzeReceiptStep struct {
	Analyzer Analyzer
	Metrics  *metrics.Metrics
}

func (s *AnalyzeReceiptStep) Execute(ctx context.Context, state *PipelineState) error {
	start := time.Now()
	raw, err := s.Analyzer.AnalyzeReceipt(ctx, state.Image, state.MIMEType, state.EventName)
	s.Metrics.ObserveAnalyze(time.Since(start))
	if err != nil {
		return fmt.Errorf("analyze receipt: %w", err)
	}
	state.RawResponse = raw
	return nil
}

// Step 3: StoreModelOutputStep archives the raw model response.
// Archive errors are logged and do not stop the receipt.
type StoreModelOutputStep struct {
	Archive   RecordArchive
	ModelName string
}

func (s *StoreModelOutputStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Archive == nil {
		return nil
	}
	out := domain.ModelOutput{
		RunID:     state.RunID,
		Source:    state.Source,
		EventName: state.EventName,
		ModelName: s.ModelName,
		Raw:       state.RawResponse,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Archive.SaveModelOutput(ctx, out); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("source", state.Source).Msg("Failed to archive model output")
	}
	return nil
}

// Step 4: ParseResponseStep extracts the JSON object from the model response.
type ParseResponseStep struct{}

func (s *ParseResponseStep) Execute(ctx context.Context, state *PipelineState) error {
	parsed, err := ParseResponse(state.RawResponse)
	if err != nil {
		return err
	}
	state.Parsed = parsed
	return nil
}

// Step 5: NormalizeStep converts the parsed object into a domain record.
type NormalizeStep struct {
	Normalizer *Normalizer
}

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	rec := s.Normalizer.Normalize(state.Parsed, Metadata{Source: state.Source, EventName: state.EventName})
	state.Record = &rec
	return nil
}

// Step 6: ArchiveRecordStep persists the normalized record.
// Archive errors are logged and do not stop the receipt.
type ArchiveRecordStep struct {
	Archive RecordArchive
}

func (s *ArchiveRecordStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Archive == nil || state.Record == nil {
		return nil
	}
	if err := s.Archive.SaveRecord(ctx, state.RunID, *state.Record); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Str("source", state.Source).Msg("Failed to archive receipt record")
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewReceiptPipeline creates the standard 6-step pipeline for a receipt image.
// A nil archive skips persistence.
func NewReceiptPipeline(images ImageSource, analyzer Analyzer, archive RecordArchive, normalizer *Normalizer, modelName string, m *metrics.Metrics) *Pipeline {
	if normalizer == nil {
		normalizer = NewNormalizer()
	}
	return NewPipeline(
		&FetchImageStep{Images: images},
		&AnalyzeReceiptStep{Analyzer: analyzer, Metrics: m},
		&StoreModelOutputStep{Archive: archive, ModelName: modelName},
		&ParseResponseStep{},
		&NormalizeStep{Normalizer: normalizer},
		&ArchiveRecordStep{Archive: archive},
	)
}
