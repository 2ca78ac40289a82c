package pipeline

import (
	"context"

	"github.com/dvloznov/receipt-processor/internal/domain"
)

// ImageSource loads receipt images from local disk or object storage.
type ImageSource interface {
	// Fetch returns the image bytes and their MIME type.
	Fetch(ctx context.Context, uri string) ([]byte, string, error)
}

// Analyzer provides an interface for AI-powered receipt reading.
// This interface enables mocking and testing of the model call.
type Analyzer interface {
	// AnalyzeReceipt sends the image to a model and returns its raw text response.
	AnalyzeReceipt(ctx context.Context, image []byte, mimeType, eventName string) (string, error)
}

// TextGenerator answers a plain text prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// RecordArchive persists model outputs and normalized records.
type RecordArchive interface {
	SaveModelOutput(ctx context.Context, out domain.ModelOutput) error
	SaveRecord(ctx context.Context, runID string, rec domain.Record) error
}
