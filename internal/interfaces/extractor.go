package interfaces

import (
	"context"

	"github.com/sahemlabs/maktaba/internal/models"
)

// ByteSource resolves a document's byte source reference to its raw bytes.
// The reference format (file path, object key) is owned by the storage
// collaborator; the extraction core only needs the bytes.
type ByteSource interface {
	Open(ctx context.Context, ref string) ([]byte, error)
}

// ExtractionOutput is the result of one direct (non-OCR) extraction attempt.
type ExtractionOutput struct {
	Text   string
	Method string // structured or fallback
}

// TextExtractor attempts direct text extraction from document bytes.
// A well-formed but text-empty document yields empty text, not an error.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte) (*ExtractionOutput, error)
	PageCount(ctx context.Context, data []byte) (int, error)
	PageImages(ctx context.Context, data []byte) ([][]byte, error)
}

// RecognitionResult is the aggregate output of recognizing all pages.
type RecognitionResult struct {
	Text       string
	Confidence float64 // 0.0-1.0, averaged over recognized tokens
	Partial    bool    // at least one page was skipped
}

// Recognizer performs optical recognition on page images.
type Recognizer interface {
	Available() bool
	RecognizePages(ctx context.Context, pages [][]byte) (*RecognitionResult, error)
}

// ExtractionService coordinates extraction jobs: direct extraction with
// OCR fallback, serialized per document, dispatched on a bounded pool.
type ExtractionService interface {
	// Enqueue submits a job to the background pool.
	Enqueue(job models.ExtractionJob) error
	// ExtractNow runs a job synchronously and returns its result.
	ExtractNow(ctx context.Context, job models.ExtractionJob) (*models.ExtractionResult, error)
	// Shutdown drains the pool.
	Shutdown()
}
