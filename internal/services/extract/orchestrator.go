package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/panjf2000/ants/v2"
	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
	"github.com/sahemlabs/maktaba/internal/services/normalize"
)

// Service coordinates extraction runs: direct extraction first, routed
// to recognition when the result falls under the sufficiency threshold.
// Jobs run on a bounded pool sized to the CPU count, and runs for the
// same document are serialized so re-submission during a run is safe.
type Service struct {
	source     interfaces.ByteSource
	extractor  interfaces.TextExtractor
	recognizer interfaces.Recognizer
	normalizer *normalize.Normalizer
	config     *common.ExtractionConfig
	logger     arbor.ILogger

	pool    *ants.Pool
	applier interfaces.DocumentService

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ interfaces.ExtractionService = (*Service)(nil)

// NewService creates the extraction orchestrator with a worker pool of
// the given size.
func NewService(
	source interfaces.ByteSource,
	extractor interfaces.TextExtractor,
	recognizer interfaces.Recognizer,
	normalizer *normalize.Normalizer,
	config *common.ExtractionConfig,
	workers int,
	logger arbor.ILogger,
) (*Service, error) {
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction pool: %w", err)
	}

	return &Service{
		source:     source,
		extractor:  extractor,
		recognizer: recognizer,
		normalizer: normalizer,
		config:     config,
		logger:     logger,
		pool:       pool,
		locks:      make(map[string]*sync.Mutex),
	}, nil
}

// SetApplier wires the record-mutation boundary that persists results.
// Set once during startup; extraction and document services reference
// each other, so one side is injected late.
func (s *Service) SetApplier(applier interfaces.DocumentService) {
	s.applier = applier
}

// Enqueue submits a job to the background pool. The result is applied
// through the document service when the run finishes.
func (s *Service) Enqueue(job models.ExtractionJob) error {
	if job.DocumentID == "" {
		return fmt.Errorf("extraction job requires a document ID")
	}
	return s.pool.Submit(func() {
		result, err := s.ExtractNow(context.Background(), job)
		if err != nil {
			s.logger.Error().Err(err).Str("document_id", job.DocumentID).Msg("Background extraction failed")
			return
		}
		s.logger.Info().
			Str("document_id", job.DocumentID).
			Str("method", result.Method).
			Str("status", result.Status).
			Float64("confidence", result.Confidence).
			Msg("Background extraction finished")
	})
}

// ExtractNow runs a job synchronously. The result is persisted through
// the applier when one is wired, then returned.
func (s *Service) ExtractNow(ctx context.Context, job models.ExtractionJob) (*models.ExtractionResult, error) {
	lock := s.lockFor(job.DocumentID)
	lock.Lock()
	defer lock.Unlock()

	result := s.run(ctx, job)

	if s.applier != nil {
		if err := s.applier.ApplyExtraction(ctx, job.DocumentID, result); err != nil {
			return nil, fmt.Errorf("failed to apply extraction result: %w", err)
		}
	}
	return result, nil
}

// Shutdown drains the pool.
func (s *Service) Shutdown() {
	s.pool.Release()
}

// run executes the extraction pipeline and never returns an error:
// every failure mode maps to a terminal result status.
func (s *Service) run(ctx context.Context, job models.ExtractionJob) *models.ExtractionResult {
	data, err := s.source.Open(ctx, job.SourceRef)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", job.DocumentID).Msg("Source unavailable")
		return failed(err)
	}

	pageCount := job.PageCount
	if pageCount <= 0 {
		if n, err := s.extractor.PageCount(ctx, data); err == nil {
			pageCount = n
		}
	}

	direct, err := s.extractor.Extract(ctx, data)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", job.DocumentID).Msg("Direct extraction failed")
		return failed(err)
	}

	directText := s.normalizer.Normalize(direct.Text)
	threshold := s.threshold(pageCount)

	if sufficient(directText, threshold) && letterRatio(directText) >= s.config.MinLetterRatio {
		return &models.ExtractionResult{
			Text:       directText,
			Method:     direct.Method,
			Confidence: 1.0,
			Status:     models.ExtractionCompleted,
		}
	}

	s.logger.Debug().
		Str("document_id", job.DocumentID).
		Int("chars", utf8.RuneCountInString(directText)).
		Int("threshold", threshold).
		Msg("Direct extraction insufficient, routing to recognition")

	return s.recognize(ctx, job, data, directText, direct.Method)
}

// recognize runs the OCR path and merges its outcome with the direct
// extraction text. Recognized text is adopted only when it is both
// longer than the direct text and confident enough.
func (s *Service) recognize(ctx context.Context, job models.ExtractionJob, data []byte, directText, directMethod string) *models.ExtractionResult {
	if s.recognizer == nil || !s.recognizer.Available() {
		s.logger.Warn().Str("document_id", job.DocumentID).Msg("Recognizer unavailable, keeping direct extraction")
		return s.degrade(directText, directMethod, ErrRecognizerUnavailable)
	}

	pages, err := s.extractor.PageImages(ctx, data)
	if err != nil || len(pages) == 0 {
		if err == nil {
			err = errors.New("document has no page images")
		}
		s.logger.Warn().Err(err).Str("document_id", job.DocumentID).Msg("No page images for recognition")
		return s.degrade(directText, directMethod, err)
	}

	recognized, err := s.recognizer.RecognizePages(ctx, pages)
	if err != nil {
		s.logger.Warn().Err(err).Str("document_id", job.DocumentID).Msg("Recognition failed")
		return s.degrade(directText, directMethod, err)
	}

	ocrText := s.normalizer.Normalize(recognized.Text)
	if utf8.RuneCountInString(ocrText) > utf8.RuneCountInString(directText) &&
		recognized.Confidence >= s.config.MinConfidence {
		status := models.ExtractionCompleted
		if recognized.Partial {
			status = models.ExtractionLowConfidence
		}
		return &models.ExtractionResult{
			Text:       ocrText,
			Method:     models.MethodOCR,
			Confidence: recognized.Confidence,
			Status:     status,
			Partial:    recognized.Partial,
		}
	}

	// Recognition did not beat the direct text; keep the longer of the
	// two but flag the record for review.
	text, method := directText, directMethod
	confidence := recognized.Confidence
	if utf8.RuneCountInString(ocrText) > utf8.RuneCountInString(directText) {
		text, method = ocrText, models.MethodOCR
	}
	if text == "" {
		return &models.ExtractionResult{
			Method: models.MethodNone,
			Status: models.ExtractionFailed,
		}
	}
	return &models.ExtractionResult{
		Text:       text,
		Method:     method,
		Confidence: confidence,
		Status:     models.ExtractionLowConfidence,
		Partial:    recognized.Partial,
	}
}

// degrade is the no-recognition outcome: keep whatever direct text
// exists as low confidence, or fail when there is none.
func (s *Service) degrade(directText, directMethod string, cause error) *models.ExtractionResult {
	if directText == "" {
		return failed(cause)
	}
	return &models.ExtractionResult{
		Text:       directText,
		Method:     directMethod,
		Confidence: 0.0,
		Status:     models.ExtractionLowConfidence,
	}
}

// threshold is the sufficiency bar for direct extraction: at least
// MinChars, scaled up for long documents.
func (s *Service) threshold(pageCount int) int {
	perPage := pageCount * s.config.CharsPerPage
	if perPage > s.config.MinChars {
		return perPage
	}
	return s.config.MinChars
}

func (s *Service) lockFor(documentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[documentID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[documentID] = lock
	}
	return lock
}

func sufficient(text string, threshold int) bool {
	return utf8.RuneCountInString(text) >= threshold
}

func failed(cause error) *models.ExtractionResult {
	result := &models.ExtractionResult{
		Method: models.MethodNone,
		Status: models.ExtractionFailed,
	}
	if cause != nil {
		result.Error = cause.Error()
	}
	return result
}
