package documents

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// Service is the record-mutation boundary. Every write that touches an
// indexed field rebuilds the search representation before returning, so
// a record is never query-visible with a stale vector.
type Service struct {
	storage    interfaces.StorageManager
	index      interfaces.IndexService
	extraction interfaces.ExtractionService
	validate   *validator.Validate
	logger     arbor.ILogger
}

var _ interfaces.DocumentService = (*Service)(nil)

// NewService creates the document service.
func NewService(storage interfaces.StorageManager, index interfaces.IndexService, extraction interfaces.ExtractionService, logger arbor.ILogger) *Service {
	return &Service{
		storage:    storage,
		index:      index,
		extraction: extraction,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Create validates and persists a new record, builds its search
// representation, and queues extraction for PDF sources.
func (s *Service) Create(ctx context.Context, doc *models.Document) error {
	if err := s.validateDocument(doc); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = common.NewDocumentID()
	}
	if doc.IsPDF() && doc.SourceRef != "" {
		doc.ExtractionStatus = models.ExtractionPending
		doc.ExtractionMethod = models.MethodNone
	} else if doc.ExtractionStatus == "" {
		doc.ExtractionStatus = models.ExtractionCompleted
		doc.ExtractionMethod = models.MethodNone
	}

	if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, doc.ID); err != nil {
		return fmt.Errorf("document saved but indexing failed: %w", err)
	}

	if doc.ExtractionStatus == models.ExtractionPending {
		if err := s.enqueueExtraction(doc); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to queue extraction")
		}
	}

	s.logger.Info().
		Str("document_id", doc.ID).
		Str("content_type", doc.ContentType).
		Msg("Document created")
	return nil
}

// Update persists changes to an existing record and rebuilds its
// representation. The creation timestamp survives the write.
func (s *Service) Update(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}
	if err := s.validateDocument(doc); err != nil {
		return err
	}

	existing, err := s.storage.DocumentStorage().GetDocument(doc.ID)
	if err != nil {
		return err
	}
	doc.CreatedAt = existing.CreatedAt

	if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, doc.ID); err != nil {
		return fmt.Errorf("document saved but indexing failed: %w", err)
	}

	// A source swap restarts the extraction lifecycle.
	if doc.IsPDF() && doc.SourceRef != "" && doc.SourceRef != existing.SourceRef {
		doc.ExtractionStatus = models.ExtractionPending
		if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
			return err
		}
		if err := s.enqueueExtraction(doc); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.ID).Msg("Failed to queue extraction")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.storage.DocumentStorage().GetDocument(id)
}

// Delete removes the record and its search representation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DocumentStorage().DeleteDocument(id); err != nil {
		return err
	}
	if err := s.storage.IndexStorage().DeleteSearchDocument(id); err != nil {
		return err
	}
	s.logger.Info().Str("document_id", id).Msg("Document deleted")
	return nil
}

func (s *Service) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Document, error) {
	return s.storage.DocumentStorage().ListDocuments(opts)
}

// ApplyExtraction writes an extraction outcome onto the record and
// rebuilds the representation so the new body text becomes searchable.
func (s *Service) ApplyExtraction(ctx context.Context, documentID string, result *models.ExtractionResult) error {
	doc, err := s.storage.DocumentStorage().GetDocument(documentID)
	if err != nil {
		return err
	}

	doc.BookContent = result.Text
	doc.ExtractionStatus = result.Status
	doc.ExtractionMethod = result.Method
	doc.Confidence = result.Confidence
	doc.ExtractionError = result.Error

	if err := s.storage.DocumentStorage().SaveDocument(doc); err != nil {
		return err
	}
	if err := s.index.Rebuild(ctx, documentID); err != nil {
		return fmt.Errorf("extraction applied but indexing failed: %w", err)
	}

	s.logger.Info().
		Str("document_id", documentID).
		Str("status", result.Status).
		Str("method", result.Method).
		Msg("Extraction result applied")
	return nil
}

func (s *Service) enqueueExtraction(doc *models.Document) error {
	if s.extraction == nil {
		return nil
	}
	return s.extraction.Enqueue(models.ExtractionJob{
		DocumentID: doc.ID,
		SourceRef:  doc.SourceRef,
		PageCount:  doc.PageCount,
	})
}

func (s *Service) validateDocument(doc *models.Document) error {
	if err := s.validate.Var(doc.ContentType, "required,oneof=video audio pdf static"); err != nil {
		return fmt.Errorf("invalid content type %q", doc.ContentType)
	}
	if doc.TitleAr == "" && doc.TitleEn == "" {
		return fmt.Errorf("document requires a title in at least one language")
	}
	return nil
}
