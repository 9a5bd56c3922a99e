package badger

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// IndexStorage implements the IndexStorage interface for Badger. A search
// document is keyed by its owning record ID and replaced whole on rebuild.
type IndexStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIndexStorage creates a new IndexStorage instance
func NewIndexStorage(db *BadgerDB, logger arbor.ILogger) interfaces.IndexStorage {
	return &IndexStorage{
		db:     db,
		logger: logger,
	}
}

func (s *IndexStorage) SaveSearchDocument(sd *models.SearchDocument) error {
	if sd.DocumentID == "" {
		return fmt.Errorf("search document requires a document ID")
	}
	if err := s.db.Store().Upsert(sd.DocumentID, sd); err != nil {
		return fmt.Errorf("failed to save search document: %w", err)
	}
	return nil
}

func (s *IndexStorage) GetSearchDocument(documentID string) (*models.SearchDocument, error) {
	var sd models.SearchDocument
	if err := s.db.Store().Get(documentID, &sd); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("search document not found: %s", documentID)
		}
		return nil, fmt.Errorf("failed to get search document: %w", err)
	}
	return &sd, nil
}

func (s *IndexStorage) DeleteSearchDocument(documentID string) error {
	if err := s.db.Store().Delete(documentID, &models.SearchDocument{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete search document: %w", err)
	}
	return nil
}

func (s *IndexStorage) ListSearchDocuments(activeOnly bool) ([]*models.SearchDocument, error) {
	query := badgerhold.Where("DocumentID").Ne("")
	if activeOnly {
		query = query.And("Active").Eq(true)
	}

	var sds []models.SearchDocument
	if err := s.db.Store().Find(&sds, query); err != nil {
		return nil, fmt.Errorf("failed to list search documents: %w", err)
	}

	result := make([]*models.SearchDocument, len(sds))
	for i := range sds {
		result[i] = &sds[i]
	}
	return result, nil
}
