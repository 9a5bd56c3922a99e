package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// DocumentStorage implements the DocumentStorage interface for Badger
type DocumentStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new DocumentStorage instance
func NewDocumentStorage(db *BadgerDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{
		db:     db,
		logger: logger,
	}
}

func (s *DocumentStorage) SaveDocument(doc *models.Document) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.Store().Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) GetDocument(id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.Store().Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

func (s *DocumentStorage) DeleteDocument(id string) error {
	if err := s.db.Store().Delete(id, &models.Document{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func (s *DocumentStorage) ListDocuments(opts *interfaces.ListOptions) ([]*models.Document, error) {
	query := buildDocumentQuery(opts)

	var docs []models.Document
	if err := s.db.Store().Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	result := make([]*models.Document, len(docs))
	for i := range docs {
		result[i] = &docs[i]
	}
	return result, nil
}

func (s *DocumentStorage) CountDocuments(opts *interfaces.ListOptions) (int, error) {
	// Count ignores Limit/Offset so it reflects the full filtered set.
	trimmed := &interfaces.ListOptions{}
	if opts != nil {
		trimmed.ContentType = opts.ContentType
		trimmed.Status = opts.Status
		trimmed.ActiveOnly = opts.ActiveOnly
		trimmed.TagID = opts.TagID
	}

	count, err := s.db.Store().Count(&models.Document{}, buildDocumentQuery(trimmed))
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return int(count), nil
}

func (s *DocumentStorage) GetStats() (*models.DocumentStats, error) {
	var docs []models.Document
	if err := s.db.Store().Find(&docs, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to load documents for stats: %w", err)
	}

	stats := &models.DocumentStats{
		TotalDocuments: len(docs),
		ByContentType:  make(map[string]int),
		ByStatus:       make(map[string]int),
		LastUpdated:    time.Now(),
	}
	for i := range docs {
		stats.ByContentType[docs[i].ContentType]++
		stats.ByStatus[docs[i].ExtractionStatus]++
		if docs[i].IsActive {
			stats.ActiveCount++
		}
	}
	return stats, nil
}

// buildDocumentQuery translates ListOptions into a badgerhold query.
func buildDocumentQuery(opts *interfaces.ListOptions) *badgerhold.Query {
	query := badgerhold.Where("ID").Ne("") // select all

	if opts == nil {
		return query
	}

	if opts.ContentType != "" {
		query = query.And("ContentType").Eq(opts.ContentType)
	}
	if opts.Status != "" {
		query = query.And("ExtractionStatus").Eq(opts.Status)
	}
	if opts.ActiveOnly {
		query = query.And("IsActive").Eq(true)
	}
	if opts.TagID != "" {
		query = query.And("TagIDs").Contains(opts.TagID)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}
	return query
}
