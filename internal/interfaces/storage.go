package interfaces

import (
	"github.com/sahemlabs/maktaba/internal/models"
)

// ListOptions controls document listing queries.
type ListOptions struct {
	ContentType string
	Status      string
	ActiveOnly  bool
	TagID       string
	Limit       int
	Offset      int
}

// DocumentStorage persists content records.
type DocumentStorage interface {
	SaveDocument(doc *models.Document) error
	GetDocument(id string) (*models.Document, error)
	DeleteDocument(id string) error
	ListDocuments(opts *ListOptions) ([]*models.Document, error)
	CountDocuments(opts *ListOptions) (int, error)
	GetStats() (*models.DocumentStats, error)
}

// TagStorage persists tags.
type TagStorage interface {
	SaveTag(tag *models.Tag) error
	GetTag(id string) (*models.Tag, error)
	DeleteTag(id string) error
	ListTags(activeOnly bool) ([]*models.Tag, error)
}

// IndexStorage persists search representations. Representations are
// written whole; readers only ever see committed versions.
type IndexStorage interface {
	SaveSearchDocument(sd *models.SearchDocument) error
	GetSearchDocument(documentID string) (*models.SearchDocument, error)
	DeleteSearchDocument(documentID string) error
	ListSearchDocuments(activeOnly bool) ([]*models.SearchDocument, error)
}

// StorageManager provides access to all storage backends
type StorageManager interface {
	DocumentStorage() DocumentStorage
	TagStorage() TagStorage
	IndexStorage() IndexStorage
	Close() error
}
