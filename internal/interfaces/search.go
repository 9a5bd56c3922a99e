package interfaces

import (
	"context"

	"github.com/sahemlabs/maktaba/internal/models"
)

// SearchService evaluates queries against the persisted search
// representations. Evaluation is read-only and side-effect-free.
type SearchService interface {
	Search(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error)
	SearchTags(ctx context.Context, prefix, language string) ([]models.TagSummary, error)
}

// IndexService builds search representations. Rebuild is invoked
// explicitly from the record-mutation boundary and after extraction
// completes - there is no implicit listener registry.
type IndexService interface {
	Rebuild(ctx context.Context, documentID string) error
	RebuildAll(ctx context.Context) (int, error)
}

// DocumentService is the record-mutation boundary. Every mutation of an
// indexed field regenerates the search representation before returning,
// so a record is never query-visible with a stale vector.
type DocumentService interface {
	Create(ctx context.Context, doc *models.Document) error
	Update(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts *ListOptions) ([]*models.Document, error)
	ApplyExtraction(ctx context.Context, documentID string, result *models.ExtractionResult) error
}
