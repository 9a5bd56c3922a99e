package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// TagStorage implements the TagStorage interface for Badger
type TagStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTagStorage creates a new TagStorage instance
func NewTagStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TagStorage {
	return &TagStorage{
		db:     db,
		logger: logger,
	}
}

func (s *TagStorage) SaveTag(tag *models.Tag) error {
	if tag.ID == "" {
		return fmt.Errorf("tag ID is required")
	}

	now := time.Now()
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = now
	}
	tag.UpdatedAt = now

	if err := s.db.Store().Upsert(tag.ID, tag); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

func (s *TagStorage) GetTag(id string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.Store().Get(id, &tag); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("tag not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

func (s *TagStorage) DeleteTag(id string) error {
	if err := s.db.Store().Delete(id, &models.Tag{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

func (s *TagStorage) ListTags(activeOnly bool) ([]*models.Tag, error) {
	query := badgerhold.Where("ID").Ne("")
	if activeOnly {
		query = query.And("IsActive").Eq(true)
	}

	var tags []models.Tag
	if err := s.db.Store().Find(&tags, query); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	result := make([]*models.Tag, len(tags))
	for i := range tags {
		result[i] = &tags[i]
	}
	return result, nil
}
