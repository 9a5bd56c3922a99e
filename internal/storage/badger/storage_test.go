package badger

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	cfg := &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "maktaba-test"),
	}
	mgr, err := NewManager(common.GetLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = mgr.Close()
	})
	return mgr
}

func TestDocumentStorage_SaveAndGet(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.DocumentStorage()

	doc := &models.Document{
		ID:          common.NewDocumentID(),
		ContentType: models.ContentTypePDF,
		TitleEn:     "Introduction to the Psalms",
		TitleAr:     "مقدمه في المزامير",
		SourceRef:   "books/psalms.pdf",
		PageCount:   42,
		IsActive:    true,
	}
	require.NoError(t, storage.SaveDocument(doc))
	assert.False(t, doc.CreatedAt.IsZero(), "save should stamp created_at")

	got, err := storage.GetDocument(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.TitleEn, got.TitleEn)
	assert.Equal(t, doc.TitleAr, got.TitleAr)
	assert.Equal(t, 42, got.PageCount)
}

func TestDocumentStorage_GetMissing(t *testing.T) {
	mgr := newTestManager(t)

	_, err := mgr.DocumentStorage().GetDocument("doc_missing")
	assert.Error(t, err)
}

func TestDocumentStorage_ListFilters(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.DocumentStorage()

	tagID := common.NewTagID()
	docs := []*models.Document{
		{ID: common.NewDocumentID(), ContentType: models.ContentTypePDF, ExtractionStatus: models.ExtractionPending, IsActive: true, TagIDs: []string{tagID}},
		{ID: common.NewDocumentID(), ContentType: models.ContentTypePDF, ExtractionStatus: models.ExtractionCompleted, IsActive: true},
		{ID: common.NewDocumentID(), ContentType: models.ContentTypeVideo, IsActive: false, TagIDs: []string{tagID}},
	}
	for _, d := range docs {
		require.NoError(t, storage.SaveDocument(d))
	}

	pdfs, err := storage.ListDocuments(&interfaces.ListOptions{ContentType: models.ContentTypePDF})
	require.NoError(t, err)
	assert.Len(t, pdfs, 2)

	pending, err := storage.ListDocuments(&interfaces.ListOptions{Status: models.ExtractionPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	active, err := storage.ListDocuments(&interfaces.ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	tagged, err := storage.ListDocuments(&interfaces.ListOptions{TagID: tagID})
	require.NoError(t, err)
	assert.Len(t, tagged, 2)

	count, err := storage.CountDocuments(&interfaces.ListOptions{ContentType: models.ContentTypePDF, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, count, "count should ignore pagination")
}

func TestDocumentStorage_Delete(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.DocumentStorage()

	doc := &models.Document{ID: common.NewDocumentID(), ContentType: models.ContentTypeStatic}
	require.NoError(t, storage.SaveDocument(doc))
	require.NoError(t, storage.DeleteDocument(doc.ID))

	_, err := storage.GetDocument(doc.ID)
	assert.Error(t, err)

	// Deleting a missing document is not an error.
	assert.NoError(t, storage.DeleteDocument(doc.ID))
}

func TestDocumentStorage_Stats(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.DocumentStorage()

	require.NoError(t, storage.SaveDocument(&models.Document{
		ID: common.NewDocumentID(), ContentType: models.ContentTypePDF,
		ExtractionStatus: models.ExtractionCompleted, IsActive: true,
	}))
	require.NoError(t, storage.SaveDocument(&models.Document{
		ID: common.NewDocumentID(), ContentType: models.ContentTypeAudio,
		ExtractionStatus: models.ExtractionPending,
	}))

	stats, err := storage.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 1, stats.ActiveCount)
	assert.Equal(t, 1, stats.ByContentType[models.ContentTypePDF])
	assert.Equal(t, 1, stats.ByStatus[models.ExtractionPending])
}

func TestTagStorage_CRUD(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.TagStorage()

	tag := &models.Tag{
		ID:       common.NewTagID(),
		NameAr:   "عظات",
		NameEn:   "Sermons",
		IsActive: true,
	}
	require.NoError(t, storage.SaveTag(tag))

	got, err := storage.GetTag(tag.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sermons", got.NameEn)

	inactive := &models.Tag{ID: common.NewTagID(), NameEn: "Archived", IsActive: false}
	require.NoError(t, storage.SaveTag(inactive))

	activeTags, err := storage.ListTags(true)
	require.NoError(t, err)
	assert.Len(t, activeTags, 1)

	allTags, err := storage.ListTags(false)
	require.NoError(t, err)
	assert.Len(t, allTags, 2)

	require.NoError(t, storage.DeleteTag(tag.ID))
	_, err = storage.GetTag(tag.ID)
	assert.Error(t, err)
}

func TestIndexStorage_ReplaceWhole(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.IndexStorage()

	docID := common.NewDocumentID()
	first := &models.SearchDocument{
		DocumentID: docID,
		Language:   models.LangEnglish,
		Fields: map[string]models.FieldVector{
			models.FieldTitle: {Terms: map[string]int{"psalms": 1}, Length: 1},
		},
		Active:  true,
		BuiltAt: time.Now(),
	}
	require.NoError(t, storage.SaveSearchDocument(first))

	// Rebuild overwrites the representation whole.
	second := &models.SearchDocument{
		DocumentID: docID,
		Language:   models.LangEnglish,
		Fields: map[string]models.FieldVector{
			models.FieldTitle: {Terms: map[string]int{"proverbs": 1}, Length: 1},
		},
		Active:  true,
		BuiltAt: time.Now(),
	}
	require.NoError(t, storage.SaveSearchDocument(second))

	got, err := storage.GetSearchDocument(docID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TermFrequency(models.FieldTitle, "psalms"))
	assert.Equal(t, 1, got.TermFrequency(models.FieldTitle, "proverbs"))

	require.NoError(t, storage.DeleteSearchDocument(docID))
	_, err = storage.GetSearchDocument(docID)
	assert.Error(t, err)
}

func TestIndexStorage_ListActiveOnly(t *testing.T) {
	mgr := newTestManager(t)
	storage := mgr.IndexStorage()

	require.NoError(t, storage.SaveSearchDocument(&models.SearchDocument{DocumentID: common.NewDocumentID(), Active: true}))
	require.NoError(t, storage.SaveSearchDocument(&models.SearchDocument{DocumentID: common.NewDocumentID(), Active: false}))

	active, err := storage.ListSearchDocuments(true)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := storage.ListSearchDocuments(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
