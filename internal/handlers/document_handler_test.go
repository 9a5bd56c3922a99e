package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// mockDocumentService implements interfaces.DocumentService for testing
type mockDocumentService struct {
	docs map[string]*models.Document
}

func newMockDocumentService() *mockDocumentService {
	return &mockDocumentService{docs: make(map[string]*models.Document)}
}

func (m *mockDocumentService) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = common.NewDocumentID()
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentService) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := m.docs[doc.ID]; !ok {
		return assert.AnError
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, assert.AnError
	}
	return doc, nil
}

func (m *mockDocumentService) Delete(ctx context.Context, id string) error {
	delete(m.docs, id)
	return nil
}

func (m *mockDocumentService) List(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Document, error) {
	out := make([]*models.Document, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (m *mockDocumentService) ApplyExtraction(ctx context.Context, documentID string, result *models.ExtractionResult) error {
	return nil
}

// mockExtractionService implements interfaces.ExtractionService for testing
type mockExtractionService struct {
	result *models.ExtractionResult
}

func (m *mockExtractionService) Enqueue(job models.ExtractionJob) error { return nil }

func (m *mockExtractionService) ExtractNow(ctx context.Context, job models.ExtractionJob) (*models.ExtractionResult, error) {
	return m.result, nil
}

func (m *mockExtractionService) Shutdown() {}

func TestDocumentHandler_CreateAndGet(t *testing.T) {
	docs := newMockDocumentService()
	handler := NewDocumentHandler(docs, &mockExtractionService{}, common.GetLogger())

	body := `{"content_type":"pdf","title_en":"New Book","source_ref":"books/new.pdf"}`
	req := httptest.NewRequest("POST", "/api/documents", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	req = httptest.NewRequest("GET", "/api/documents/"+created.ID, nil)
	rec = httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var fetched models.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, "New Book", fetched.TitleEn)
}

func TestDocumentHandler_GetMissing(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentService(), &mockExtractionService{}, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/documents/doc_missing", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_InvalidBody(t *testing.T) {
	handler := NewDocumentHandler(newMockDocumentService(), &mockExtractionService{}, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/documents", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.CollectionHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_ManualExtract(t *testing.T) {
	docs := newMockDocumentService()
	doc := &models.Document{
		ContentType: models.ContentTypePDF,
		TitleEn:     "Scanned",
		SourceRef:   "books/scanned.pdf",
	}
	require.NoError(t, docs.Create(context.Background(), doc))

	extraction := &mockExtractionService{
		result: &models.ExtractionResult{
			Text:       "recovered text",
			Method:     models.MethodOCR,
			Confidence: 0.8,
			Status:     models.ExtractionCompleted,
		},
	}
	handler := NewDocumentHandler(docs, extraction, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/documents/"+doc.ID+"/extract", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, models.MethodOCR, result.Method)
}

func TestDocumentHandler_ExtractNonPDF(t *testing.T) {
	docs := newMockDocumentService()
	doc := &models.Document{ContentType: models.ContentTypeVideo, TitleEn: "Video"}
	require.NoError(t, docs.Create(context.Background(), doc))

	handler := NewDocumentHandler(docs, &mockExtractionService{}, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/documents/"+doc.ID+"/extract", nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Delete(t *testing.T) {
	docs := newMockDocumentService()
	doc := &models.Document{ContentType: models.ContentTypeStatic, TitleEn: "Gone"}
	require.NoError(t, docs.Create(context.Background(), doc))

	handler := NewDocumentHandler(docs, &mockExtractionService{}, common.GetLogger())

	req := httptest.NewRequest("DELETE", "/api/documents/"+doc.ID, nil)
	rec := httptest.NewRecorder()
	handler.ItemHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, docs.docs)
}
