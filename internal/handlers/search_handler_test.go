package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/models"
)

// mockSearchService implements interfaces.SearchService for testing
type mockSearchService struct {
	searchFunc     func(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error)
	searchTagsFunc func(ctx context.Context, prefix, language string) ([]models.TagSummary, error)
}

func (m *mockSearchService) Search(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return &models.SearchPage{Results: []models.SearchResult{}}, nil
}

func (m *mockSearchService) SearchTags(ctx context.Context, prefix, language string) ([]models.TagSummary, error) {
	if m.searchTagsFunc != nil {
		return m.searchTagsFunc(ctx, prefix, language)
	}
	return []models.TagSummary{}, nil
}

func TestSearchHandler_PassesParameters(t *testing.T) {
	var captured models.SearchQuery
	service := &mockSearchService{
		searchFunc: func(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error) {
			captured = query
			return &models.SearchPage{
				Results:    []models.SearchResult{{RecordID: "doc_1", Score: 0.9, Title: "Hit"}},
				TotalCount: 1,
				PageInfo:   models.PageInfo{Page: 2, PageSize: 5, TotalPages: 1},
			}, nil
		},
	}
	handler := NewSearchHandler(service, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/search?q=nativity&content_type=pdf&tag=tag_1&language=en&sort=title&page=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	handler.SearchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nativity", captured.Text)
	assert.Equal(t, "pdf", captured.ContentType)
	assert.Equal(t, "tag_1", captured.TagID)
	assert.Equal(t, "en", captured.Language)
	assert.Equal(t, "title", captured.SortBy)
	assert.Equal(t, 2, captured.Page)
	assert.Equal(t, 5, captured.PageSize)

	var page models.SearchPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Results, 1)
	assert.Equal(t, "doc_1", page.Results[0].RecordID)
}

func TestSearchHandler_InvalidQueryIsBadRequest(t *testing.T) {
	service := &mockSearchService{
		searchFunc: func(ctx context.Context, query models.SearchQuery) (*models.SearchPage, error) {
			return nil, assert.AnError
		},
	}
	handler := NewSearchHandler(service, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/search?content_type=scroll", nil)
	rec := httptest.NewRecorder()
	handler.SearchHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_MethodNotAllowed(t *testing.T) {
	handler := NewSearchHandler(&mockSearchService{}, common.GetLogger())

	req := httptest.NewRequest("POST", "/api/search", nil)
	rec := httptest.NewRecorder()
	handler.SearchHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTagSearchHandler(t *testing.T) {
	service := &mockSearchService{
		searchTagsFunc: func(ctx context.Context, prefix, language string) ([]models.TagSummary, error) {
			assert.Equal(t, "ser", prefix)
			assert.Equal(t, "en", language)
			return []models.TagSummary{{ID: "tag_1", Label: "Sermons", ContentCount: 3}}, nil
		},
	}
	handler := NewSearchHandler(service, common.GetLogger())

	req := httptest.NewRequest("GET", "/api/tags/search?q=ser&language=en", nil)
	rec := httptest.NewRecorder()
	handler.TagSearchHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Results []models.TagSummary `json:"results"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Sermons", body.Results[0].Label)
}
