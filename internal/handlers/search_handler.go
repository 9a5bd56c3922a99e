package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService interfaces.SearchService
	logger        arbor.ILogger
}

// NewSearchHandler creates a new search handler with dependencies
func NewSearchHandler(searchService interfaces.SearchService, logger arbor.ILogger) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		logger:        logger,
	}
}

// SearchHandler handles GET /api/search requests. All parameters are
// optional; with none it returns all active records, newest first.
func (h *SearchHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	params := r.URL.Query()
	query := models.SearchQuery{
		Text:        params.Get("q"),
		ContentType: params.Get("content_type"),
		TagID:       params.Get("tag"),
		Language:    params.Get("language"),
		SortBy:      params.Get("sort"),
		Page:        QueryInt(r, "page", 1),
		PageSize:    QueryInt(r, "page_size", 0),
	}

	h.logger.Info().
		Str("query", query.Text).
		Str("content_type", query.ContentType).
		Str("tag", query.TagID).
		Int("page", query.Page).
		Msg("Search request received")

	page, err := h.searchService.Search(r.Context(), query)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Search failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// TagSearchHandler handles GET /api/tags/search?q=prefix requests for
// tag completion.
func (h *SearchHandler) TagSearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	prefix := r.URL.Query().Get("q")
	language := r.URL.Query().Get("language")

	summaries, err := h.searchService.SearchTags(r.Context(), prefix, language)
	if err != nil {
		h.logger.Warn().Err(err).Str("prefix", prefix).Msg("Tag search failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"results": summaries,
		"count":   len(summaries),
	})
}
