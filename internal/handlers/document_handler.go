package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// DocumentHandler handles content record HTTP requests
type DocumentHandler struct {
	documents  interfaces.DocumentService
	extraction interfaces.ExtractionService
	logger     arbor.ILogger
}

// NewDocumentHandler creates a new document handler with dependencies
func NewDocumentHandler(documents interfaces.DocumentService, extraction interfaces.ExtractionService, logger arbor.ILogger) *DocumentHandler {
	return &DocumentHandler{
		documents:  documents,
		extraction: extraction,
		logger:     logger,
	}
}

// CollectionHandler handles /api/documents: GET lists, POST creates.
func (h *DocumentHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles /api/documents/{id} and /api/documents/{id}/extract.
func (h *DocumentHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		WriteError(w, http.StatusBadRequest, "document ID required")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "extract" {
		h.extract(w, r, id)
		return
	}
	if len(parts) > 1 {
		WriteError(w, http.StatusNotFound, "unknown document route")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	opts := &interfaces.ListOptions{
		ContentType: params.Get("content_type"),
		Status:      params.Get("status"),
		TagID:       params.Get("tag"),
		ActiveOnly:  params.Get("active") == "true",
		Limit:       QueryInt(r, "limit", 50),
		Offset:      QueryInt(r, "offset", 0),
	}

	docs, err := h.documents.List(r.Context(), opts)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Document list failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.documents.Create(r.Context(), &doc); err != nil {
		h.logger.Warn().Err(err).Msg("Document create failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, &doc)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var doc models.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	doc.ID = id

	if err := h.documents.Update(r.Context(), &doc); err != nil {
		h.logger.Warn().Err(err).Str("document_id", id).Msg("Document update failed")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, &doc)
}

func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.documents.Delete(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteSuccess(w, "document deleted")
}

// extract handles POST /api/documents/{id}/extract: a synchronous
// extraction run for one record.
func (h *DocumentHandler) extract(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if !doc.IsPDF() || doc.SourceRef == "" {
		WriteError(w, http.StatusBadRequest, "document has no extractable source")
		return
	}

	result, err := h.extraction.ExtractNow(r.Context(), models.ExtractionJob{
		DocumentID: doc.ID,
		SourceRef:  doc.SourceRef,
		PageCount:  doc.PageCount,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("document_id", id).Msg("Manual extraction failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
