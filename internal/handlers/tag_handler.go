package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
	"github.com/sahemlabs/maktaba/internal/models"
)

// TagHandler handles tag management HTTP requests
type TagHandler struct {
	tags   interfaces.TagStorage
	logger arbor.ILogger
}

// NewTagHandler creates a new tag handler with dependencies
func NewTagHandler(tags interfaces.TagStorage, logger arbor.ILogger) *TagHandler {
	return &TagHandler{
		tags:   tags,
		logger: logger,
	}
}

// CollectionHandler handles /api/tags: GET lists, POST creates.
func (h *TagHandler) CollectionHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ItemHandler handles /api/tags/{id}: GET and DELETE.
func (h *TagHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tags/"), "/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "tag ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		tag, err := h.tags.GetTag(id)
		if err != nil {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, tag)
	case http.MethodDelete:
		if err := h.tags.DeleteTag(id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteSuccess(w, "tag deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TagHandler) list(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	tags, err := h.tags.ListTags(activeOnly)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tags":  tags,
		"count": len(tags),
	})
}

func (h *TagHandler) create(w http.ResponseWriter, r *http.Request) {
	var tag models.Tag
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if tag.NameAr == "" && tag.NameEn == "" {
		WriteError(w, http.StatusBadRequest, "tag requires a name in at least one language")
		return
	}
	if tag.ID == "" {
		tag.ID = common.NewTagID()
	}

	if err := h.tags.SaveTag(&tag); err != nil {
		h.logger.Warn().Err(err).Msg("Tag create failed")
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, &tag)
}
