package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/sahemlabs/maktaba/internal/common"
	"github.com/sahemlabs/maktaba/internal/interfaces"
)

// Reindexer is the throttled bulk-reindex entry point.
type Reindexer interface {
	ReindexAll(ctx context.Context) (int, error)
}

// StatusHandler handles status and maintenance HTTP requests
type StatusHandler struct {
	storage   interfaces.StorageManager
	reindexer Reindexer
	logger    arbor.ILogger
}

// NewStatusHandler creates a new status handler with dependencies
func NewStatusHandler(storage interfaces.StorageManager, reindexer Reindexer, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage:   storage,
		reindexer: reindexer,
		logger:    logger,
	}
}

// GetStatusHandler handles GET /api/status requests.
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	stats, err := h.storage.DocumentStorage().GetStats()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tags, err := h.storage.TagStorage().ListTags(false); err == nil {
		stats.TagCount = len(tags)
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"stats":   stats,
	})
}

// HealthHandler handles GET /api/health requests.
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// VersionHandler handles GET /api/version requests.
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}

// ReindexHandler handles POST /api/reindex requests. The rebuild runs in
// the background at a bounded rate.
func (h *StatusHandler) ReindexHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	go func() {
		count, err := h.reindexer.ReindexAll(context.Background())
		if err != nil {
			h.logger.Error().Err(err).Msg("Background reindex failed")
			return
		}
		h.logger.Info().Int("count", count).Msg("Background reindex finished")
	}()

	WriteStarted(w, "reindex started")
}
