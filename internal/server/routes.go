package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Search
	mux.HandleFunc("/api/search", s.app.SearchHandler.SearchHandler)
	mux.HandleFunc("/api/tags/search", s.app.SearchHandler.TagSearchHandler)

	// API routes - Documents
	mux.HandleFunc("/api/documents", s.app.DocumentHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/documents/", s.app.DocumentHandler.ItemHandler)      // GET/PUT/DELETE /{id}, POST /{id}/extract

	// API routes - Tags
	mux.HandleFunc("/api/tags", s.app.TagHandler.CollectionHandler) // GET (list), POST (create)
	mux.HandleFunc("/api/tags/", s.tagRoutes)                       // GET/DELETE /{id}

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/health", s.app.StatusHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.StatusHandler.VersionHandler)
	mux.HandleFunc("/api/reindex", s.app.StatusHandler.ReindexHandler)

	return mux
}

// tagRoutes dispatches /api/tags/ subpaths, keeping /api/tags/search on
// the completion handler.
func (s *Server) tagRoutes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/tags/search" {
		s.app.SearchHandler.TagSearchHandler(w, r)
		return
	}
	s.app.TagHandler.ItemHandler(w, r)
}
