package handlers

import (
	"net/http"
	"strconv"

	"fetcharr/apperr"
	"fetcharr/models"
	"fetcharr/services"
)

// SearchHandler serves the metadata provider lookups: title search and
// streaming availability.
type SearchHandler struct {
	downloads *services.DownloadService
	tmdb      *services.TMDBClient
}

func NewSearchHandler(downloads *services.DownloadService, tmdb *services.TMDBClient) *SearchHandler {
	return &SearchHandler{downloads: downloads, tmdb: tmdb}
}

// Search serves GET /api/search?searchstring=...&type=...&language=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("searchstring")

	mediaType, err := models.ParseMediaType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	language := r.URL.Query().Get("language")
	if language == "" {
		language = "de-DE"
	}

	results, err := h.downloads.Search(r.Context(), query, mediaType, language)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600, s-maxage=3600, stale-while-revalidate=86400")
	writeJSON(w, http.StatusOK, map[string]any{"tmdbResults": results})
}

// Providers serves GET /api/providers?id=...&type=...
func (h *SearchHandler) Providers(w http.ResponseWriter, r *http.Request) {
	idParam := r.URL.Query().Get("id")
	if idParam == "" {
		writeError(w, r, apperr.Validation("ID is required"))
		return
	}
	id, err := strconv.Atoi(idParam)
	if err != nil {
		writeError(w, r, apperr.Validation("ID must be numeric"))
		return
	}

	mediaType, err := models.ParseMediaType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	providers, err := h.tmdb.WatchProviders(r.Context(), id, mediaType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, providers)
}
