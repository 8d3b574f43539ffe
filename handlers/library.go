package handlers

import (
	"context"
	"net/http"
	"time"

	"fetcharr/apperr"
	"fetcharr/models"
	"fetcharr/services"
)

type LibraryHandler struct {
	library  *services.LibraryService
	jellyfin *services.JellyfinClient
}

func NewLibraryHandler(library *services.LibraryService, jellyfin *services.JellyfinClient) *LibraryHandler {
	return &LibraryHandler{library: library, jellyfin: jellyfin}
}

// Check serves GET /api/library?tmdbId=...&type=...
func (h *LibraryHandler) Check(w http.ResponseWriter, r *http.Request) {
	tmdbID := r.URL.Query().Get("tmdbId")
	if tmdbID == "" {
		writeError(w, r, apperr.Validation("TMDB ID is required"))
		return
	}

	mediaType, err := models.ParseMediaType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var status models.LibraryStatus
	if mediaType == models.MediaTV {
		status, err = h.library.CheckShow(r.Context(), tmdbID)
	} else {
		status, err = h.library.CheckMovie(r.Context(), tmdbID)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// BatchCheck serves POST /api/library/batch.
func (h *LibraryHandler) BatchCheck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []services.BatchCheckItem `json:"items"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if len(body.Items) == 0 {
		writeError(w, r, apperr.Validation("items array is required"))
		return
	}

	results, err := h.library.BatchCheck(r.Context(), body.Items)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Scan serves POST /api/library/scan: an explicit, user-requested rescan.
func (h *LibraryHandler) Scan(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.jellyfin.TriggerLibraryScan(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Library scan triggered successfully",
	})
}
