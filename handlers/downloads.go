package handlers

import (
	"net/http"

	"fetcharr/models"
	"fetcharr/services"
)

type DownloadHandler struct {
	downloads *services.DownloadService
}

func NewDownloadHandler(downloads *services.DownloadService) *DownloadHandler {
	return &DownloadHandler{downloads: downloads}
}

// Releases serves GET /api/download: the raw candidate rows for a title.
func (h *DownloadHandler) Releases(w http.ResponseWriter, r *http.Request) {
	browse, err := h.downloads.BrowseReleases(r.Context(), r.URL.Query().Get("tmdbId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, browse)
}

// Download serves POST /api/download: submit the best candidate for a title.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TmdbID   string `json:"tmdbId"`
		Type     string `json:"type"`
		Language string `json:"language"`
		Force    bool   `json:"force"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	mediaType, err := models.ParseMediaType(body.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if body.Language == "" {
		body.Language = "de-DE"
	}

	result, err := h.downloads.DownloadBest(r.Context(), body.TmdbID, mediaType, body.Language, body.Force)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Seasons serves GET /api/download/seasons: availability per season.
func (h *DownloadHandler) Seasons(w http.ResponseWriter, r *http.Request) {
	availability, err := h.downloads.ShowSeasonAvailability(r.Context(), r.URL.Query().Get("tmdbId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

// DownloadSeasons serves POST /api/download/seasons.
func (h *DownloadHandler) DownloadSeasons(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TmdbID          string `json:"tmdbId"`
		SelectedSeasons []int  `json:"selectedSeasons"`
		Language        string `json:"language"`
		Force           bool   `json:"force"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Language == "" {
		body.Language = "de-DE"
	}

	result, err := h.downloads.DownloadSeasons(r.Context(), body.TmdbID, body.SelectedSeasons, body.Language, body.Force)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Progress serves GET /api/progress?torrentId=...
func (h *DownloadHandler) Progress(w http.ResponseWriter, r *http.Request) {
	job, err := h.downloads.Progress(r.Context(), r.URL.Query().Get("torrentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"progress":   job.Progress,
		"eta":        job.EtaSeconds,
		"state":      job.State,
		"isComplete": job.Complete(),
	})
}

// Cancel serves POST /api/download/cancel.
func (h *DownloadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TorrentID string `json:"torrentId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.downloads.Cancel(r.Context(), body.TorrentID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Download cancelled successfully",
	})
}
