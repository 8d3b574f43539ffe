package handlers

import (
	"net/http"

	"fetcharr/config"
	"fetcharr/services"
)

type DiskSpaceHandler struct {
	synology *services.SynologyClient
	volume   string
}

func NewDiskSpaceHandler(cfg *config.Config, synology *services.SynologyClient) *DiskSpaceHandler {
	return &DiskSpaceHandler{synology: synology, volume: cfg.SynologyVolume}
}

// DiskSpace serves GET /api/disk-space.
func (h *DiskSpaceHandler) DiskSpace(w http.ResponseWriter, r *http.Request) {
	if !h.synology.Configured() {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error: "Synology NAS configuration is missing. Please check your environment variables.",
		})
		return
	}

	info, err := h.synology.VolumeInfo(r.Context(), h.volume)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
