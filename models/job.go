package models

import "time"

// Job states as reported by the download client. Anything the client reports
// outside this set is carried through as-is and treated as "other".
const (
	StateDownloading = "Downloading"
	StateSeeding     = "Seeding"
	StatePaused      = "Paused"
	StateError       = "Error"
)

// DownloadJob is the local projection of a submitted download. The download
// client stays the source of truth; this is a cache for progress display.
type DownloadJob struct {
	Hash        string    `json:"hash"`
	TmdbID      string    `json:"tmdbId"`
	MediaType   MediaType `json:"type"`
	Title       string    `json:"title"`
	StartTime   time.Time `json:"startTime"`
	Progress    float64   `json:"progress"`
	EtaSeconds  int64     `json:"eta"`
	State       string    `json:"state"`
	Reconnected bool      `json:"reconnected"`
}

// Complete reports whether the job has finished downloading. Deluge keeps
// reporting progress 1.0 while the torrent seeds or sits paused afterwards.
func (j DownloadJob) Complete() bool {
	return j.Progress >= 1.0 && (j.State == StateSeeding || j.State == StatePaused)
}
