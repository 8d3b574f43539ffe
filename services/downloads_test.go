package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fetcharr/apperr"
	"fetcharr/models"
)

// downloadHarness wires the full pipeline against fake upstreams.
type downloadHarness struct {
	service *DownloadService
	deluge  *fakeDeluge
	scans   *atomic.Int64
}

func newDownloadHarness(t *testing.T, rows []models.ReleaseCandidate, catalog *catalogFixture, shows map[string]models.TMDBShowDetails) *downloadHarness {
	indexerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		browseReply(w, rows)
	}))
	t.Cleanup(indexerSrv.Close)
	indexer := &IndexerClient{baseURL: indexerSrv.URL, apiKey: "test-key", categories: "55,57", client: indexerSrv.Client()}

	fake := &fakeDeluge{t: t, replies: map[string]any{
		"auth.login":                    true,
		"web.connected":                 true,
		"web.download_torrent_from_url": "/tmp/release.torrent",
		"web.add_torrents":              []any{[]any{true, "deadbeef01"}},
		"core.remove_torrent":           true,
	}}
	deluge, _ := newTestDeluge(t, fake)

	var scans atomic.Int64
	if catalog == nil {
		catalog = &catalogFixture{}
	}
	catalogHandler := catalog.handler()
	jellyfinSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/ScheduledTasks/Running/") {
			scans.Add(1)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		catalogHandler(w, r)
	}))
	t.Cleanup(jellyfinSrv.Close)
	jellyfin := &JellyfinClient{baseURL: jellyfinSrv.URL, apiKey: "jf-key", scanTaskID: "scan-task", client: jellyfinSrv.Client()}

	tmdbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/tv/")
		details, ok := shows[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(details)
	}))
	t.Cleanup(tmdbSrv.Close)
	tmdb := &TMDBClient{baseURL: tmdbSrv.URL, apiKey: "tmdb-key", client: tmdbSrv.Client()}

	library := &LibraryService{jellyfin: jellyfin, tmdb: tmdb}
	registry := NewDownloadRegistry()
	guard := NewScanGuard()
	tracker := &ProgressTracker{
		deluge:   deluge,
		jellyfin: jellyfin,
		registry: registry,
		guard:    guard,
		// Long enough that no poll fires during a test.
		interval: time.Hour,
		grace:    0,
		cancels:  make(map[string]context.CancelFunc),
	}

	service := &DownloadService{
		indexer:   indexer,
		deluge:    deluge,
		jellyfin:  jellyfin,
		tmdb:      tmdb,
		library:   library,
		validator: testValidator(),
		guard:     guard,
		tracker:   tracker,
		extractor: RegexSeasonExtractor{},
	}
	t.Cleanup(func() {
		for _, job := range tracker.Active() {
			tracker.Stop(job.Hash)
		}
	})

	return &downloadHarness{service: service, deluge: fake, scans: &scans}
}

func TestDownloadBest_Movie(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "A.Movie.2024.German.BluRay", Tags: []string{"HEVC", "ML"}, Seeders: 5, Category: 9, NumFiles: 2},
	}, nil, nil)

	result, err := h.service.DownloadBest(t.Context(), "603", models.MediaMovie, "de-DE", false)

	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Empty(t, result.Warning)
	assert.Equal(t, "deadbeef01", result.Job.Hash)
	assert.Equal(t, "603", result.Job.TmdbID)
	assert.Equal(t, "A.Movie.2024.German.BluRay", result.Job.Title)

	// Submission registers tracking and fires the scan-on-start notification.
	assert.Len(t, h.service.tracker.Active(), 1)
	assert.Equal(t, int64(1), h.scans.Load())
}

func TestDownloadBest_LanguageWarningBlocksSubmission(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "A.Movie.2024.BluRay", Seeders: 5, Category: 57, NumFiles: 2},
	}, nil, nil)

	result, err := h.service.DownloadBest(t.Context(), "603", models.MediaMovie, "de-DE", false)

	require.NoError(t, err)
	assert.Nil(t, result.Job)
	assert.Equal(t, "Dieser Film ist nur auf Englisch verfügbar. Trotzdem laden?", result.Warning)
	assert.Empty(t, h.deluge.calls)
	assert.Empty(t, h.service.tracker.Active())
}

func TestDownloadBest_ForceBypassesWarning(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "A.Movie.2024.BluRay", Seeders: 5, Category: 57, NumFiles: 2},
	}, nil, nil)

	result, err := h.service.DownloadBest(t.Context(), "603", models.MediaMovie, "de-DE", true)

	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Empty(t, result.Warning)
}

func TestDownloadBest_RequiresID(t *testing.T) {
	h := newDownloadHarness(t, nil, nil, nil)

	_, err := h.service.DownloadBest(t.Context(), "", models.MediaMovie, "de-DE", false)

	var validation *apperr.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestDownloadBest_NoSelectableReleases(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "A.Movie.2024.BluRay", Seeders: 0, Category: 9},
	}, nil, nil)

	_, err := h.service.DownloadBest(t.Context(), "603", models.MediaMovie, "de-DE", false)

	var notFound *apperr.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDownloadBest_TVPrefersMissingSeason(t *testing.T) {
	catalog := &catalogFixture{
		series: []models.JellyfinItem{providerItem("s1", "1399")},
		children: map[string][]models.JellyfinItem{
			"s1":       {seasonItem("season-1", 1)},
			"season-1": {},
		},
	}
	shows := map[string]models.TMDBShowDetails{
		"1399": {Name: "Some Show", Seasons: []models.TMDBSeason{
			{SeasonNumber: 1, EpisodeCount: 10},
			{SeasonNumber: 2, EpisodeCount: 10},
		}},
	}
	// Season 1 outranks season 2 but is already in the library.
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "Some.Show.S01.German.BluRay", Tags: []string{"HEVC", "ML"}, Seeders: 9, Category: 9},
		{ID: 2, Name: "Some.Show.S02.German.WEB", Tags: []string{"ML"}, Seeders: 4, Category: 9},
	}, catalog, shows)

	result, err := h.service.DownloadBest(t.Context(), "1399", models.MediaTV, "de-DE", false)

	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, "Some.Show.S02.German.WEB", result.Job.Title)
}

func TestDownloadSeasons(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "Some.Show.S01.German.BluRay", Tags: []string{"ML"}, Seeders: 9, Category: 9},
	}, nil, nil)

	result, err := h.service.DownloadSeasons(t.Context(), "1399", []int{1, 3}, "de-DE", false)

	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, "deadbeef01", result.Results[0].Hash)
	assert.False(t, result.Results[1].Success)
	assert.Equal(t, "No torrent found for Season 3", result.Results[1].Error)
}

func TestDownloadSeasons_LanguageWarningHaltsBatch(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "Some.Show.S01.BluRay", Seeders: 9, Category: 57},
		{ID: 2, Name: "Some.Show.S02.BluRay", Seeders: 9, Category: 57},
	}, nil, nil)

	result, err := h.service.DownloadSeasons(t.Context(), "1399", []int{1, 2}, "de-DE", false)

	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Equal(t, 1, result.WarningSeason)
	assert.Equal(t, "Diese Serie ist nur auf Englisch verfügbar. Trotzdem laden?", result.Warning)
	assert.Empty(t, h.deluge.calls)
}

func TestCancel(t *testing.T) {
	h := newDownloadHarness(t, []models.ReleaseCandidate{
		{ID: 1, Name: "A.Movie.2024.German.BluRay", Tags: []string{"ML"}, Seeders: 5, Category: 9, NumFiles: 2},
	}, nil, nil)

	result, err := h.service.DownloadBest(t.Context(), "603", models.MediaMovie, "de-DE", false)
	require.NoError(t, err)
	require.NotNil(t, result.Job)

	require.NoError(t, h.service.Cancel(t.Context(), result.Job.Hash))
	assert.Empty(t, h.service.tracker.Active())
	assert.Contains(t, h.deluge.calls, "core.remove_torrent")
}
