package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fetcharr/apperr"
	"fetcharr/models"
)

func newTestIndexer(t *testing.T, handler http.HandlerFunc) *IndexerClient {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &IndexerClient{
		baseURL:    srv.URL,
		apiKey:     "test-key",
		categories: "55,57",
		client:     srv.Client(),
	}
}

func browseReply(w http.ResponseWriter, rows []models.ReleaseCandidate) {
	json.NewEncoder(w).Encode(models.BrowseResponse{Count: len(rows), Rows: rows})
}

func TestBrowse_SendsCategoryAndReleaseTypeParams(t *testing.T) {
	var query map[string][]string
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		browseReply(w, []models.ReleaseCandidate{{ID: 1, Name: "A.Movie.2024.BluRay", Seeders: 3}})
	})

	result, err := client.Browse(t.Context(), "603", preferredReleaseTypes)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, "603", query["tmdbId"][0])
	assert.Equal(t, "55,57", query["cats"][0])
	assert.Equal(t, "Scene,P2P", query["release_type"][0])
	assert.Equal(t, "test-key", query["apikey"][0])
}

func TestBrowseWithFallback_RetriesOnceWithoutReleaseType(t *testing.T) {
	var releaseTypes []string
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		releaseTypes = append(releaseTypes, r.URL.Query().Get("release_type"))
		if r.URL.Query().Get("release_type") != "" {
			browseReply(w, nil)
			return
		}
		browseReply(w, []models.ReleaseCandidate{{ID: 2, Name: "A.Movie.2024.WEB", Seeders: 1}})
	})

	result, err := client.BrowseWithFallback(t.Context(), "603")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, []string{"Scene,P2P", ""}, releaseTypes)
}

func TestBrowseWithFallback_NotFoundAfterBothQueries(t *testing.T) {
	calls := 0
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		browseReply(w, nil)
	})

	_, err := client.BrowseWithFallback(t.Context(), "603")

	var notFound *apperr.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.Equal(t, 2, calls)
}

func TestBrowseWithFallback_NoRetryWhenFirstQueryHits(t *testing.T) {
	calls := 0
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		browseReply(w, []models.ReleaseCandidate{{ID: 3, Name: "A.Movie.2024.BluRay", Seeders: 5}})
	})

	_, err := client.BrowseWithFallback(t.Context(), "603")

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBrowse_DropsMalformedRows(t *testing.T) {
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		browseReply(w, []models.ReleaseCandidate{
			{ID: 0, Name: "Missing.Id", Seeders: 2},
			{ID: 4, Name: "", Seeders: 2},
			{ID: 5, Name: "Kept.Release.2024", Seeders: 2},
		})
	})

	result, err := client.Browse(t.Context(), "603", "")

	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(5), result.Rows[0].ID)
}

func TestBrowse_UpstreamError(t *testing.T) {
	client := newTestIndexer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Browse(t.Context(), "603", "")

	var upstream *apperr.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestBrowse_TimeoutIsTyped(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	client := &IndexerClient{
		baseURL:    srv.URL,
		apiKey:     "test-key",
		categories: "55,57",
		client:     &http.Client{Timeout: 20 * time.Millisecond},
	}

	_, err := client.Browse(t.Context(), "603", "")

	var timeout *apperr.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "indexer", timeout.Service)
}

func TestTorrentURL(t *testing.T) {
	client := &IndexerClient{baseURL: "https://tracker.example", apiKey: "test-key"}

	url := client.TorrentURL(1234)

	assert.Contains(t, url, "https://tracker.example/download.php?")
	assert.Contains(t, url, "id=1234")
	assert.Contains(t, url, "apikey=test-key")
}
