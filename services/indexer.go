package services

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/models"
	"fetcharr/shared/httpclient"
)

// Scene and P2P releases are preferred; the browse call is retried without
// this constraint when it yields nothing.
const preferredReleaseTypes = "Scene,P2P"

// IndexerClient talks to the tracker's browse API.
type IndexerClient struct {
	baseURL    string
	apiKey     string
	categories string
	client     *http.Client
}

func NewIndexerClient(cfg *config.Config) *IndexerClient {
	return &IndexerClient{
		baseURL:    cfg.IndexerURL,
		apiKey:     cfg.IndexerAPIKey,
		categories: cfg.IndexerCategories,
		client:     httpclient.CatalogClient,
	}
}

// Browse queries the indexer by TMDB id, optionally constrained to a release
// type filter.
func (ic *IndexerClient) Browse(ctx context.Context, tmdbID, releaseType string) (models.BrowseResponse, error) {
	params := map[string]string{
		"tmdbId": tmdbID,
		"apikey": ic.apiKey,
		"cats":   ic.categories,
	}
	if releaseType != "" {
		params["release_type"] = releaseType
	}
	return ic.browse(ctx, params)
}

// BrowseText queries the indexer by free-text search string.
func (ic *IndexerClient) BrowseText(ctx context.Context, searchstring string) (models.BrowseResponse, error) {
	return ic.browse(ctx, map[string]string{
		"searchstring": searchstring,
		"apikey":       ic.apiKey,
	})
}

// BrowseWithFallback performs the primary categories+release-type query and
// retries once without the release type constraint on an empty result. Still
// empty means a typed not-found, not an upstream failure.
func (ic *IndexerClient) BrowseWithFallback(ctx context.Context, tmdbID string) (models.BrowseResponse, error) {
	result, err := ic.Browse(ctx, tmdbID, preferredReleaseTypes)
	if err != nil {
		return models.BrowseResponse{}, err
	}
	if result.Count == 0 {
		slog.Debug("no scene/p2p releases, retrying without release type filter", "tmdb_id", tmdbID)
		result, err = ic.Browse(ctx, tmdbID, "")
		if err != nil {
			return models.BrowseResponse{}, err
		}
	}
	if result.Count == 0 {
		return models.BrowseResponse{}, apperr.NotFound("no releases found for tmdb id %s", tmdbID)
	}
	return result, nil
}

// TorrentURL builds the fetch-by-id URL handed to the download client.
func (ic *IndexerClient) TorrentURL(candidateID int64) string {
	return httpclient.BuildQueryURL(ic.baseURL+"/download.php", map[string]string{
		"id":     strconv.FormatInt(candidateID, 10),
		"apikey": ic.apiKey,
	})
}

func (ic *IndexerClient) browse(ctx context.Context, params map[string]string) (models.BrowseResponse, error) {
	apiURL := httpclient.BuildQueryURL(ic.baseURL+"/browse.php", params)

	resp, err := httpclient.Get(ctx, ic.client, apiURL, nil)
	if err != nil {
		return models.BrowseResponse{}, apperr.FromRequestError("indexer", err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.BrowseResponse{}, apperr.UpstreamBody("indexer", resp.StatusCode, httpclient.ReadBody(resp))
	}

	var result models.BrowseResponse
	if err := httpclient.DecodeJSON(resp, &result); err != nil {
		return models.BrowseResponse{}, err
	}

	// Rows with missing essentials never reach the ranking logic.
	valid := result.Rows[:0]
	for _, row := range result.Rows {
		if err := row.Validate(); err != nil {
			slog.Warn("dropping malformed indexer row", "error", err)
			continue
		}
		valid = append(valid, row)
	}
	result.Rows = valid
	result.Count = len(valid)

	return result, nil
}
