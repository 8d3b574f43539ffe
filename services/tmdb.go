package services

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/models"
	"fetcharr/shared/httpclient"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBClient is the metadata provider lookup.
type TMDBClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewTMDBClient(cfg *config.Config) *TMDBClient {
	return &TMDBClient{
		baseURL: tmdbBaseURL,
		apiKey:  cfg.TMDBAPIKey,
		client:  httpclient.MetadataClient,
	}
}

func (t *TMDBClient) get(ctx context.Context, path string, params map[string]string, v any) error {
	if t.apiKey == "" {
		return apperr.Validation("TMDB_API_KEY is not set")
	}
	if params == nil {
		params = map[string]string{}
	}
	params["api_key"] = t.apiKey

	resp, err := httpclient.Get(ctx, t.client, httpclient.BuildQueryURL(t.baseURL+path, params), nil)
	if err != nil {
		return apperr.FromRequestError("tmdb", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return apperr.NotFound("tmdb has no entry at %s", path)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return apperr.Upstream("tmdb", resp.StatusCode)
	}
	return httpclient.DecodeJSON(resp, v)
}

// Search queries the metadata provider for movies or TV shows.
func (t *TMDBClient) Search(ctx context.Context, query string, mediaType models.MediaType, language string) ([]models.TMDBResult, error) {
	var result models.TMDBSearchResponse
	err := t.get(ctx, "/search/"+string(mediaType), map[string]string{
		"query":    query,
		"language": language,
	}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Errors) > 0 {
		return nil, apperr.Validation("tmdb rejected the search: %s", strings.Join(result.Errors, ", "))
	}
	return result.Results, nil
}

// ShowDetails fetches the show payload including the season list.
func (t *TMDBClient) ShowDetails(ctx context.Context, tmdbID string) (models.TMDBShowDetails, error) {
	var details models.TMDBShowDetails
	err := t.get(ctx, "/tv/"+tmdbID, nil, &details)
	return details, err
}

// WatchProviders fetches the streaming availability for a title.
func (t *TMDBClient) WatchProviders(ctx context.Context, id int, mediaType models.MediaType) (models.WatchProviders, error) {
	var providers models.WatchProviders
	err := t.get(ctx, "/"+string(mediaType)+"/"+strconv.Itoa(id)+"/watch/providers", nil, &providers)
	return providers, err
}

// DownloadableSeasons filters a show's season list to the ones worth
// requesting: no specials (season 0) and no seasons without aired episodes.
func DownloadableSeasons(details models.TMDBShowDetails) []models.TMDBSeason {
	seasons := make([]models.TMDBSeason, 0, len(details.Seasons))
	for _, season := range details.Seasons {
		if season.SeasonNumber > 0 && season.EpisodeCount > 0 {
			seasons = append(seasons, season)
		}
	}
	return seasons
}
