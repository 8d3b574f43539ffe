package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/models"
	"fetcharr/shared/httpclient"
)

// JellyfinClient queries the media catalog and triggers library rescans.
type JellyfinClient struct {
	baseURL    string
	apiKey     string
	scanTaskID string
	client     *http.Client
}

func NewJellyfinClient(cfg *config.Config) *JellyfinClient {
	client := httpclient.CatalogClient
	if cfg.Environment == "development" {
		// Self-signed certs on the NAS; only tolerated in development.
		client = &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	return &JellyfinClient{
		baseURL:    cfg.JellyfinURL(),
		apiKey:     cfg.JellyfinAPIKey,
		scanTaskID: cfg.JellyfinScanTaskID,
		client:     client,
	}
}

func (j *JellyfinClient) fetchItems(ctx context.Context, query string) ([]models.JellyfinItem, error) {
	resp, err := httpclient.Get(ctx, j.client, j.baseURL+"/Items"+query, map[string]string{
		"X-Emby-Token": j.apiKey,
	})
	if err != nil {
		return nil, apperr.FromRequestError("jellyfin", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, apperr.Upstream("jellyfin", resp.StatusCode)
	}

	var result models.JellyfinItemsResponse
	if err := httpclient.DecodeJSON(resp, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Movies lists all movie items with provider ids.
func (j *JellyfinClient) Movies(ctx context.Context) ([]models.JellyfinItem, error) {
	return j.fetchItems(ctx, "?Recursive=true&IncludeItemTypes=Movie&Fields=ProviderIds&Filters=IsNotFolder")
}

// Series lists all series items with provider ids.
func (j *JellyfinClient) Series(ctx context.Context) ([]models.JellyfinItem, error) {
	return j.fetchItems(ctx, "?Recursive=true&IncludeItemTypes=Series&Fields=ProviderIds")
}

// Seasons lists the season items of one series.
func (j *JellyfinClient) Seasons(ctx context.Context, seriesID string) ([]models.JellyfinItem, error) {
	return j.fetchItems(ctx, "?ParentId="+seriesID+"&IncludeItemTypes=Season")
}

// SeasonStatuses determines per-season completeness: a season is complete when
// the catalog reports no missing or unaired episodes for it. A failed lookup
// marks that one season, not the batch.
func (j *JellyfinClient) SeasonStatuses(ctx context.Context, seasons []models.JellyfinItem) []models.SeasonStatus {
	statuses := make([]models.SeasonStatus, 0, len(seasons))
	for _, season := range seasons {
		missing, err := j.fetchItems(ctx, "?ParentId="+season.ID+"&IncludeItemTypes=Episode&Filters=IsMissing,IsUnaired")
		if err != nil {
			statuses = append(statuses, models.SeasonStatus{Season: season.IndexNumber, Err: err.Error()})
			continue
		}
		statuses = append(statuses, models.SeasonStatus{
			Season:       season.IndexNumber,
			Complete:     len(missing) == 0,
			MissingCount: len(missing),
		})
	}
	return statuses
}

// MatchSeries finds the series whose TMDB provider id matches, or nil.
func MatchSeries(series []models.JellyfinItem, tmdbID string) *models.JellyfinItem {
	for i := range series {
		if series[i].ProviderIDs.Tmdb == tmdbID {
			return &series[i]
		}
	}
	return nil
}

// MatchMovie reports whether any movie item carries the TMDB provider id.
func MatchMovie(movies []models.JellyfinItem, tmdbID string) bool {
	for _, item := range movies {
		if item.ProviderIDs.Tmdb == tmdbID {
			return true
		}
	}
	return false
}

// TriggerLibraryScan kicks the catalog's scheduled scan task. Callers treat
// this as a side effect: failures are logged, never propagated.
func (j *JellyfinClient) TriggerLibraryScan(ctx context.Context) error {
	scanURL := j.baseURL + "/ScheduledTasks/Running/" + j.scanTaskID

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, scanURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create scan request: %w", err)
	}
	req.Header.Set("X-Emby-Token", j.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpclient.Do(j.client, req)
	if err != nil {
		return apperr.FromRequestError("jellyfin", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apperr.Upstream("jellyfin", resp.StatusCode)
	}

	slog.Info("jellyfin library scan triggered")
	return nil
}
