package services

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"fetcharr/models"
)

// LibraryService cross-references requested titles against the media catalog
// to avoid duplicate downloads.
type LibraryService struct {
	jellyfin *JellyfinClient
	tmdb     *TMDBClient
}

func NewLibraryService(jellyfin *JellyfinClient, tmdb *TMDBClient) *LibraryService {
	return &LibraryService{jellyfin: jellyfin, tmdb: tmdb}
}

// BatchCheckItem is one (id, type) pair of a batch existence check.
type BatchCheckItem struct {
	TmdbID string           `json:"tmdbId"`
	Type   models.MediaType `json:"type"`
}

// CheckMovie is a plain presence match by provider id.
func (l *LibraryService) CheckMovie(ctx context.Context, tmdbID string) (models.LibraryStatus, error) {
	movies, err := l.jellyfin.Movies(ctx)
	if err != nil {
		return models.LibraryStatus{}, err
	}
	exists := MatchMovie(movies, tmdbID)
	return models.LibraryStatus{Exists: exists, IsComplete: exists}, nil
}

// CheckShow matches the series and computes the missing-season set against the
// metadata provider's season list, excluding specials and unaired seasons.
func (l *LibraryService) CheckShow(ctx context.Context, tmdbID string) (models.LibraryStatus, error) {
	series, err := l.jellyfin.Series(ctx)
	if err != nil {
		return models.LibraryStatus{}, err
	}

	details, err := l.tmdb.ShowDetails(ctx, tmdbID)
	if err != nil {
		return models.LibraryStatus{}, err
	}

	return l.showStatus(ctx, series, details, tmdbID)
}

// showStatus resolves a show against already-fetched catalog series.
func (l *LibraryService) showStatus(ctx context.Context, series []models.JellyfinItem, details models.TMDBShowDetails, tmdbID string) (models.LibraryStatus, error) {
	wanted := DownloadableSeasons(details)

	matched := MatchSeries(series, tmdbID)
	if matched == nil {
		missing := make([]int, 0, len(wanted))
		for _, season := range wanted {
			missing = append(missing, season.SeasonNumber)
		}
		return models.LibraryStatus{Exists: false, MissingSeasons: missing}, nil
	}

	seasons, err := l.jellyfin.Seasons(ctx, matched.ID)
	if err != nil {
		return models.LibraryStatus{}, err
	}
	statuses := l.jellyfin.SeasonStatuses(ctx, seasons)

	existing := make([]int, 0, len(statuses))
	for _, status := range statuses {
		existing = append(existing, status.Season)
	}

	missing := make([]int, 0)
	for _, season := range wanted {
		if !slices.Contains(existing, season.SeasonNumber) {
			missing = append(missing, season.SeasonNumber)
		}
	}

	return models.LibraryStatus{
		Exists:         true,
		IsComplete:     len(missing) == 0,
		MissingSeasons: missing,
	}, nil
}

// BatchCheck resolves many existence checks against two bulk catalog fetches
// instead of per-item calls. Item resolution fans out concurrently; a failed
// item resolves to {exists:false, error} and never fails the batch.
func (l *LibraryService) BatchCheck(ctx context.Context, items []BatchCheckItem) (map[string]models.LibraryStatus, error) {
	var (
		movies []models.JellyfinItem
		series []models.JellyfinItem
	)

	fetches, fetchCtx := errgroup.WithContext(ctx)
	fetches.Go(func() error {
		var err error
		movies, err = l.jellyfin.Movies(fetchCtx)
		return err
	})
	fetches.Go(func() error {
		var err error
		series, err = l.jellyfin.Series(fetchCtx)
		return err
	})
	if err := fetches.Wait(); err != nil {
		return nil, err
	}

	results := make([]models.LibraryStatus, len(items))
	var group errgroup.Group
	for i, item := range items {
		group.Go(func() error {
			status, err := l.checkPrefetched(ctx, movies, series, item)
			if err != nil {
				slog.Warn("batch library check item failed", "tmdb_id", item.TmdbID, "type", item.Type, "error", err)
				status = models.LibraryStatus{Exists: false, Err: err.Error()}
			}
			results[i] = status
			return nil
		})
	}
	// Item errors are folded into their results, never returned.
	_ = group.Wait()

	resultMap := make(map[string]models.LibraryStatus, len(items))
	for i, item := range items {
		resultMap[item.TmdbID] = results[i]
	}
	return resultMap, nil
}

func (l *LibraryService) checkPrefetched(ctx context.Context, movies, series []models.JellyfinItem, item BatchCheckItem) (models.LibraryStatus, error) {
	switch item.Type {
	case models.MediaMovie:
		exists := MatchMovie(movies, item.TmdbID)
		return models.LibraryStatus{Exists: exists, IsComplete: exists}, nil
	case models.MediaTV:
		if MatchSeries(series, item.TmdbID) == nil {
			return models.LibraryStatus{Exists: false}, nil
		}
		details, err := l.tmdb.ShowDetails(ctx, item.TmdbID)
		if err != nil {
			return models.LibraryStatus{}, err
		}
		return l.showStatus(ctx, series, details, item.TmdbID)
	default:
		return models.LibraryStatus{Exists: false}, nil
	}
}
