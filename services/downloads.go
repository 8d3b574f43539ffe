package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"fetcharr/apperr"
	"fetcharr/config"
	"fetcharr/models"
	"fetcharr/shared/format"
)

// DownloadService is the orchestration pipeline: indexer query, filtering,
// ranking, language validation, session workflow, progress tracking.
type DownloadService struct {
	indexer   *IndexerClient
	deluge    *DelugeClient
	jellyfin  *JellyfinClient
	tmdb      *TMDBClient
	library   *LibraryService
	validator *LanguageValidator
	guard     *ScanGuard
	tracker   *ProgressTracker
	extractor SeasonExtractor
}

func NewDownloadService(cfg *config.Config, indexer *IndexerClient, deluge *DelugeClient, jellyfin *JellyfinClient, tmdb *TMDBClient, library *LibraryService, tracker *ProgressTracker, guard *ScanGuard) *DownloadService {
	return &DownloadService{
		indexer:   indexer,
		deluge:    deluge,
		jellyfin:  jellyfin,
		tmdb:      tmdb,
		library:   library,
		validator: NewLanguageValidator(cfg),
		guard:     guard,
		tracker:   tracker,
		extractor: RegexSeasonExtractor{},
	}
}

// Search proxies a title search to the metadata provider.
func (s *DownloadService) Search(ctx context.Context, query string, mediaType models.MediaType, language string) ([]models.TMDBResult, error) {
	if query == "" {
		return nil, apperr.Validation("search string is required")
	}
	return s.tmdb.Search(ctx, query, mediaType, language)
}

// BrowseReleases returns the raw candidate rows for a title, for callers that
// want to pick manually.
func (s *DownloadService) BrowseReleases(ctx context.Context, tmdbID string) (models.BrowseResponse, error) {
	if tmdbID == "" {
		return models.BrowseResponse{}, apperr.Validation("TMDB ID is required")
	}
	return s.indexer.Browse(ctx, tmdbID, "")
}

// DownloadResult is the outcome of a single submission. When the language
// validator objects and force is off, Warning carries the question for the
// user and no job is submitted.
type DownloadResult struct {
	Job     *models.DownloadJob `json:"job,omitempty"`
	Warning string              `json:"languageWarning,omitempty"`
}

// DownloadBest finds, validates and submits the best candidate for a title.
func (s *DownloadService) DownloadBest(ctx context.Context, tmdbID string, mediaType models.MediaType, language string, force bool) (DownloadResult, error) {
	if tmdbID == "" {
		return DownloadResult{}, apperr.Validation("TMDB ID is required")
	}

	browse, err := s.indexer.BrowseWithFallback(ctx, tmdbID)
	if err != nil {
		return DownloadResult{}, err
	}

	candidates := FilterCandidates(browse.Rows, mediaType)
	if len(candidates) == 0 {
		return DownloadResult{}, apperr.NotFound("no selectable releases for tmdb id %s", tmdbID)
	}

	best := candidates[0]
	if mediaType == models.MediaTV {
		best, err = s.bestSeasonCandidate(ctx, tmdbID, candidates)
		if err != nil {
			return DownloadResult{}, err
		}
	}

	if !force {
		if check := s.validator.Validate(best, language, mediaType); !check.Valid {
			return DownloadResult{Warning: check.Warning}, nil
		}
	}

	job, err := s.submit(ctx, best, tmdbID, mediaType)
	if err != nil {
		return DownloadResult{}, err
	}
	return DownloadResult{Job: job}, nil
}

// bestSeasonCandidate picks the highest-ranked season winner, preferring
// seasons the library is missing when that information is available.
func (s *DownloadService) bestSeasonCandidate(ctx context.Context, tmdbID string, candidates []models.ReleaseCandidate) (models.ReleaseCandidate, error) {
	groups := GroupBySeason(candidates, s.extractor)
	if len(groups) == 0 {
		// No season markers at all; fall back to the overall winner.
		return candidates[0], nil
	}

	var missing []int
	if status, err := s.library.CheckShow(ctx, tmdbID); err == nil {
		missing = status.MissingSeasons
	} else {
		slog.Warn("library lookup failed, considering all seasons", "tmdb_id", tmdbID, "error", err)
	}

	var best *models.ReleaseCandidate
	for season, row := range groups {
		if len(missing) > 0 && !slices.Contains(missing, season) {
			continue
		}
		if best == nil || Rank(row) > Rank(*best) || (Rank(row) == Rank(*best) && row.Added < best.Added) {
			candidate := row
			best = &candidate
		}
	}
	if best == nil {
		return models.ReleaseCandidate{}, apperr.NotFound("no releases for the missing seasons of tmdb id %s", tmdbID)
	}
	return *best, nil
}

// SeasonDownloadResult is the per-season outcome of a batch submission.
type SeasonDownloadResult struct {
	SeasonNumber int    `json:"seasonNumber"`
	Success      bool   `json:"success,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SeasonsResult carries either the per-season outcomes or a single pending
// language warning that halted the batch.
type SeasonsResult struct {
	Results       []SeasonDownloadResult `json:"results,omitempty"`
	Warning       string                 `json:"languageWarning,omitempty"`
	WarningSeason int                    `json:"seasonNumber,omitempty"`
}

// DownloadSeasons submits the best candidate for each selected season. The
// first season failing language validation halts the remaining batch until
// the user resolves the warning; submission failures for individual seasons
// are collected, not fatal.
func (s *DownloadService) DownloadSeasons(ctx context.Context, tmdbID string, seasonNumbers []int, language string, force bool) (SeasonsResult, error) {
	if tmdbID == "" || len(seasonNumbers) == 0 {
		return SeasonsResult{}, apperr.Validation("TMDB ID and selected seasons are required")
	}

	browse, err := s.indexer.BrowseWithFallback(ctx, tmdbID)
	if err != nil {
		return SeasonsResult{}, err
	}

	candidates := FilterCandidates(browse.Rows, models.MediaTV)
	groups := GroupBySeason(candidates, s.extractor)

	results := make([]SeasonDownloadResult, 0, len(seasonNumbers))
	for _, seasonNumber := range seasonNumbers {
		best, ok := groups[seasonNumber]
		if !ok {
			results = append(results, SeasonDownloadResult{
				SeasonNumber: seasonNumber,
				Error:        fmt.Sprintf("No torrent found for Season %d", seasonNumber),
			})
			continue
		}

		if !force {
			if check := s.validator.Validate(best, language, models.MediaTV); !check.Valid {
				return SeasonsResult{Warning: check.Warning, WarningSeason: seasonNumber}, nil
			}
		}

		job, err := s.submit(ctx, best, tmdbID, models.MediaTV)
		if err != nil {
			results = append(results, SeasonDownloadResult{SeasonNumber: seasonNumber, Error: err.Error()})
			continue
		}
		results = append(results, SeasonDownloadResult{
			SeasonNumber: seasonNumber,
			Success:      true,
			Hash:         job.Hash,
		})
	}

	return SeasonsResult{Results: results}, nil
}

// submit runs the session workflow, registers the job for tracking and fires
// the cooldown-gated scan-on-start notification. The notification failing
// never fails the submission.
func (s *DownloadService) submit(ctx context.Context, candidate models.ReleaseCandidate, tmdbID string, mediaType models.MediaType) (*models.DownloadJob, error) {
	torrentURL := s.indexer.TorrentURL(candidate.ID)

	hash, err := s.deluge.Submit(ctx, torrentURL, mediaType)
	if err != nil {
		return nil, err
	}

	job := models.DownloadJob{
		Hash:      hash,
		TmdbID:    tmdbID,
		MediaType: mediaType,
		Title:     candidate.Name,
		StartTime: time.Now(),
		State:     models.StateDownloading,
	}
	s.tracker.Track(job)
	slog.Info("download started", "hash", hash, "title", candidate.Name, "size", format.Bytes(candidate.Size))

	if s.guard.AdmitStartScan() {
		if err := s.jellyfin.TriggerLibraryScan(ctx); err != nil {
			slog.Error("scan-on-start trigger failed", "hash", hash, "error", err)
		}
	}

	return &job, nil
}

// SeasonAvailability combines the metadata provider's season list, the
// catalog's per-season status and the best available release per season.
type SeasonAvailability struct {
	SeasonNumber    int                      `json:"seasonNumber"`
	Name            string                   `json:"name"`
	EpisodeCount    int                      `json:"episodeCount"`
	AirDate         string                   `json:"airDate"`
	ExistsInLibrary bool                     `json:"existsInLibrary"`
	IsMissing       bool                     `json:"isMissing"`
	HasTorrent      bool                     `json:"hasTorrent"`
	TorrentInfo     *models.ReleaseCandidate `json:"torrentInfo,omitempty"`
}

type ShowAvailability struct {
	ShowInfo struct {
		Name         string `json:"name"`
		IsEnded      bool   `json:"isEnded"`
		TotalSeasons int    `json:"totalSeasons"`
		Exists       bool   `json:"exists"`
	} `json:"showInfo"`
	Seasons []SeasonAvailability `json:"seasons"`
}

// ShowSeasonAvailability answers "which seasons exist, which are missing, and
// what could we download for each".
func (s *DownloadService) ShowSeasonAvailability(ctx context.Context, tmdbID string) (ShowAvailability, error) {
	if tmdbID == "" {
		return ShowAvailability{}, apperr.Validation("TMDB ID is required")
	}

	details, err := s.tmdb.ShowDetails(ctx, tmdbID)
	if err != nil {
		return ShowAvailability{}, err
	}

	status, err := s.library.CheckShow(ctx, tmdbID)
	if err != nil {
		return ShowAvailability{}, err
	}

	var groups map[int]models.ReleaseCandidate
	if browse, err := s.indexer.BrowseWithFallback(ctx, tmdbID); err == nil {
		groups = GroupBySeason(FilterCandidates(browse.Rows, models.MediaTV), s.extractor)
	} else {
		slog.Warn("no releases while building season availability", "tmdb_id", tmdbID, "error", err)
	}

	var out ShowAvailability
	out.ShowInfo.Name = details.Name
	out.ShowInfo.IsEnded = details.Status == "Ended"
	out.ShowInfo.TotalSeasons = details.NumberOfSeasons
	out.ShowInfo.Exists = status.Exists

	for _, season := range DownloadableSeasons(details) {
		isMissing := slices.Contains(status.MissingSeasons, season.SeasonNumber)
		entry := SeasonAvailability{
			SeasonNumber:    season.SeasonNumber,
			Name:            season.Name,
			EpisodeCount:    season.EpisodeCount,
			AirDate:         season.AirDate,
			ExistsInLibrary: status.Exists && !isMissing,
			IsMissing:       isMissing,
		}
		if row, ok := groups[season.SeasonNumber]; ok {
			entry.HasTorrent = true
			entry.TorrentInfo = &row
		}
		out.Seasons = append(out.Seasons, entry)
	}

	return out, nil
}

// Cancel removes the job at the download client, deleting its data, and stops
// local tracking.
func (s *DownloadService) Cancel(ctx context.Context, hash string) error {
	if hash == "" {
		return apperr.Validation("torrent ID is required")
	}
	if err := s.deluge.RemoveTorrent(ctx, hash, true); err != nil {
		return err
	}
	s.tracker.Stop(hash)
	return nil
}

// Progress answers a poll for one job handle.
func (s *DownloadService) Progress(ctx context.Context, hash string) (models.DownloadJob, error) {
	if hash == "" {
		return models.DownloadJob{}, apperr.Validation("torrent ID is required")
	}
	return s.tracker.Snapshot(ctx, hash)
}
