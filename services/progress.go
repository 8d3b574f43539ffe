package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fetcharr/apperr"
	"fetcharr/models"
	"fetcharr/shared/format"
)

const (
	pollInterval = 5 * time.Second
	// Completed jobs stay visible this long so callers can show the
	// completion state before the job disappears.
	completionGrace = 10 * time.Second
)

// ProgressTracker polls the download client for every active job on a fixed
// interval. One cancellable loop per job handle, bound to the job's lifetime.
type ProgressTracker struct {
	deluge   *DelugeClient
	jellyfin *JellyfinClient
	registry *DownloadRegistry
	guard    *ScanGuard

	interval time.Duration
	grace    time.Duration

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

func NewProgressTracker(deluge *DelugeClient, jellyfin *JellyfinClient, registry *DownloadRegistry, guard *ScanGuard) *ProgressTracker {
	return &ProgressTracker{
		deluge:   deluge,
		jellyfin: jellyfin,
		registry: registry,
		guard:    guard,
		interval: pollInterval,
		grace:    completionGrace,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// Track registers the job and starts its polling loop. Tracking the same
// handle twice is a no-op.
func (t *ProgressTracker) Track(job models.DownloadJob) {
	t.mu.Lock()
	if _, active := t.cancels[job.Hash]; active {
		t.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancels[job.Hash] = cancel
	t.mu.Unlock()

	t.registry.Add(job)
	go t.run(ctx, job.Hash)
}

// Stop cancels the polling loop and drops the job from the registry.
func (t *ProgressTracker) Stop(hash string) {
	t.mu.Lock()
	if cancel, active := t.cancels[hash]; active {
		cancel()
		delete(t.cancels, hash)
	}
	t.mu.Unlock()
	t.registry.Remove(hash)
}

func (t *ProgressTracker) run(ctx context.Context, hash string) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			done := t.pollOnce(ctx, hash)
			if done {
				t.holdThenStop(ctx, hash)
				return
			}
		}
	}
}

// pollOnce fetches the current status, updates the projection, and fires the
// completion side effect on the first observed completion. Poll failures keep
// the loop alive; a job gone from the client ends tracking.
func (t *ProgressTracker) pollOnce(ctx context.Context, hash string) bool {
	status, err := t.deluge.TorrentStatus(ctx, hash)
	if err != nil {
		var notFound *apperr.NotFoundError
		if errors.As(err, &notFound) {
			slog.Info("tracked torrent gone from download client", "hash", hash)
			return true
		}
		slog.Warn("progress poll failed", "hash", hash, "error", err)
		return false
	}

	t.registry.Update(hash, status.Progress, status.EtaSeconds, status.State)
	slog.Debug("progress poll", "hash", hash, "progress", status.Progress, "eta", format.ETA(status.EtaSeconds), "state", status.State)

	if status.Complete() {
		t.handleCompletion(ctx, hash)
		return true
	}
	return false
}

// handleCompletion triggers the library rescan exactly once per cooldown
// window for a given handle. Trigger failures are logged and suppressed; the
// guard already holds the handle, so there is no immediate retry.
func (t *ProgressTracker) handleCompletion(ctx context.Context, hash string) {
	if !t.guard.AdmitCompletion(hash) {
		return
	}
	slog.Info("download complete, triggering library scan", "hash", hash)
	if err := t.jellyfin.TriggerLibraryScan(ctx); err != nil {
		slog.Error("library scan trigger failed", "hash", hash, "error", err)
	}
}

func (t *ProgressTracker) holdThenStop(ctx context.Context, hash string) {
	select {
	case <-ctx.Done():
	case <-time.After(t.grace):
	}
	t.Stop(hash)
}

// Snapshot answers a progress poll for one job handle. Tracked jobs come from
// the local projection; unknown handles fall through to the download client so
// a restarted frontend can reattach to an in-flight job.
func (t *ProgressTracker) Snapshot(ctx context.Context, hash string) (models.DownloadJob, error) {
	if job, ok := t.registry.Get(hash); ok {
		return job, nil
	}

	status, err := t.deluge.TorrentStatus(ctx, hash)
	if err != nil {
		return models.DownloadJob{}, err
	}
	status.Reconnected = true

	if status.Complete() {
		t.handleCompletion(ctx, hash)
	}
	return status, nil
}

// Active lists all tracked jobs.
func (t *ProgressTracker) Active() []models.DownloadJob {
	return t.registry.List()
}
