package services

import (
	"sync"
	"time"

	"fetcharr/models"
)

// DownloadRegistry is the in-memory projection of active downloads. The
// download client stays authoritative; nothing here survives a restart, and
// jobs found gone at the client are simply dropped.
type DownloadRegistry struct {
	mu   sync.RWMutex
	jobs map[string]models.DownloadJob
}

func NewDownloadRegistry() *DownloadRegistry {
	return &DownloadRegistry{jobs: make(map[string]models.DownloadJob)}
}

// Add registers a freshly submitted job.
func (r *DownloadRegistry) Add(job models.DownloadJob) {
	if job.StartTime.IsZero() {
		job.StartTime = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.Hash] = job
}

// Update applies a poll result to the stored projection.
func (r *DownloadRegistry) Update(hash string, progress float64, eta int64, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[hash]
	if !ok {
		return
	}
	job.Progress = progress
	job.EtaSeconds = eta
	job.State = state
	r.jobs[hash] = job
}

// Get returns the projection for one job handle.
func (r *DownloadRegistry) Get(hash string) (models.DownloadJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[hash]
	return job, ok
}

// List returns all active jobs.
func (r *DownloadRegistry) List() []models.DownloadJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	jobs := make([]models.DownloadJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Remove drops a job from the registry.
func (r *DownloadRegistry) Remove(hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, hash)
}
