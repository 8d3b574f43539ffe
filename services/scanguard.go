package services

import (
	"sync"
	"time"
)

const (
	// A completed job triggers at most one library rescan per this window.
	completionCooldown = time.Hour
	// Scan-on-start fires at most once per this window regardless of how many
	// jobs start concurrently.
	startScanCooldown = 5 * time.Minute
)

// ScanGuard de-dupes library rescan triggers. Mutex-guarded because pollers
// for concurrent jobs share one instance. The clock is injected for tests.
type ScanGuard struct {
	mu sync.Mutex

	scanned       map[string]time.Time
	lastStartScan time.Time

	handleTTL time.Duration
	startTTL  time.Duration
	now       func() time.Time
}

func NewScanGuard() *ScanGuard {
	return &ScanGuard{
		scanned:   make(map[string]time.Time),
		handleTTL: completionCooldown,
		startTTL:  startScanCooldown,
		now:       time.Now,
	}
}

// AdmitCompletion records the job handle and reports whether the caller should
// trigger the downstream rescan. A handle within its cooldown window is not
// admitted again.
func (g *ScanGuard) AdmitCompletion(handle string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.prune(now)

	if expiry, seen := g.scanned[handle]; seen && now.Before(expiry) {
		return false
	}
	g.scanned[handle] = now.Add(g.handleTTL)
	return true
}

// AdmitStartScan reports whether a scan-on-start trigger may fire, at most
// once per global cooldown window.
func (g *ScanGuard) AdmitStartScan() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.lastStartScan.IsZero() && now.Sub(g.lastStartScan) < g.startTTL {
		return false
	}
	g.lastStartScan = now
	return true
}

func (g *ScanGuard) prune(now time.Time) {
	for handle, expiry := range g.scanned {
		if !now.Before(expiry) {
			delete(g.scanned, handle)
		}
	}
}
