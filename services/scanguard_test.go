package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func guardAt(start time.Time) (*ScanGuard, *time.Time) {
	now := start
	g := NewScanGuard()
	g.now = func() time.Time { return now }
	return g, &now
}

func TestScanGuard_CompletionOncePerWindow(t *testing.T) {
	g, now := guardAt(time.Unix(1000, 0))

	assert.True(t, g.AdmitCompletion("hash-a"))
	assert.False(t, g.AdmitCompletion("hash-a"))

	// A different handle is independent
	assert.True(t, g.AdmitCompletion("hash-b"))

	// Within the cooldown window: still guarded
	*now = now.Add(30 * time.Minute)
	assert.False(t, g.AdmitCompletion("hash-a"))

	// After expiry the same handle may trigger again
	*now = now.Add(31 * time.Minute)
	assert.True(t, g.AdmitCompletion("hash-a"))
}

func TestScanGuard_StartScanGlobalCooldown(t *testing.T) {
	g, now := guardAt(time.Unix(1000, 0))

	assert.True(t, g.AdmitStartScan())
	// Concurrent starts within the window share one trigger
	assert.False(t, g.AdmitStartScan())
	assert.False(t, g.AdmitStartScan())

	*now = now.Add(4 * time.Minute)
	assert.False(t, g.AdmitStartScan())

	*now = now.Add(2 * time.Minute)
	assert.True(t, g.AdmitStartScan())
}

func TestScanGuard_PrunesExpiredHandles(t *testing.T) {
	g, now := guardAt(time.Unix(1000, 0))

	g.AdmitCompletion("hash-a")
	g.AdmitCompletion("hash-b")
	*now = now.Add(2 * time.Hour)

	g.AdmitCompletion("hash-c")
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.NotContains(t, g.scanned, "hash-a")
	assert.NotContains(t, g.scanned, "hash-b")
	assert.Contains(t, g.scanned, "hash-c")
}
