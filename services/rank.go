package services

import (
	"strings"

	"fetcharr/models"
)

// Recognized quality markers. Language/dual-audio, encoding, HDR and audio
// codec tags all weigh the same; unknown tags contribute nothing.
var tagScores = map[string]int{
	"DL":           1,
	"ML":           1,
	"HEVC":         1,
	"HDR10":        1,
	"HDR10+":       1,
	"DTS":          1,
	"DTSHD":        1,
	"DTSHR":        1,
	"Dolby Vision": 1,
}

// Disc-sourced releases get a bonus over web rips of the same tag set.
var discSourceMarkers = []string{"BluRay", "BDRiP"}

// Rank scores a release candidate. Pure; ties are broken later by the added
// timestamp during sorting, preferring longer-lived uploads.
func Rank(c models.ReleaseCandidate) int {
	score := 0
	for _, tag := range c.Tags {
		score += tagScores[tag]
	}
	for _, marker := range discSourceMarkers {
		if strings.Contains(c.Name, marker) {
			score++
			break
		}
	}
	return score
}
