package services

import (
	"sort"
	"strings"

	"fetcharr/models"
)

// Cam-rip and telesync markers; matched case-insensitively against the
// release name.
var nameBlacklist = []string{".TS.", "telesync", ".CAM"}

// Multi-file packs above this count are almost always multi-disc or extras
// collections, not a single movie.
const maxMovieFiles = 5

// FilterCandidates removes unselectable rows: trumped releases, dead torrents,
// blacklisted source markers, and (for movies) multi-file packs. The result is
// sorted by rank descending with the oldest upload winning ties.
func FilterCandidates(rows []models.ReleaseCandidate, mediaType models.MediaType) []models.ReleaseCandidate {
	filtered := make([]models.ReleaseCandidate, 0, len(rows))
	for _, row := range rows {
		if row.Trumped != 0 || row.Seeders == 0 {
			continue
		}
		if nameBlacklisted(row.Name) {
			continue
		}
		if mediaType == models.MediaMovie && row.NumFiles >= maxMovieFiles {
			continue
		}
		filtered = append(filtered, row)
	}

	SortByRank(filtered)
	return filtered
}

// SortByRank orders candidates by rank descending, then added ascending.
func SortByRank(rows []models.ReleaseCandidate) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := Rank(rows[i]), Rank(rows[j])
		if ri != rj {
			return ri > rj
		}
		return rows[i].Added < rows[j].Added
	})
}

func nameBlacklisted(name string) bool {
	lower := strings.ToLower(name)
	for _, term := range nameBlacklist {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
