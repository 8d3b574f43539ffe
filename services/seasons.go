package services

import (
	"regexp"
	"strconv"

	"fetcharr/models"
)

// SeasonExtractor pulls a season number out of a free-text release name.
// Isolated behind an interface so alternate naming conventions can be added
// without touching the grouping logic.
type SeasonExtractor interface {
	Season(name string) (int, bool)
}

// RegexSeasonExtractor matches the scene convention S<2 digits>.
type RegexSeasonExtractor struct{}

var seasonPattern = regexp.MustCompile(`S(\d{2})`)

func (RegexSeasonExtractor) Season(name string) (int, bool) {
	match := seasonPattern.FindStringSubmatch(name)
	if match == nil {
		return 0, false
	}
	season, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return season, true
}

// GroupBySeason keeps the single best candidate per discovered season number.
// A held candidate is only replaced by a strictly higher rank, so with input
// already sorted by rank then recency the first seen wins ties. Seasons with
// no matching release are simply absent.
func GroupBySeason(rows []models.ReleaseCandidate, extractor SeasonExtractor) map[int]models.ReleaseCandidate {
	if extractor == nil {
		extractor = RegexSeasonExtractor{}
	}

	groups := make(map[int]models.ReleaseCandidate)
	for _, row := range rows {
		season, ok := extractor.Season(row.Name)
		if !ok {
			continue
		}
		held, exists := groups[season]
		if !exists || Rank(row) > Rank(held) {
			groups[season] = row
		}
	}
	return groups
}
