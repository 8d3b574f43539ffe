package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fetcharr/models"
)

func TestRegexSeasonExtractor(t *testing.T) {
	extractor := RegexSeasonExtractor{}

	tests := []struct {
		name   string
		season int
		ok     bool
	}{
		{"Show.S01.German.1080p", 1, true},
		{"Show.S12.COMPLETE.BluRay", 12, true},
		{"Show.S01E05.WEB", 1, true},
		{"Movie.2024.1080p", 0, false},
		{"Show.Season.1.WEB", 0, false},
	}

	for _, tt := range tests {
		season, ok := extractor.Season(tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.season, season, tt.name)
	}
}

func TestGroupBySeason_BestPerSeason(t *testing.T) {
	rows := []models.ReleaseCandidate{
		{ID: 1, Name: "Show.S01.WEB", Seeders: 5, Added: 100},                          // rank 0
		{ID: 2, Name: "Show.S01.BluRay", Tags: []string{"HEVC"}, Seeders: 5, Added: 200}, // rank 2
		{ID: 3, Name: "Show.S02.BluRay", Seeders: 5, Added: 150},                       // rank 1
		{ID: 4, Name: "Show.Special.WEB", Seeders: 5, Added: 50},                       // no season marker
	}

	groups := GroupBySeason(rows, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, int64(2), groups[1].ID)
	assert.Equal(t, int64(3), groups[2].ID)
}

func TestGroupBySeason_ReplacesOnlyOnStrictlyHigherRank(t *testing.T) {
	// Two same-season releases, the later one ranked higher
	rank3 := models.ReleaseCandidate{ID: 1, Name: "Show.S01.BluRay", Tags: []string{"HEVC", "HDR10"}, Added: 100} // rank 3
	rank5 := models.ReleaseCandidate{ID: 2, Name: "Show.S01.BluRay", Tags: []string{"HEVC", "HDR10", "DTS", "DL"}, Added: 200} // rank 5

	groups := GroupBySeason([]models.ReleaseCandidate{rank3, rank5}, nil)
	require.Contains(t, groups, 1)
	assert.Equal(t, int64(2), groups[1].ID)

	// Equal rank: the first seen (already sorted best-first) is kept
	tied := models.ReleaseCandidate{ID: 3, Name: "Show.S01.BluRay", Tags: []string{"HEVC", "HDR10", "DTS", "DL"}, Added: 300}
	groups = GroupBySeason([]models.ReleaseCandidate{rank5, tied}, nil)
	assert.Equal(t, int64(2), groups[1].ID)
}

func TestGroupBySeason_Idempotent(t *testing.T) {
	rows := []models.ReleaseCandidate{
		{ID: 1, Name: "Show.S01.BluRay", Seeders: 5},
		{ID: 2, Name: "Show.S02.WEB", Seeders: 5},
		{ID: 3, Name: "Show.S01.WEB", Seeders: 5},
	}

	first := GroupBySeason(rows, nil)
	second := GroupBySeason(rows, nil)
	assert.Equal(t, first, second)
}
