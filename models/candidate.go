package models

import "fetcharr/apperr"

// ReleaseCandidate is one row from the indexer browse response.
type ReleaseCandidate struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Tags     []string `json:"tags"`
	Size     int64    `json:"size"`
	Seeders  int      `json:"seeders"`
	Leechers int      `json:"leechers"`
	Added    int64    `json:"added"`
	NumFiles int      `json:"numfiles"`
	Trumped  int      `json:"trumped"`
	Category int      `json:"category"`
}

// BrowseResponse is the indexer's browse envelope.
type BrowseResponse struct {
	Count int                `json:"count"`
	Rows  []ReleaseCandidate `json:"rows"`
}

// HasTag reports whether the candidate carries the given tag.
func (c ReleaseCandidate) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the fields the pipeline depends on. The indexer payload is
// optional-field-heavy; missing essentials become a typed validation error at
// the boundary instead of zero values deep in the ranking logic.
func (c ReleaseCandidate) Validate() error {
	if c.ID == 0 {
		return apperr.Validation("indexer row is missing an id")
	}
	if c.Name == "" {
		return apperr.Validation("indexer row %d is missing a name", c.ID)
	}
	return nil
}
