package models

// JellyfinItem is the subset of a catalog item the pipeline reads.
type JellyfinItem struct {
	ID          string      `json:"Id"`
	Name        string      `json:"Name"`
	IndexNumber int         `json:"IndexNumber"`
	ProviderIDs ProviderIDs `json:"ProviderIds"`
}

type ProviderIDs struct {
	Tmdb string `json:"Tmdb"`
	Imdb string `json:"Imdb"`
}

type JellyfinItemsResponse struct {
	Items []JellyfinItem `json:"Items"`
}

// SeasonStatus is the per-season completeness verdict for a series already in
// the catalog.
type SeasonStatus struct {
	Season       int    `json:"season"`
	Complete     bool   `json:"complete"`
	MissingCount int    `json:"missingCount"`
	Err          string `json:"error,omitempty"`
}

// LibraryStatus is the answer to "is this already downloaded".
type LibraryStatus struct {
	Exists         bool   `json:"exists"`
	IsComplete     bool   `json:"isComplete"`
	MissingSeasons []int  `json:"missingSeasons,omitempty"`
	Err            string `json:"error,omitempty"`
}
