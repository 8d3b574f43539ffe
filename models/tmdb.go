package models

import "encoding/json"

// TMDBResult is one search hit from the metadata provider. Movie results use
// title/release_date, TV results name/first_air_date.
type TMDBResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	VoteAverage  float64 `json:"vote_average"`
}

type TMDBSearchResponse struct {
	Results []TMDBResult `json:"results"`
	Errors  []string     `json:"errors,omitempty"`
}

// TMDBSeason is one season entry on a show details payload. Season 0 holds
// specials and is excluded from availability math.
type TMDBSeason struct {
	SeasonNumber int    `json:"season_number"`
	EpisodeCount int    `json:"episode_count"`
	Name         string `json:"name"`
	AirDate      string `json:"air_date"`
}

type TMDBShowDetails struct {
	Name            string       `json:"name"`
	Status          string       `json:"status"`
	NumberOfSeasons int          `json:"number_of_seasons"`
	Seasons         []TMDBSeason `json:"seasons"`
}

// WatchProviders is passed through to the caller untouched.
type WatchProviders struct {
	ID      int             `json:"id"`
	Results json.RawMessage `json:"results"`
}
