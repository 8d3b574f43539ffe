package models

import "fetcharr/apperr"

// MediaType distinguishes movie and TV handling through the pipeline.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// ParseMediaType validates a caller-supplied media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaMovie, MediaTV:
		return MediaType(s), nil
	case "":
		return MediaMovie, nil
	default:
		return "", apperr.Validation("unknown media type %q", s)
	}
}
