package services

import (
	"slices"

	"fetcharr/config"
	"fetcharr/models"
)

// LanguageCheck is the validator verdict. Warning is a user-facing, localized
// question; the caller decides whether to surface it or force past it.
type LanguageCheck struct {
	Valid   bool   `json:"valid"`
	Warning string `json:"warning,omitempty"`
}

// LanguageValidator decides whether a candidate's language guarantee matches
// the user's preference. The guarantee is encoded in the indexer category.
type LanguageValidator struct {
	englishOnly      []int
	germanGuaranteed []int
}

func NewLanguageValidator(cfg *config.Config) *LanguageValidator {
	return &LanguageValidator{
		englishOnly:      cfg.EnglishOnlyCategories,
		germanGuaranteed: cfg.GermanGuaranteedCategories,
	}
}

// Validate applies the rule table. German-guaranteed categories can still be
// multi-language releases; only the absence of both the ML and DL tags makes
// them suspect for an English listener.
func (v *LanguageValidator) Validate(c models.ReleaseCandidate, userLanguage string, mediaType models.MediaType) LanguageCheck {
	switch userLanguage {
	case "de-DE":
		if slices.Contains(v.englishOnly, c.Category) {
			return LanguageCheck{
				Valid:   false,
				Warning: germanWarning(mediaType, "ist nur auf Englisch verfügbar. Trotzdem laden?"),
			}
		}
	case "en-US":
		if slices.Contains(v.germanGuaranteed, c.Category) && !c.HasTag("ML") && !c.HasTag("DL") {
			return LanguageCheck{
				Valid:   false,
				Warning: germanWarning(mediaType, "ist möglicherweise nur auf Deutsch verfügbar. Trotzdem laden?"),
			}
		}
	}
	return LanguageCheck{Valid: true}
}

func germanWarning(mediaType models.MediaType, rest string) string {
	if mediaType == models.MediaMovie {
		return "Dieser Film " + rest
	}
	return "Diese Serie " + rest
}
