package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fetcharr/config"
	"fetcharr/models"
)

func testValidator() *LanguageValidator {
	return NewLanguageValidator(&config.Config{
		EnglishOnlyCategories:      []int{37, 57},
		GermanGuaranteedCategories: []int{9, 55},
	})
}

func TestValidateLanguage_GermanUserEnglishOnlyRelease(t *testing.T) {
	v := testValidator()

	check := v.Validate(models.ReleaseCandidate{Category: 57}, "de-DE", models.MediaMovie)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Warning, "nur auf Englisch")
	assert.Contains(t, check.Warning, "Film")

	check = v.Validate(models.ReleaseCandidate{Category: 37}, "de-DE", models.MediaTV)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Warning, "Serie")
}

func TestValidateLanguage_EnglishUserGermanRelease(t *testing.T) {
	v := testValidator()

	// German-guaranteed without any dual-audio marker: likely German-only
	check := v.Validate(models.ReleaseCandidate{Category: 55}, "en-US", models.MediaTV)
	assert.False(t, check.Valid)
	assert.Contains(t, check.Warning, "nur auf Deutsch")

	// ML or DL tag means the release carries both languages
	check = v.Validate(models.ReleaseCandidate{Category: 55, Tags: []string{"ML"}}, "en-US", models.MediaTV)
	assert.True(t, check.Valid)

	check = v.Validate(models.ReleaseCandidate{Category: 9, Tags: []string{"DL"}}, "en-US", models.MediaMovie)
	assert.True(t, check.Valid)
}

func TestValidateLanguage_ValidCombinations(t *testing.T) {
	v := testValidator()

	// German user, German-guaranteed release
	assert.True(t, v.Validate(models.ReleaseCandidate{Category: 55}, "de-DE", models.MediaTV).Valid)
	// English user, English-only release
	assert.True(t, v.Validate(models.ReleaseCandidate{Category: 57}, "en-US", models.MediaMovie).Valid)
	// Unknown category is never blocked
	assert.True(t, v.Validate(models.ReleaseCandidate{Category: 12}, "de-DE", models.MediaMovie).Valid)
	// Unknown user language is never blocked
	assert.True(t, v.Validate(models.ReleaseCandidate{Category: 57}, "fr-FR", models.MediaMovie).Valid)
}
