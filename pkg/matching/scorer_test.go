package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
)

func strptr(s string) *string { return &s }

func TestNameSimilarityExactMatch(t *testing.T) {
	scorer := NewScorer()

	assert.Equal(t, 100, scorer.NameSimilarity("Gracie Barra Austin", "Gracie Barra Austin"))
	assert.Equal(t, 100, scorer.NameSimilarity("GRACIE BARRA AUSTIN", "gracie barra austin"))
	assert.Equal(t, 100, scorer.NameSimilarity("  Gracie   Barra  Austin ", "Gracie Barra Austin"))
}

func TestNameSimilarityNearMatch(t *testing.T) {
	scorer := NewScorer()

	// one edit over 19 characters
	score := scorer.NameSimilarity("Gracie Barra Austin", "Gracie Barra Austen")
	assert.Equal(t, 95, score)

	assert.Greater(t, scorer.NameSimilarity("Atos HQ", "Atos JJ HQ"), 50)
}

func TestNameSimilarityDisjoint(t *testing.T) {
	scorer := NewScorer()

	assert.Less(t, scorer.NameSimilarity("Alliance Dallas", "Checkmat Long Beach"), 40)
	assert.Equal(t, 0, scorer.NameSimilarity("", ""))
}

func TestScoreCityBoost(t *testing.T) {
	scorer := NewScorer()

	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Iron Fortress", City: strptr("Austin")}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "Iron Fortress", City: strptr("austin")}

	total, signals := scorer.Score(a, b)
	assert.Equal(t, 100, signals.NameSimilarity)
	assert.Equal(t, 15, signals.CityBoost)
	assert.Equal(t, 0, signals.AffiliationBoost)
	assert.Equal(t, 100, total)
}

func TestScoreNoCityBoostWhenMissing(t *testing.T) {
	scorer := NewScorer()

	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Iron Fortress"}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "Iron Fortress", City: strptr("Austin")}

	_, signals := scorer.Score(a, b)
	assert.Equal(t, 0, signals.CityBoost)
}

func TestScoreAffiliationBoost(t *testing.T) {
	scorer := NewScorer()

	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Gracie Barra Northwest"}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "Gracie Barra NW Houston"}

	_, signals := scorer.Score(a, b)
	assert.Equal(t, 10, signals.AffiliationBoost)
}

func TestScoreAffiliationFromAffiliationField(t *testing.T) {
	scorer := NewScorer()

	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Northwest BJJ", Affiliation: strptr("Alliance")}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "NW Jiu Jitsu", Affiliation: strptr("Alliance")}

	_, signals := scorer.Score(a, b)
	assert.Equal(t, 10, signals.AffiliationBoost)
}

func TestScoreAffiliationFromAddress(t *testing.T) {
	scorer := NewScorer()

	// Team names sometimes only surface in the address line of a listing.
	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Northwest BJJ", Address: strptr("200 Alliance Way, Houston TX")}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "NW Jiu Jitsu", Affiliation: strptr("Alliance")}

	_, signals := scorer.Score(a, b)
	assert.Equal(t, 10, signals.AffiliationBoost)
}

func TestScoreClampedAt100(t *testing.T) {
	scorer := NewScorer()

	a := &models.SourceGym{Org: models.OrgIBJJF, ExternalID: "1", Name: "Gracie Barra Austin", City: strptr("Austin")}
	b := &models.SourceGym{Org: models.OrgNAGA, ExternalID: "2", Name: "Gracie Barra Austin", City: strptr("Austin")}

	total, signals := scorer.Score(a, b)
	assert.Equal(t, 100, signals.NameSimilarity)
	assert.Equal(t, 15, signals.CityBoost)
	assert.Equal(t, 10, signals.AffiliationBoost)
	assert.Equal(t, 100, total)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "gracie barra austin", Normalize("  GRACIE   Barra\tAustin "))
	assert.Equal(t, "", Normalize("   "))
}
