package matching

import (
	"math"
	"strings"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
)

// affiliationTokens are franchise and team names that appear inside gym
// names. Two gyms sharing one of these tokens are likely branches of the
// same organization even when the rest of the name differs.
var affiliationTokens = []string{
	"gracie barra",
	"alliance",
	"atos",
	"checkmat",
	"10th planet",
	"gracie humaita",
	"carlson gracie",
	"renzo gracie",
	"ribeiro",
	"gf team",
}

// Scorer compares two gym records and produces a 0 to 100 confidence score
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score compares two gyms and returns the total confidence plus the signal
// breakdown. The total is clamped to 100.
func (s *Scorer) Score(a, b *models.SourceGym) (int, models.MatchSignals) {
	signals := models.MatchSignals{
		NameSimilarity: s.NameSimilarity(a.Name, b.Name),
	}

	if cityMatch(a.City, b.City) {
		signals.CityBoost = 15
	}
	if s.sharedAffiliation(a, b) {
		signals.AffiliationBoost = 10
	}

	total := signals.NameSimilarity + signals.CityBoost + signals.AffiliationBoost
	if total > 100 {
		total = 100
	}
	return total, signals
}

// NameSimilarity scores two gym names on a 0 to 100 scale using the
// Levenshtein distance over normalized names.
func (s *Scorer) NameSimilarity(a, b string) int {
	a = Normalize(a)
	b = Normalize(b)

	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	if a == b {
		return 100
	}

	distance := s.LevenshteinDistance(a, b)
	return int(math.Round(100 * (1.0 - float64(distance)/float64(maxLen))))
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	prevRow := make([]int, len(b)+1)

	for j := 0; j <= len(b); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(a); i++ {
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			row[j] = min(min(row[j-1]+1, prevRow[j]+1), prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(b)]
}

// Normalize lowercases, trims, and collapses internal whitespace so that
// formatting differences between org listings do not count as edits.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (s *Scorer) sharedAffiliation(a, b *models.SourceGym) bool {
	aText := affiliationText(a)
	bText := affiliationText(b)
	for _, token := range affiliationTokens {
		if strings.Contains(aText, token) && strings.Contains(bText, token) {
			return true
		}
	}
	return false
}

// affiliationText is everywhere a team name can surface on a listing: the
// gym name, the declared affiliation, and the street address.
func affiliationText(g *models.SourceGym) string {
	text := g.Name
	if g.Affiliation != nil {
		text += " " + *g.Affiliation
	}
	if g.Address != nil {
		text += " " + *g.Address
	}
	return Normalize(text)
}

func cityMatch(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	na := Normalize(*a)
	nb := Normalize(*b)
	return na != "" && na == nb
}
