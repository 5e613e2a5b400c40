package matching

import (
	"context"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// The candidate pool is restricted to US listings; both orgs only overlap
// there today and the bound keeps pass times predictable. A gym qualifies
// when either field matches, since harvested records often carry the code or
// the long-form name but not both.
const (
	CandidateCountryCode = "US"
	CandidateCountryName = "United States"
)

// CandidateLister pages through an org's gyms in a country. Paging is keyed
// by external_id, which is unique within the org and strictly ordered.
type CandidateLister interface {
	ListByOrgAndCountry(ctx context.Context, org models.Org, countryCode string, countryName string, afterExternalID string, limit int) ([]models.SourceGym, error)
}

// LoadCandidates drains every page of the candidate pool for an org. Records
// repeated across page boundaries are dropped so each candidate appears once.
func LoadCandidates(ctx context.Context, lister CandidateLister, org models.Org, pageSize int) ([]models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.LoadCandidates")
	defer span.End()

	if pageSize < 1 {
		pageSize = 200
	}

	var pool []models.SourceGym
	seen := make(map[string]bool)
	after := ""

	for {
		page, err := lister.ListByOrgAndCountry(ctx, org, CandidateCountryCode, CandidateCountryName, after, pageSize)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}

		for _, gym := range page {
			if seen[gym.ExternalID] {
				continue
			}
			seen[gym.ExternalID] = true
			pool = append(pool, gym)
		}

		after = page[len(page)-1].ExternalID
		if len(page) < pageSize {
			break
		}
	}

	return pool, nil
}
