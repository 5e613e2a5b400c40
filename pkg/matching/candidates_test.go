package matching

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
)

type pagedLister struct {
	gyms  []models.SourceGym
	calls int
}

func (l *pagedLister) ListByOrgAndCountry(_ context.Context, org models.Org, countryCode string, countryName string, afterExternalID string, limit int) ([]models.SourceGym, error) {
	l.calls++
	codeMatches := func(gym models.SourceGym) bool {
		return gym.CountryCode != nil && *gym.CountryCode == countryCode
	}
	nameMatches := func(gym models.SourceGym) bool {
		return gym.Country != nil && *gym.Country == countryName
	}
	var page []models.SourceGym
	for _, gym := range l.gyms {
		if gym.Org != org || (!codeMatches(gym) && !nameMatches(gym)) {
			continue
		}
		if afterExternalID != "" && gym.ExternalID <= afterExternalID {
			continue
		}
		page = append(page, gym)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func usGym(externalID string) models.SourceGym {
	code := "US"
	return models.SourceGym{
		Org:         models.OrgIBJJF,
		ExternalID:  externalID,
		Name:        "Gym " + externalID,
		CountryCode: &code,
	}
}

func TestLoadCandidatesDrainsAllPages(t *testing.T) {
	lister := &pagedLister{}
	for i := 0; i < 5; i++ {
		lister.gyms = append(lister.gyms, usGym(fmt.Sprintf("%03d", i)))
	}

	pool, err := LoadCandidates(context.Background(), lister, models.OrgIBJJF, 2)
	require.NoError(t, err)
	assert.Len(t, pool, 5)
	assert.GreaterOrEqual(t, lister.calls, 3)
}

func TestLoadCandidatesFiltersCountry(t *testing.T) {
	brCode := "BR"
	lister := &pagedLister{gyms: []models.SourceGym{
		usGym("001"),
		{Org: models.OrgIBJJF, ExternalID: "002", Name: "Rio Gym", CountryCode: &brCode},
		usGym("003"),
	}}

	pool, err := LoadCandidates(context.Background(), lister, models.OrgIBJJF, 10)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "001", pool[0].ExternalID)
	assert.Equal(t, "003", pool[1].ExternalID)
}

func TestLoadCandidatesIncludesLongFormCountry(t *testing.T) {
	// Harvested records often carry only the long-form country name. Either
	// field qualifies a gym for the pool.
	longForm := "United States"
	brazil := "Brazil"
	lister := &pagedLister{gyms: []models.SourceGym{
		usGym("001"),
		{Org: models.OrgIBJJF, ExternalID: "002", Name: "Long Form Gym", Country: &longForm},
		{Org: models.OrgIBJJF, ExternalID: "003", Name: "Rio Gym", Country: &brazil},
	}}

	pool, err := LoadCandidates(context.Background(), lister, models.OrgIBJJF, 10)
	require.NoError(t, err)
	require.Len(t, pool, 2)
	assert.Equal(t, "001", pool[0].ExternalID)
	assert.Equal(t, "002", pool[1].ExternalID)
}

type duplicatingLister struct {
	pages [][]models.SourceGym
	call  int
}

func (l *duplicatingLister) ListByOrgAndCountry(_ context.Context, _ models.Org, _ string, _ string, _ string, _ int) ([]models.SourceGym, error) {
	if l.call >= len(l.pages) {
		return nil, nil
	}
	page := l.pages[l.call]
	l.call++
	return page, nil
}

func TestLoadCandidatesDropsRepeatedRecords(t *testing.T) {
	// A record straddling a page boundary must not appear twice.
	lister := &duplicatingLister{pages: [][]models.SourceGym{
		{usGym("001"), usGym("002")},
		{usGym("002"), usGym("003")},
		{usGym("004")},
	}}

	pool, err := LoadCandidates(context.Background(), lister, models.OrgIBJJF, 2)
	require.NoError(t, err)
	assert.Len(t, pool, 4)
}

func TestLoadCandidatesEmptyPool(t *testing.T) {
	pool, err := LoadCandidates(context.Background(), &pagedLister{}, models.OrgIBJJF, 10)
	require.NoError(t, err)
	assert.Empty(t, pool)
}
