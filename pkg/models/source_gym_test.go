package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrg(t *testing.T) {
	org, err := ParseOrg("ibjjf")
	require.NoError(t, err)
	assert.Equal(t, OrgIBJJF, org)

	org, err = ParseOrg("  NAGA ")
	require.NoError(t, err)
	assert.Equal(t, OrgNAGA, org)

	_, err = ParseOrg("uaejj")
	assert.Error(t, err)
}

func TestSourceGymID(t *testing.T) {
	gym := &SourceGym{Org: OrgIBJJF, ExternalID: "1234"}
	assert.Equal(t, "ibjjf#1234", gym.ID())
}

func TestParseSourceGymID(t *testing.T) {
	org, externalID, err := ParseSourceGymID("naga#abc-99")
	require.NoError(t, err)
	assert.Equal(t, OrgNAGA, org)
	assert.Equal(t, "abc-99", externalID)

	// External ids may themselves contain the separator
	org, externalID, err = ParseSourceGymID("ibjjf#a#b")
	require.NoError(t, err)
	assert.Equal(t, OrgIBJJF, org)
	assert.Equal(t, "a#b", externalID)

	_, _, err = ParseSourceGymID("no-separator")
	assert.Error(t, err)

	_, _, err = ParseSourceGymID("ibjjf#")
	assert.Error(t, err)

	_, _, err = ParseSourceGymID("badorg#123")
	assert.Error(t, err)
}

func TestPendingMatchResolution(t *testing.T) {
	match := &PendingMatch{Status: MatchStatusPending}
	_, ok := match.Resolution()
	assert.False(t, ok)

	now := time.Now().UTC()
	admin := "admin-1"
	match = &PendingMatch{Status: MatchStatusApproved, ReviewedAt: &now, ReviewedBy: &admin}
	review, ok := match.Resolution()
	require.True(t, ok)
	assert.Equal(t, now, review.At)
	assert.Equal(t, "admin-1", review.By)
}
