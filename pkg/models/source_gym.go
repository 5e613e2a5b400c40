package models

import (
	"fmt"
	"strings"
	"time"
)

// Org identifies the sanctioning organization a gym record was harvested from.
type Org string

const (
	// OrgIBJJF is the stable org whose gyms form the candidate pool
	OrgIBJJF Org = "ibjjf"
	// OrgNAGA is the incoming org matched against the pool
	OrgNAGA Org = "naga"
)

// ParseOrg validates an org string against the closed set.
func ParseOrg(s string) (Org, error) {
	switch Org(strings.ToLower(strings.TrimSpace(s))) {
	case OrgIBJJF:
		return OrgIBJJF, nil
	case OrgNAGA:
		return OrgNAGA, nil
	default:
		return "", fmt.Errorf("unknown org %q", s)
	}
}

// Other returns the opposite org.
func (o Org) Other() Org {
	if o == OrgIBJJF {
		return OrgNAGA
	}
	return OrgIBJJF
}

// SourceGym is a gym record as published by one sanctioning org, keyed by
// (org, external_id). Only the merge engine sets master_gym_id and only the
// unlink operation clears it.
type SourceGym struct {
	Org         Org       `json:"org" db:"org"`
	ExternalID  string    `json:"external_id" db:"external_id"`
	Name        string    `json:"name" db:"name"`
	City        *string   `json:"city,omitempty" db:"city"`
	Country     *string   `json:"country,omitempty" db:"country"`
	CountryCode *string   `json:"country_code,omitempty" db:"country_code"`
	Address     *string   `json:"address,omitempty" db:"address"`
	Affiliation *string   `json:"affiliation,omitempty" db:"affiliation"`
	MasterGymID *string   `json:"master_gym_id,omitempty" db:"master_gym_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// ID returns the composite id used at the API boundary: "<org>#<externalId>".
func (g *SourceGym) ID() string {
	return SourceGymID(g.Org, g.ExternalID)
}

// SourceGymID builds the composite id for an (org, externalId) pair.
func SourceGymID(org Org, externalID string) string {
	return string(org) + "#" + externalID
}

// ParseSourceGymID splits a composite source gym id back into its parts.
func ParseSourceGymID(id string) (Org, string, error) {
	parts := strings.SplitN(id, "#", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("malformed source gym id %q", id)
	}
	org, err := ParseOrg(parts[0])
	if err != nil {
		return "", "", err
	}
	return org, parts[1], nil
}

// UpsertSourceGymRequest is what the org sync jobs write into the store.
type UpsertSourceGymRequest struct {
	Org         Org     `json:"org" validate:"required"`
	ExternalID  string  `json:"external_id" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	City        *string `json:"city,omitempty"`
	Country     *string `json:"country,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
	Address     *string `json:"address,omitempty"`
	Affiliation *string `json:"affiliation,omitempty"`
}
