package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/database"
)

// MatchStatus is the review state of a pending match. A row leaves pending
// exactly once.
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusApproved MatchStatus = "approved"
	MatchStatusRejected MatchStatus = "rejected"
)

// ParseMatchStatus validates a status string against the closed set.
func ParseMatchStatus(s string) (MatchStatus, error) {
	switch MatchStatus(strings.ToLower(strings.TrimSpace(s))) {
	case MatchStatusPending:
		return MatchStatusPending, nil
	case MatchStatusApproved:
		return MatchStatusApproved, nil
	case MatchStatusRejected:
		return MatchStatusRejected, nil
	default:
		return "", fmt.Errorf("unknown match status %q", s)
	}
}

// MatchSignals breaks a confidence score down into its components.
type MatchSignals struct {
	NameSimilarity   int `json:"name_similarity"`
	CityBoost        int `json:"city_boost"`
	AffiliationBoost int `json:"affiliation_boost"`
}

// PendingMatch is a scored gym pair waiting for (or resolved by) admin
// review. Gym names are denormalized at creation time so the queue renders
// without joins. reviewed_at and reviewed_by are set together when the row
// reaches a terminal status and never otherwise.
type PendingMatch struct {
	ID             string                       `json:"id" db:"id"`
	SourceGym1ID   string                       `json:"source_gym1_id" db:"source_gym1_id"`
	SourceGym1Name string                       `json:"source_gym1_name" db:"source_gym1_name"`
	SourceGym2ID   string                       `json:"source_gym2_id" db:"source_gym2_id"`
	SourceGym2Name string                       `json:"source_gym2_name" db:"source_gym2_name"`
	Confidence     int                          `json:"confidence" db:"confidence"`
	Signals        database.JSONB[MatchSignals] `json:"signals" db:"signals"`
	Status         MatchStatus                  `json:"status" db:"status"`
	ReviewedAt     *time.Time                   `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy     *string                      `json:"reviewed_by,omitempty" db:"reviewed_by"`
	CreatedAt      time.Time                    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time                    `json:"updated_at" db:"updated_at"`
}

// Review is the stamp recorded when a match reaches a terminal status.
type Review struct {
	At time.Time
	By string
}

// Resolution returns the review stamp when the match has been resolved.
func (m *PendingMatch) Resolution() (Review, bool) {
	if m.Status == MatchStatusPending || m.ReviewedAt == nil || m.ReviewedBy == nil {
		return Review{}, false
	}
	return Review{At: *m.ReviewedAt, By: *m.ReviewedBy}, true
}

// CreatePendingMatchRequest carries a new scored pair into the review queue.
type CreatePendingMatchRequest struct {
	SourceGym1ID   string       `json:"source_gym1_id" validate:"required"`
	SourceGym1Name string       `json:"source_gym1_name" validate:"required"`
	SourceGym2ID   string       `json:"source_gym2_id" validate:"required"`
	SourceGym2Name string       `json:"source_gym2_name" validate:"required"`
	Confidence     int          `json:"confidence" validate:"gte=0,lte=100"`
	Signals        MatchSignals `json:"signals"`
}
