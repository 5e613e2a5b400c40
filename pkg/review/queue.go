// Package review manages the pending match queue and its admin decisions
package review

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/events"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// MatchStore is the slice of the pending match repository the queue needs
type MatchStore interface {
	Create(ctx context.Context, req *models.CreatePendingMatchRequest) (*models.PendingMatch, error)
	Get(ctx context.Context, id string) (*models.PendingMatch, error)
	GetPendingByPair(ctx context.Context, gymA, gymB string) (*models.PendingMatch, error)
	ListByStatus(ctx context.Context, status models.MatchStatus, limit int) ([]models.PendingMatch, error)
	MarkResolved(ctx context.Context, id string, status models.MatchStatus, reviewedBy string) (bool, error)
}

// GymLinker merges the gym pair when a match is approved
type GymLinker interface {
	Link(ctx context.Context, gymA, gymB *models.SourceGym) (*models.MasterGym, error)
}

// GymGetter loads gyms by their composite id parts
type GymGetter interface {
	Get(ctx context.Context, org models.Org, externalID string) (*models.SourceGym, error)
}

// Queue is the pending match review queue
type Queue struct {
	matches MatchStore
	gyms    GymGetter
	linker  GymLinker
	emitter *events.Emitter
	logger  ectologger.Logger
}

// NewQueue creates a review queue. emitter may be nil.
func NewQueue(matches MatchStore, gyms GymGetter, linker GymLinker, emitter *events.Emitter, logger ectologger.Logger) *Queue {
	return &Queue{
		matches: matches,
		gyms:    gyms,
		linker:  linker,
		emitter: emitter,
		logger:  logger,
	}
}

// Enqueue records a scored pair for review. At most one pending row exists
// per unordered pair: a pair already queued (in either orientation) returns
// the existing row untouched.
func (q *Queue) Enqueue(ctx context.Context, gymA, gymB *models.SourceGym, confidence int, signals models.MatchSignals) (*models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Queue.Enqueue")
	defer span.End()

	existing, err := q.matches.GetPendingByPair(ctx, gymA.ID(), gymB.ID())
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	match, err := q.matches.Create(ctx, &models.CreatePendingMatchRequest{
		SourceGym1ID:   gymA.ID(),
		SourceGym1Name: gymA.Name,
		SourceGym2ID:   gymB.ID(),
		SourceGym2Name: gymB.Name,
		Confidence:     confidence,
		Signals:        signals,
	})
	if err != nil {
		return nil, err
	}
	if match == nil {
		// A concurrent pass inserted the pair between the check and the
		// insert. The unique index rejected ours; return the winner.
		return q.matches.GetPendingByPair(ctx, gymA.ID(), gymB.ID())
	}

	q.logger.WithContext(ctx).WithFields(map[string]any{
		"match_id":   match.ID,
		"gym1":       match.SourceGym1ID,
		"gym2":       match.SourceGym2ID,
		"confidence": match.Confidence,
	}).Info("Queued match for review")

	if err := q.emitter.EmitMatchCandidate(ctx, match); err != nil {
		q.logger.WithContext(ctx).WithError(err).Warn("Match candidate event not published")
	}

	return match, nil
}

// List returns matches in the given status, highest confidence first. An
// empty status defaults to pending.
func (q *Queue) List(ctx context.Context, status string, limit int) ([]models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Queue.List")
	defer span.End()

	parsed := models.MatchStatusPending
	if status != "" {
		var err error
		parsed, err = models.ParseMatchStatus(status)
		if err != nil {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	return q.matches.ListByStatus(ctx, parsed, limit)
}

// Approve links the pair and then resolves the match as a confirmed
// duplicate. Linking happens before the status flip so a failed link leaves
// the match pending and the approval retryable; linking is idempotent, so a
// concurrent double-approve still cannot duplicate a merge. The conditional
// status update stays the concurrency guard.
func (q *Queue) Approve(ctx context.Context, matchID string, reviewedBy string) (*models.MasterGym, error) {
	ctx, span := tracing.StartSpan(ctx, "review.Queue.Approve")
	defer span.End()

	match, err := q.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchStatusPending {
		return nil, httperror.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("match %s is already resolved", matchID))
	}

	if reviewedBy == "" {
		reviewedBy = "system"
	}

	gymA, err := q.loadGym(ctx, match.SourceGym1ID)
	if err != nil {
		return nil, err
	}
	gymB, err := q.loadGym(ctx, match.SourceGym2ID)
	if err != nil {
		return nil, err
	}

	master, err := q.linker.Link(ctx, gymA, gymB)
	if err != nil {
		return nil, err
	}

	claimed, err := q.matches.MarkResolved(ctx, matchID, models.MatchStatusApproved, reviewedBy)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, httperror.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("match %s is already resolved", matchID))
	}

	q.logger.WithContext(ctx).WithFields(map[string]any{
		"match_id":      matchID,
		"master_gym_id": master.ID,
		"reviewed_by":   reviewedBy,
	}).Info("Approved match")

	match.Status = models.MatchStatusApproved
	if err := q.emitter.EmitMatchResolved(ctx, match, reviewedBy, master.ID); err != nil {
		q.logger.WithContext(ctx).WithError(err).Warn("Match approved event not published")
	}

	return master, nil
}

// Reject resolves a match as a false positive. Neither gym is touched, and
// nothing stops a later pass from re-queueing the pair.
func (q *Queue) Reject(ctx context.Context, matchID string, reviewedBy string) error {
	ctx, span := tracing.StartSpan(ctx, "review.Queue.Reject")
	defer span.End()

	match, err := q.matches.Get(ctx, matchID)
	if err != nil {
		return err
	}

	if reviewedBy == "" {
		reviewedBy = "system"
	}

	claimed, err := q.matches.MarkResolved(ctx, matchID, models.MatchStatusRejected, reviewedBy)
	if err != nil {
		return err
	}
	if !claimed {
		return httperror.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("match %s is already resolved", matchID))
	}

	q.logger.WithContext(ctx).WithFields(map[string]any{
		"match_id":    matchID,
		"reviewed_by": reviewedBy,
	}).Info("Rejected match")

	match.Status = models.MatchStatusRejected
	if err := q.emitter.EmitMatchResolved(ctx, match, reviewedBy, ""); err != nil {
		q.logger.WithContext(ctx).WithError(err).Warn("Match rejected event not published")
	}

	return nil
}

func (q *Queue) loadGym(ctx context.Context, compositeID string) (*models.SourceGym, error) {
	org, externalID, err := models.ParseSourceGymID(compositeID)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return q.gyms.Get(ctx, org, externalID)
}
