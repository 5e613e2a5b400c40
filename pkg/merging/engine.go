// Package merging consolidates source gyms under canonical master gyms
package merging

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

// SourceGymStore is the slice of the source gym repository the engine needs
type SourceGymStore interface {
	Get(ctx context.Context, org models.Org, externalID string) (*models.SourceGym, error)
	SetMasterGym(ctx context.Context, org models.Org, externalID string, masterGymID string) error
	ClearMasterGym(ctx context.Context, org models.Org, externalID string) error
	ListByMasterGym(ctx context.Context, masterGymID string) ([]models.SourceGym, error)
}

// MasterGymStore is the slice of the master gym repository the engine needs
type MasterGymStore interface {
	Create(ctx context.Context, req *models.CreateMasterGymRequest) (*models.MasterGym, error)
	Get(ctx context.Context, id string) (*models.MasterGym, error)
}

// GraphProjector mirrors link state into the graph store. Projection is
// best effort; a graph outage never fails a merge.
type GraphProjector interface {
	ProjectLink(ctx context.Context, master *models.MasterGym, sources []models.SourceGym) error
	RemoveLink(ctx context.Context, masterGymID, sourceGymID string) error
}

// Engine links and unlinks source gyms
type Engine struct {
	sourceGyms SourceGymStore
	masterGyms MasterGymStore
	emitter    *events.Emitter
	projector  GraphProjector
	logger     ectologger.Logger
}

// NewEngine creates a merging engine. emitter and projector may be nil.
func NewEngine(sourceGyms SourceGymStore, masterGyms MasterGymStore, emitter *events.Emitter, projector GraphProjector, logger ectologger.Logger) *Engine {
	return &Engine{
		sourceGyms: sourceGyms,
		masterGyms: masterGyms,
		emitter:    emitter,
		projector:  projector,
		logger:     logger,
	}
}

// Link merges two source gyms under one master gym. The operation is
// idempotent: an existing master on either side is reused, a side already
// pointing at the target is left alone, and a retry after a partial failure
// finishes the remaining write. There is no wrapping transaction; the
// reuse checks are what make retries safe.
func (e *Engine) Link(ctx context.Context, gymA, gymB *models.SourceGym) (*models.MasterGym, error) {
	ctx, span := tracing.StartSpan(ctx, "merging.Engine.Link")
	defer span.End()

	// Refetch both sides so a stale caller copy cannot spawn a second master.
	a, err := e.sourceGyms.Get(ctx, gymA.Org, gymA.ExternalID)
	if err != nil {
		return nil, err
	}
	b, err := e.sourceGyms.Get(ctx, gymB.Org, gymB.ExternalID)
	if err != nil {
		return nil, err
	}

	master, err := e.resolveMaster(ctx, a, b)
	if err != nil {
		return nil, err
	}

	for _, gym := range []*models.SourceGym{a, b} {
		if gym.MasterGymID != nil && *gym.MasterGymID == master.ID {
			continue
		}
		if gym.MasterGymID != nil && *gym.MasterGymID != master.ID {
			e.logger.WithContext(ctx).WithFields(map[string]any{
				"source_gym_id": gym.ID(),
				"from":          *gym.MasterGymID,
				"to":            master.ID,
			}).Warn("Repointing source gym to a different master")
		}
		if err := e.sourceGyms.SetMasterGym(ctx, gym.Org, gym.ExternalID, master.ID); err != nil {
			return nil, err
		}
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"master_gym_id": master.ID,
		"gym_a":         a.ID(),
		"gym_b":         b.ID(),
	}).Info("Linked source gyms")

	if err := e.emitter.EmitGymLinked(ctx, master, []string{a.ID(), b.ID()}); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Link event not published")
	}
	e.project(ctx, master)

	return master, nil
}

// resolveMaster reuses an existing master from either side, preferring gym
// A's when the two disagree, and creates one seeded from A otherwise.
func (e *Engine) resolveMaster(ctx context.Context, a, b *models.SourceGym) (*models.MasterGym, error) {
	if a.MasterGymID != nil {
		return e.masterGyms.Get(ctx, *a.MasterGymID)
	}
	if b.MasterGymID != nil {
		return e.masterGyms.Get(ctx, *b.MasterGymID)
	}

	return e.masterGyms.Create(ctx, &models.CreateMasterGymRequest{
		Name:    a.Name,
		City:    firstNonEmpty(a.City, b.City),
		Country: firstNonEmpty(a.Country, b.Country),
		Address: firstNonEmpty(a.Address, b.Address),
	})
}

// Unlink detaches a source gym from a master gym. Detaching a gym that is
// already detached succeeds without writing; a gym linked to a different
// master is a caller error.
func (e *Engine) Unlink(ctx context.Context, masterGymID string, sourceGymID string) error {
	ctx, span := tracing.StartSpan(ctx, "merging.Engine.Unlink")
	defer span.End()

	if _, err := e.masterGyms.Get(ctx, masterGymID); err != nil {
		return err
	}

	org, externalID, err := models.ParseSourceGymID(sourceGymID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	gym, err := e.sourceGyms.Get(ctx, org, externalID)
	if err != nil {
		return err
	}

	if gym.MasterGymID == nil {
		return nil
	}
	if *gym.MasterGymID != masterGymID {
		return httperror.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("source gym %s is not linked to master gym %s", sourceGymID, masterGymID))
	}

	if err := e.sourceGyms.ClearMasterGym(ctx, org, externalID); err != nil {
		return err
	}

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"master_gym_id": masterGymID,
		"source_gym_id": sourceGymID,
	}).Info("Unlinked source gym")

	if err := e.emitter.EmitGymUnlinked(ctx, masterGymID, sourceGymID); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Unlink event not published")
	}
	if e.projector != nil {
		if err := e.projector.RemoveLink(ctx, masterGymID, sourceGymID); err != nil {
			e.logger.WithContext(ctx).WithError(err).Warn("Graph projection not updated")
		}
	}

	return nil
}

func (e *Engine) project(ctx context.Context, master *models.MasterGym) {
	if e.projector == nil {
		return
	}
	sources, err := e.sourceGyms.ListByMasterGym(ctx, master.ID)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Graph projection skipped")
		return
	}
	if err := e.projector.ProjectLink(ctx, master, sources); err != nil {
		e.logger.WithContext(ctx).WithError(err).Warn("Graph projection failed")
	}
}

func firstNonEmpty(values ...*string) *string {
	for _, v := range values {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}
