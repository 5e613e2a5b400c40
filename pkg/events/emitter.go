package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/kafka"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// Emitter publishes gym resolution events. A nil Emitter (or one built
// without a producer) drops everything, so callers never have to branch on
// whether Kafka is configured.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

func (e *Emitter) enabled() bool {
	return e != nil && e.producer != nil
}

// EmitGymLinked emits a gym.linked event after a merge
func (e *Emitter) EmitGymLinked(ctx context.Context, master *models.MasterGym, sourceGymIDs []string) error {
	if !e.enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitGymLinked")
	defer span.End()

	data, _ := json.Marshal(GymLinkedData{
		SchemaVersion: SchemaVersion,
		MasterGymID:   master.ID,
		MasterGymName: master.Name,
		SourceGymIDs:  sourceGymIDs,
	})

	event := &kafka.GymEvent{
		EventType: EventGymLinked,
		SubjectID: master.ID,
		Data:      data,
	}

	if err := e.producer.PublishGymEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit gym.linked event")
		return err
	}

	return nil
}

// EmitGymUnlinked emits a gym.unlinked event after an unlink
func (e *Emitter) EmitGymUnlinked(ctx context.Context, masterGymID, sourceGymID string) error {
	if !e.enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitGymUnlinked")
	defer span.End()

	data, _ := json.Marshal(GymUnlinkedData{
		SchemaVersion: SchemaVersion,
		MasterGymID:   masterGymID,
		SourceGymID:   sourceGymID,
	})

	event := &kafka.GymEvent{
		EventType: EventGymUnlinked,
		SubjectID: masterGymID,
		Data:      data,
	}

	if err := e.producer.PublishGymEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit gym.unlinked event")
		return err
	}

	return nil
}

// EmitMatchCandidate emits a match.candidate event when a pair is queued
func (e *Emitter) EmitMatchCandidate(ctx context.Context, match *models.PendingMatch) error {
	if !e.enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchCandidate")
	defer span.End()

	data, _ := json.Marshal(MatchCandidateData{
		SchemaVersion: SchemaVersion,
		MatchID:       match.ID,
		SourceGym1ID:  match.SourceGym1ID,
		SourceGym2ID:  match.SourceGym2ID,
		Confidence:    match.Confidence,
	})

	event := &kafka.GymEvent{
		EventType: EventMatchCandidate,
		SubjectID: match.ID,
		Data:      data,
	}

	if err := e.producer.PublishGymEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match.candidate event")
		return err
	}

	return nil
}

// EmitMatchResolved emits match.approved or match.rejected after review
func (e *Emitter) EmitMatchResolved(ctx context.Context, match *models.PendingMatch, reviewedBy string, masterGymID string) error {
	if !e.enabled() {
		return nil
	}
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchResolved")
	defer span.End()

	eventType := EventMatchRejected
	if match.Status == models.MatchStatusApproved {
		eventType = EventMatchApproved
	}

	data, _ := json.Marshal(MatchResolvedData{
		SchemaVersion: SchemaVersion,
		MatchID:       match.ID,
		SourceGym1ID:  match.SourceGym1ID,
		SourceGym2ID:  match.SourceGym2ID,
		ReviewedBy:    reviewedBy,
		MasterGymID:   masterGymID,
	})

	event := &kafka.GymEvent{
		EventType: eventType,
		SubjectID: match.ID,
		Data:      data,
	}

	if err := e.producer.PublishGymEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match resolved event")
		return err
	}

	return nil
}
