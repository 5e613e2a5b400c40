package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// GymService mirrors the relational link state as a graph: one MasterGym
// node per canonical gym, one SourceGym node per org listing, and a
// LINKED_TO edge between them. The relational store stays the source of
// truth; this projection exists for traversal queries.
type GymService struct {
	client *Client
	logger ectologger.Logger
}

// NewGymService creates a new gym graph service
func NewGymService(client *Client, logger ectologger.Logger) *GymService {
	return &GymService{
		client: client,
		logger: logger,
	}
}

// ProjectLink upserts the master gym node and its linked source gym nodes
func (s *GymService) ProjectLink(ctx context.Context, master *models.MasterGym, sources []models.SourceGym) error {
	ctx, span := tracing.StartSpan(ctx, "graph.GymService.ProjectLink")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"master_gym_id": master.ID,
		"sources":       len(sources),
	})

	cypher := `
		MERGE (m:MasterGym {id: $master_id})
		SET m.name = $master_name
		WITH m
		UNWIND $sources AS src
		MERGE (s:SourceGym {id: src.id})
		SET s.org = src.org, s.name = src.name
		MERGE (s)-[:LINKED_TO]->(m)
	`

	sourceProps := make([]map[string]any, len(sources))
	for i := range sources {
		sourceProps[i] = map[string]any{
			"id":   sources[i].ID(),
			"org":  string(sources[i].Org),
			"name": sources[i].Name,
		}
	}

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"master_id":   master.ID,
			"master_name": master.Name,
			"sources":     sourceProps,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		log.WithError(err).Error("Failed to project gym link into graph")
		return fmt.Errorf("failed to project gym link: %w", err)
	}

	log.Debug("Projected gym link into graph")
	return nil
}

// RemoveLink deletes the LINKED_TO edge between a source gym and its master
func (s *GymService) RemoveLink(ctx context.Context, masterGymID, sourceGymID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.GymService.RemoveLink")
	defer span.End()

	cypher := `
		MATCH (s:SourceGym {id: $source_id})-[r:LINKED_TO]->(m:MasterGym {id: $master_id})
		DELETE r
	`

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"source_id": sourceGymID,
			"master_id": masterGymID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to remove gym link from graph")
		return fmt.Errorf("failed to remove gym link: %w", err)
	}

	return nil
}
