package mastergym

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/database"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

const columns = "id, name, city, country, address, website, created_at, updated_at"

// Repository handles master gym persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new master gym repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new master gym
func (r *Repository) Create(ctx context.Context, req *models.CreateMasterGymRequest) (*models.MasterGym, error) {
	ctx, span := tracing.StartSpan(ctx, "mastergym.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	gym := models.MasterGym{
		ID:        uuid.New().String(),
		Name:      req.Name,
		City:      req.City,
		Country:   req.Country,
		Address:   req.Address,
		Website:   req.Website,
		CreatedAt: now,
		UpdatedAt: now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("master_gyms")
	sb.Cols("id", "name", "city", "country", "address", "website", "created_at", "updated_at")
	sb.Values(gym.ID, gym.Name, gym.City, gym.Country, gym.Address, gym.Website, gym.CreatedAt, gym.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": gym.Name}).Error("Failed to create master gym")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create master gym")
	}

	return &gym, nil
}

// Get retrieves a master gym by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.MasterGym, error) {
	ctx, span := tracing.StartSpan(ctx, "mastergym.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("master_gyms")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var gym models.MasterGym
	if err := r.db.GetContext(ctx, &gym, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("master gym %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get master gym")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get master gym")
	}

	return &gym, nil
}

// List pages through master gyms ordered by name
func (r *Repository) List(ctx context.Context, offset, limit int) ([]models.MasterGym, error) {
	ctx, span := tracing.StartSpan(ctx, "mastergym.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("master_gyms")
	sb.OrderBy("name ASC", "id ASC")
	sb.Offset(offset)
	sb.Limit(limit)

	query, args := sb.Build()
	var gyms []models.MasterGym
	if err := r.db.SelectContext(ctx, &gyms, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list master gyms")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list master gyms")
	}

	return gyms, nil
}
