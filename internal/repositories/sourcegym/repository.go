package sourcegym

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/database"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

const columns = "org, external_id, name, city, country, country_code, address, affiliation, master_gym_id, created_at, updated_at"

// Repository handles source gym persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new source gym repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert inserts or refreshes a source gym by its (org, external_id) key.
// The sync jobs call this on every harvest; master_gym_id is never touched.
func (r *Repository) Upsert(ctx context.Context, req *models.UpsertSourceGymRequest) (*models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	query := `
		INSERT INTO source_gyms (org, external_id, name, city, country, country_code, address, affiliation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (org, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			country_code = EXCLUDED.country_code,
			address = EXCLUDED.address,
			affiliation = EXCLUDED.affiliation,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + columns

	var gym models.SourceGym
	err := r.db.GetContext(ctx, &gym, query,
		req.Org, req.ExternalID, req.Name, req.City, req.Country, req.CountryCode, req.Address, req.Affiliation, now)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"org": req.Org, "external_id": req.ExternalID}).Error("Failed to upsert source gym")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert source gym")
	}

	return &gym, nil
}

// Get retrieves a source gym by its (org, external_id) key
func (r *Repository) Get(ctx context.Context, org models.Org, externalID string) (*models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("source_gyms")
	sb.Where(
		sb.Equal("org", string(org)),
		sb.Equal("external_id", externalID),
	)

	query, args := sb.Build()
	var gym models.SourceGym
	if err := r.db.GetContext(ctx, &gym, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("source gym %s not found", models.SourceGymID(org, externalID)))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get source gym")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get source gym")
	}

	return &gym, nil
}

// ListUnlinkedByOrg pages through an org's gyms that have no master gym yet,
// ordered by external_id. afterExternalID is the continuation token; pass ""
// for the first page.
func (r *Repository) ListUnlinkedByOrg(ctx context.Context, org models.Org, afterExternalID string, limit int) ([]models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.ListUnlinkedByOrg")
	defer span.End()

	if limit < 1 || limit > 1000 {
		limit = 200
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("source_gyms")
	where := []string{
		sb.Equal("org", string(org)),
		"master_gym_id IS NULL",
	}
	if afterExternalID != "" {
		where = append(where, sb.GreaterThan("external_id", afterExternalID))
	}
	sb.Where(where...)
	sb.OrderBy("external_id ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var gyms []models.SourceGym
	if err := r.db.SelectContext(ctx, &gyms, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list unlinked source gyms")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list source gyms")
	}

	return gyms, nil
}

// ListByOrgAndCountry pages through an org's gyms in a country, ordered by
// external_id. Used to load the candidate pool. A gym belongs to the country
// when either its country code or its long-form country name matches; many
// harvested records carry only one of the two.
func (r *Repository) ListByOrgAndCountry(ctx context.Context, org models.Org, countryCode string, countryName string, afterExternalID string, limit int) ([]models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.ListByOrgAndCountry")
	defer span.End()

	if limit < 1 || limit > 1000 {
		limit = 200
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("source_gyms")
	where := []string{
		sb.Equal("org", string(org)),
		sb.Or(
			sb.Equal("country_code", countryCode),
			sb.Equal("country", countryName),
		),
	}
	if afterExternalID != "" {
		where = append(where, sb.GreaterThan("external_id", afterExternalID))
	}
	sb.Where(where...)
	sb.OrderBy("external_id ASC")
	sb.Limit(limit)

	query, args := sb.Build()
	var gyms []models.SourceGym
	if err := r.db.SelectContext(ctx, &gyms, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list source gyms by country")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list source gyms")
	}

	return gyms, nil
}

// ListByMasterGym retrieves every source gym linked to a master gym
func (r *Repository) ListByMasterGym(ctx context.Context, masterGymID string) ([]models.SourceGym, error) {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.ListByMasterGym")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("source_gyms")
	sb.Where(sb.Equal("master_gym_id", masterGymID))
	sb.OrderBy("org ASC", "external_id ASC")

	query, args := sb.Build()
	var gyms []models.SourceGym
	if err := r.db.SelectContext(ctx, &gyms, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list source gyms by master gym")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list source gyms")
	}

	return gyms, nil
}

// SetMasterGym points a source gym at a master gym
func (r *Repository) SetMasterGym(ctx context.Context, org models.Org, externalID string, masterGymID string) error {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.SetMasterGym")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("source_gyms")
	sb.Set(
		sb.Assign("master_gym_id", masterGymID),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("org", string(org)),
		sb.Equal("external_id", externalID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"master_gym_id": masterGymID}).Error("Failed to set master gym")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to link source gym")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("source gym %s not found", models.SourceGymID(org, externalID)))
	}

	return nil
}

// ClearMasterGym detaches a source gym from its master gym
func (r *Repository) ClearMasterGym(ctx context.Context, org models.Org, externalID string) error {
	ctx, span := tracing.StartSpan(ctx, "sourcegym.Repository.ClearMasterGym")
	defer span.End()

	now := time.Now().UTC()
	query := `
		UPDATE source_gyms
		SET master_gym_id = NULL, updated_at = $1
		WHERE org = $2 AND external_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, now, org, externalID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to clear master gym")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to unlink source gym")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("source gym %s not found", models.SourceGymID(org, externalID)))
	}

	return nil
}
