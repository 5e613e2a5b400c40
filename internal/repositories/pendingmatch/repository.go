package pendingmatch

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

const columns = "id, source_gym1_id, source_gym1_name, source_gym2_id, source_gym2_name, confidence, signals, status, reviewed_at, reviewed_by, created_at, updated_at"

// Repository handles pending match persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new pending match repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new pending match. A partial unique index on the
// unordered gym pair guards against concurrent duplicate inserts, so the
// insert carries ON CONFLICT DO NOTHING and returns (nil, nil) when another
// pending row for the pair already exists.
func (r *Repository) Create(ctx context.Context, req *models.CreatePendingMatchRequest) (*models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "pendingmatch.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	match := models.PendingMatch{
		ID:             uuid.New().String(),
		SourceGym1ID:   req.SourceGym1ID,
		SourceGym1Name: req.SourceGym1Name,
		SourceGym2ID:   req.SourceGym2ID,
		SourceGym2Name: req.SourceGym2Name,
		Confidence:     req.Confidence,
		Signals:        database.JSONB[models.MatchSignals]{Data: req.Signals},
		Status:         models.MatchStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("pending_matches")
	sb.Cols("id", "source_gym1_id", "source_gym1_name", "source_gym2_id", "source_gym2_name", "confidence", "signals", "status", "created_at", "updated_at")
	sb.Values(match.ID, match.SourceGym1ID, match.SourceGym1Name, match.SourceGym2ID, match.SourceGym2Name,
		match.Confidence, match.Signals, match.Status, match.CreatedAt, match.UpdatedAt)

	query, args := sb.Build()
	query += " ON CONFLICT DO NOTHING"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"gym1": match.SourceGym1ID, "gym2": match.SourceGym2ID}).Error("Failed to create pending match")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create pending match")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	return &match, nil
}

// Get retrieves a pending match by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "pendingmatch.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("pending_matches")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var match models.PendingMatch
	if err := r.db.GetContext(ctx, &match, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("pending match %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get pending match")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get pending match")
	}

	return &match, nil
}

// GetPendingByPair finds an unresolved match between two gyms regardless of
// which side each gym was recorded on. Returns (nil, nil) when none exists.
func (r *Repository) GetPendingByPair(ctx context.Context, gymA, gymB string) (*models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "pendingmatch.Repository.GetPendingByPair")
	defer span.End()

	query := `
		SELECT ` + columns + `
		FROM pending_matches
		WHERE status = $1
		AND ((source_gym1_id = $2 AND source_gym2_id = $3) OR (source_gym1_id = $3 AND source_gym2_id = $2))
		LIMIT 1
	`

	var match models.PendingMatch
	if err := r.db.GetContext(ctx, &match, query, models.MatchStatusPending, gymA, gymB); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get pending match by pair")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get pending match")
	}

	return &match, nil
}

// ListByStatus retrieves matches in a given status, highest confidence first
func (r *Repository) ListByStatus(ctx context.Context, status models.MatchStatus, limit int) ([]models.PendingMatch, error) {
	ctx, span := tracing.StartSpan(ctx, "pendingmatch.Repository.ListByStatus")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("pending_matches")
	sb.Where(sb.Equal("status", string(status)))
	sb.OrderBy("confidence DESC", "created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var matches []models.PendingMatch
	if err := r.db.SelectContext(ctx, &matches, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pending matches")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list pending matches")
	}

	return matches, nil
}

// MarkResolved moves a match from pending to a terminal status and stamps
// the review. The WHERE status = 'pending' guard makes the first caller win;
// a zero row count means the row was already resolved (or never existed) and
// the caller must not act on it.
func (r *Repository) MarkResolved(ctx context.Context, id string, status models.MatchStatus, reviewedBy string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "pendingmatch.Repository.MarkResolved")
	defer span.End()

	now := time.Now().UTC()
	query := `
		UPDATE pending_matches
		SET status = $1, reviewed_at = $2, reviewed_by = $3, updated_at = $2
		WHERE id = $4 AND status = $5
	`

	result, err := r.db.ExecContext(ctx, query, status, now, reviewedBy, id, models.MatchStatusPending)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"match_id": id}).Error("Failed to resolve pending match")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve pending match")
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
