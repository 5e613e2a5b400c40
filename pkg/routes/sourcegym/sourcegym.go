package sourcegym

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

var validate = validator.New()

// Store is the slice of the source gym repository the handler needs
type Store interface {
	Upsert(ctx context.Context, req *models.UpsertSourceGymRequest) (*models.SourceGym, error)
	Get(ctx context.Context, org models.Org, externalID string) (*models.SourceGym, error)
}

// Handler serves the source gym ingestion endpoints used by the org sync jobs
type Handler struct {
	store Store
}

// NewHandler creates a source gym handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register registers source gym routes
func (h *Handler) Register(g *echo.Group) {
	g.PUT("", h.Upsert)
	g.GET("/:org/:external_id", h.Get)
}

// Upsert creates or refreshes a source gym record
func (h *Handler) Upsert(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "sourcegym_handler.Upsert")
	defer span.End()

	var req models.UpsertSourceGymRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	org, err := models.ParseOrg(string(req.Org))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	req.Org = org

	gym, err := h.store.Upsert(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gym)
}

// Get returns a source gym by its (org, external_id) key
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "sourcegym_handler.Get")
	defer span.End()

	org, err := models.ParseOrg(c.Param("org"))
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	gym, err := h.store.Get(ctx, org, c.Param("external_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gym)
}
