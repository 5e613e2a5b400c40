package mastergym

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/models"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

var validate = validator.New()

// Store reads master gyms and their linked sources
type Store interface {
	Get(ctx context.Context, id string) (*models.MasterGym, error)
	List(ctx context.Context, offset, limit int) ([]models.MasterGym, error)
}

// SourceLister lists the source gyms linked to a master gym
type SourceLister interface {
	ListByMasterGym(ctx context.Context, masterGymID string) ([]models.SourceGym, error)
}

// Unlinker detaches a source gym from a master gym
type Unlinker interface {
	Unlink(ctx context.Context, masterGymID string, sourceGymID string) error
}

// Handler serves the master gym endpoints
type Handler struct {
	store    Store
	sources  SourceLister
	unlinker Unlinker
}

// NewHandler creates a master gym handler
func NewHandler(store Store, sources SourceLister, unlinker Unlinker) *Handler {
	return &Handler{
		store:    store,
		sources:  sources,
		unlinker: unlinker,
	}
}

// Register registers master gym routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/sources", h.ListSources)
	g.POST("/:id/unlink", h.Unlink)
}

// List pages through master gyms
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "mastergym_handler.List")
	defer span.End()

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	gyms, err := h.store.List(ctx, offset, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gyms)
}

// Get returns a master gym by id
func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "mastergym_handler.Get")
	defer span.End()

	gym, err := h.store.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, gym)
}

// ListSources returns the source gyms linked to a master gym
func (h *Handler) ListSources(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "mastergym_handler.ListSources")
	defer span.End()

	if _, err := h.store.Get(ctx, c.Param("id")); err != nil {
		return err
	}

	sources, err := h.sources.ListByMasterGym(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sources)
}

// UnlinkRequest identifies the source gym to detach
type UnlinkRequest struct {
	SourceGymID string `json:"source_gym_id" validate:"required"`
}

// Unlink detaches a source gym from a master gym
func (h *Handler) Unlink(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "mastergym_handler.Unlink")
	defer span.End()

	var req UnlinkRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.unlinker.Unlink(ctx, c.Param("id"), req.SourceGymID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "unlinked"})
}
