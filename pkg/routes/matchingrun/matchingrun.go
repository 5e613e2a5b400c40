package matchingrun

import (
	"net/http"
	"sync/atomic"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/jeremyodell/bjj-tournament-tracker/pkg/matching"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// Handler triggers matching passes on demand
type Handler struct {
	engine  *matching.Engine
	running atomic.Bool
}

// NewHandler creates a matching run handler
func NewHandler(engine *matching.Engine) *Handler {
	return &Handler{engine: engine}
}

// Register registers matching routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/run", h.Run)
}

// Run executes a full matching pass and returns its summary. Only one pass
// runs at a time; a second request while one is in flight gets a 409.
func (h *Handler) Run(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "matching_handler.Run")
	defer span.End()

	if !h.running.CompareAndSwap(false, true) {
		return httperror.NewHTTPError(http.StatusConflict, "a matching pass is already running")
	}
	defer h.running.Store(false)

	summary, err := h.engine.RunPass(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summary)
}
