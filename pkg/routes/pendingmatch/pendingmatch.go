package pendingmatch

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appctx "github.com/jeremyodell/bjj-tournament-tracker/pkg/context"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/review"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// Handler serves the review queue endpoints
type Handler struct {
	queue *review.Queue
}

// NewHandler creates a pending match handler
func NewHandler(queue *review.Queue) *Handler {
	return &Handler{queue: queue}
}

// Register registers pending match routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("/:id/approve", h.Approve)
	g.POST("/:id/reject", h.Reject)
}

// List returns matches filtered by status (default pending)
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "pendingmatch_handler.List")
	defer span.End()

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	matches, err := h.queue.List(ctx, c.QueryParam("status"), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, matches)
}

// ApproveResponse is returned when a match is approved
type ApproveResponse struct {
	Status      string `json:"status"`
	MasterGymID string `json:"master_gym_id"`
}

// Approve confirms a match and links the gym pair
func (h *Handler) Approve(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "pendingmatch_handler.Approve")
	defer span.End()

	master, err := h.queue.Approve(ctx, c.Param("id"), appctx.GetUserID(ctx))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, ApproveResponse{
		Status:      "approved",
		MasterGymID: master.ID,
	})
}

// Reject marks a match as a false positive
func (h *Handler) Reject(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "pendingmatch_handler.Reject")
	defer span.End()

	if err := h.queue.Reject(ctx, c.Param("id"), appctx.GetUserID(ctx)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "rejected"})
}
