package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/jeremyodell/bjj-tournament-tracker/pkg/context"
	"github.com/jeremyodell/bjj-tournament-tracker/pkg/tracing"
)

// ErrorResponse is the JSON body for every error the API returns. The
// request and trace ids let an admin quote a failing review action back to
// the logs.
type ErrorResponse struct {
	Message   string         `json:"message"`
	RequestID string         `json:"request_id"`
	TraceID   string         `json:"trace_id"`
	Meta      map[string]any `json:"meta"`
}

// Error translates errors into JSON responses. httperror status codes win
// over echo's; anything unrecognized becomes a 500 with a generic message so
// storage details never leak to the client.
func Error(logger ectologger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		ctx := c.Request().Context()
		logger.WithContext(ctx).WithError(err).Error("api is returning an error")
		if c.Response().Committed {
			return
		}

		resp := ErrorResponse{
			Message:   "Internal Server Error",
			RequestID: appctx.GetRequestID(ctx),
			TraceID:   tracing.GetTraceID(ctx),
			Meta:      map[string]any{},
		}
		code := http.StatusInternalServerError

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if msg, ok := he.Message.(string); ok {
				resp.Message = msg
			}
		}

		if httperror.IsHTTPError(err) {
			httperr := httperror.ToHTTPError(err)
			code = httperror.GetStatusCode(err)
			resp.Message = httperr.Error()
			resp.Meta = httperr.Meta
		}

		_ = c.JSON(code, resp)
	}
}
