package middleware

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	appctx "github.com/jeremyodell/bjj-tournament-tracker/pkg/context"
)

// Logger emits one structured log line per request after the handler chain
// completes. Server errors log at error level so they surface without log
// filtering; everything else logs at info.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			entry := logger.WithContext(req.Context()).WithFields(map[string]interface{}{
				"request_id": appctx.GetRequestID(req.Context()),
				"method":     req.Method,
				"route":      c.Path(),
				"uri":        req.RequestURI,
				"status":     res.Status,
				"remote_ip":  c.RealIP(),
				"user_agent": req.UserAgent(),
				"latency_ms": time.Since(start).Milliseconds(),
				"bytes_out":  res.Size,
			})

			if res.Status >= http.StatusInternalServerError {
				entry.Error("Request failed")
			} else {
				entry.Info("Request")
			}

			return nil
		}
	}
}
