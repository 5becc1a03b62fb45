package middleware

import (
	"smartPricing/business/bandit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Trace tags every request with a trace id, reusing X-Request-ID when the caller
// sent one, and echoes it back on the response.
func Trace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := req.Header.Get(echo.HeaderXRequestID)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, traceID)
			c.SetRequest(req.WithContext(bandit.WithTraceID(req.Context(), traceID)))

			return next(c)
		}
	}
}
