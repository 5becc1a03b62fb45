package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"smartPricing/pkg/logger"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Message string `json:"message"`
}

// ErrorHandler renders errors that escaped the handlers as {"message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			message = fmt.Sprint(he.Message)
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error", "error", err, "path", c.Path(), "trace_id", c.Response().Header().Get(echo.HeaderXRequestID))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, errorBody{Message: message})
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", "error", writeErr)
	}
}
