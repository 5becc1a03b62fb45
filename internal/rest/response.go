package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smartPricing/business/bandit"
	"smartPricing/business/report"
	"smartPricing/domain"
	"smartPricing/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const defaultTimeout = 10 * time.Second

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// bindAndValidate binds the request and runs its validate tags.
func bindAndValidate(c echo.Context, v *validator.Validate, req any) error {
	if err := c.Bind(req); err != nil {
		logger.Warn("Invalid request body", "error", err, "path", c.Path())
		return err
	}
	if err := v.Struct(req); err != nil {
		logger.Warn("Request validation failed", "error", err, "path", c.Path())
		return err
	}
	return nil
}

// errorStatus maps service errors onto HTTP codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, bandit.ErrInvalidRequest), errors.Is(err, report.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// outcomeStatus answers 503 when the outcome could not reach the store and 400 for a malformed body.
func outcomeStatus(reason string) int {
	switch reason {
	case domain.ReasonInternalError:
		return http.StatusServiceUnavailable
	case domain.ReasonInvalidRequest:
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func timeoutOrDefault(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return defaultTimeout
	}
	return timeout
}
