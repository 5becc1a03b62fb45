package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"smartPricing/domain"
	"smartPricing/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	ReportHandler struct {
		reportService ReportService
		timeout       time.Duration
	}

	ReportService interface {
		GetSalesSummary(ctx context.Context, req domain.SummaryRequest) (domain.SalesSummary, error)
		GetOfferSummary(ctx context.Context, req domain.SummaryRequest) (domain.OfferSummary, error)
	}
)

func NewReportHandler(svc ReportService, timeout time.Duration) *ReportHandler {
	return &ReportHandler{
		reportService: svc,
		timeout:       timeoutOrDefault(timeout),
	}
}

// GET /api/v1/reports/sales?start_ms=&end_ms=
func (h *ReportHandler) Sales(c echo.Context) error {
	req, err := summaryRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.reportService.GetSalesSummary(ctx, req)
	if err != nil {
		logger.Error("Failed to build sales summary", "error", err)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

// GET /api/v1/reports/offers?start_ms=&end_ms=
func (h *ReportHandler) Offers(c echo.Context) error {
	req, err := summaryRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.reportService.GetOfferSummary(ctx, req)
	if err != nil {
		logger.Error("Failed to build offer summary", "error", err)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}

func summaryRequest(c echo.Context) (domain.SummaryRequest, error) {
	var req domain.SummaryRequest
	var err error
	if req.StartMs, err = optionalInt64(c, "start_ms"); err != nil {
		return req, err
	}
	if req.EndMs, err = optionalInt64(c, "end_ms"); err != nil {
		return req, err
	}
	return req, nil
}

func optionalInt64(c echo.Context, name string) (*int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &v, nil
}
