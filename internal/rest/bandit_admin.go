package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var simulateShowsRule = fmt.Sprintf("gte=0,lte=%d", bandit.MaxSimShowsPerCell)

type (
	BanditAdminHandler struct {
		validate     *validator.Validate
		adminService BanditAdminService
		timeout      time.Duration
	}

	BanditAdminService interface {
		InspectStats(ctx context.Context, bandit, contextKey string) (domain.BanditStatsView, error)
		GetConfig(ctx context.Context, bandit string) (domain.BanditConfig, error)
		UpdateConfig(ctx context.Context, cfg domain.BanditConfig) error
		Simulate(ctx context.Context, showsPerCell int) (domain.SimulationSummary, error)
	}
)

func NewBanditAdminHandler(svc BanditAdminService, timeout time.Duration) *BanditAdminHandler {
	return &BanditAdminHandler{
		validate:     validator.New(),
		adminService: svc,
		timeout:      timeoutOrDefault(timeout),
	}
}

// GET /api/v1/admin/bandit/stats?bandit=price&context_key=SP|mid|day_14|cart0
func (h *BanditAdminHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	view, err := h.adminService.InspectStats(ctx, c.QueryParam("bandit"), c.QueryParam("context_key"))
	if err != nil {
		logger.Error("Failed to inspect bandit stats", "error", err)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(view))
}

// GET /api/v1/admin/bandit/config?bandit=offer
func (h *BanditAdminHandler) GetConfig(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	cfg, err := h.adminService.GetConfig(ctx, c.QueryParam("bandit"))
	if err != nil {
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// PUT /api/v1/admin/bandit/config
// body: { "bandit": "offer", "epsilon": 0.2, "lambda": 0.4 }
func (h *BanditAdminHandler) UpdateConfig(c echo.Context) error {
	var body domain.BanditConfig
	if err := bindAndValidate(c, h.validate, &body); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	if err := h.adminService.UpdateConfig(ctx, body); err != nil {
		logger.Error("Failed to update bandit config", "error", err, "bandit", body.Bandit)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	cfg, err := h.adminService.GetConfig(ctx, body.Bandit)
	if err != nil {
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(cfg))
}

// POST /api/v1/admin/bandit/simulate?shows=100
func (h *BanditAdminHandler) Simulate(c echo.Context) error {
	shows := 0
	if raw := c.QueryParam("shows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid shows"})
		}
		if err := h.validate.Var(n, simulateShowsRule); err != nil {
			return c.JSON(http.StatusBadRequest, ResponseError{Message: fmt.Sprintf("shows must be between 0 and %d", bandit.MaxSimShowsPerCell)})
		}
		shows = n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	summary, err := h.adminService.Simulate(ctx, shows)
	if err != nil {
		logger.Error("Failed to simulate bandit data", "error", err)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(summary))
}
