package rest

import (
	"context"
	"net/http"
	"time"

	"smartPricing/domain"
	"smartPricing/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PricingHandler struct {
		validate       *validator.Validate
		pricingService PricingService
		timeout        time.Duration
	}

	PricingService interface {
		GetPriceQuote(ctx context.Context, req domain.PriceQuoteRequest) (domain.PriceQuote, error)
		RecordAddToCartOutcome(ctx context.Context, req domain.AddToCartOutcomeRequest) (domain.OutcomeResult, error)
		RecordBeginCheckoutOutcome(ctx context.Context, req domain.BeginCheckoutOutcomeRequest) (domain.OutcomeResult, error)
		RecordPurchaseOutcome(ctx context.Context, req domain.PurchaseOutcomeRequest) (domain.OutcomeResult, error)
	}
)

func NewPricingHandler(svc PricingService, timeout time.Duration) *PricingHandler {
	return &PricingHandler{
		validate:       validator.New(),
		pricingService: svc,
		timeout:        timeoutOrDefault(timeout),
	}
}

// POST /api/v1/pricing/quote
func (h *PricingHandler) Quote(c echo.Context) error {
	var req domain.PriceQuoteRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	quote, err := h.pricingService.GetPriceQuote(ctx, req)
	if err != nil {
		logger.Error("Failed to quote price", "error", err, "context_key", req.ContextKey)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, quote)
}

// POST /api/v1/pricing/outcomes/add-to-cart
func (h *PricingHandler) AddToCart(c echo.Context) error {
	var req domain.AddToCartOutcomeRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return h.rejectOutcome(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.pricingService.RecordAddToCartOutcome(ctx, req)
	return h.writeOutcome(c, res, err)
}

// POST /api/v1/pricing/outcomes/begin-checkout
func (h *PricingHandler) BeginCheckout(c echo.Context) error {
	var req domain.BeginCheckoutOutcomeRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return h.rejectOutcome(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.pricingService.RecordBeginCheckoutOutcome(ctx, req)
	return h.writeOutcome(c, res, err)
}

// POST /api/v1/pricing/outcomes/purchase
func (h *PricingHandler) Purchase(c echo.Context) error {
	var req domain.PurchaseOutcomeRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return h.rejectOutcome(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.pricingService.RecordPurchaseOutcome(ctx, req)
	return h.writeOutcome(c, res, err)
}

func (h *PricingHandler) rejectOutcome(c echo.Context, err error) error {
	logger.Warn("Rejected price outcome", "error", err, "path", c.Path())
	return c.JSON(outcomeStatus(domain.ReasonInvalidRequest), domain.OutcomeResult{Reason: domain.ReasonInvalidRequest})
}

func (h *PricingHandler) writeOutcome(c echo.Context, res domain.OutcomeResult, err error) error {
	if err != nil {
		logger.Error("Failed to record price outcome", "error", err, "path", c.Path())
		if res.Reason == "" {
			res = domain.OutcomeResult{Reason: domain.ReasonInternalError}
		}
	}
	return c.JSON(outcomeStatus(res.Reason), res)
}
