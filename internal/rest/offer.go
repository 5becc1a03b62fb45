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
	OfferHandler struct {
		validate     *validator.Validate
		offerService OfferService
		timeout      time.Duration
	}

	OfferService interface {
		GetCartOffer(ctx context.Context, req domain.CartOfferRequest) (domain.CartOffer, error)
		RecordOfferPurchaseOutcome(ctx context.Context, req domain.OfferPurchaseOutcomeRequest) (domain.OfferOutcomeResult, error)
	}
)

func NewOfferHandler(svc OfferService, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		validate:     validator.New(),
		offerService: svc,
		timeout:      timeoutOrDefault(timeout),
	}
}

// POST /api/v1/offers/cart
func (h *OfferHandler) CartOffer(c echo.Context) error {
	var req domain.CartOfferRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	offer, err := h.offerService.GetCartOffer(ctx, req)
	if err != nil {
		logger.Error("Failed to decide cart offer", "error", err, "offer_context_key", req.OfferContextKey)
		return c.JSON(errorStatus(err), ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, offer)
}

// POST /api/v1/offers/outcomes/purchase
func (h *OfferHandler) Purchase(c echo.Context) error {
	var req domain.OfferPurchaseOutcomeRequest
	if err := bindAndValidate(c, h.validate, &req); err != nil {
		logger.Warn("Rejected offer outcome", "error", err)
		return c.JSON(outcomeStatus(domain.ReasonInvalidRequest), domain.OfferOutcomeResult{Reason: domain.ReasonInvalidRequest})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	res, err := h.offerService.RecordOfferPurchaseOutcome(ctx, req)
	if err != nil {
		logger.Error("Failed to record offer outcome", "error", err, "offer_impression_id", req.OfferImpressionID)
		if res.Reason == "" {
			res = domain.OfferOutcomeResult{Reason: domain.ReasonInternalError}
		}
	}
	return c.JSON(outcomeStatus(res.Reason), res)
}
