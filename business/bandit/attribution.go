package bandit

import (
	"context"
	"fmt"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

func (s *BanditService) RecordAddToCartOutcome(
	ctx context.Context,
	req domain.AddToCartOutcomeRequest,
) (domain.OutcomeResult, error) {
	return s.recordPriceOutcome(ctx, domain.OutcomeAddToCart, req.InstallationID, req.ImpressionID, req.ProductID, 0)
}

func (s *BanditService) RecordBeginCheckoutOutcome(
	ctx context.Context,
	req domain.BeginCheckoutOutcomeRequest,
) (domain.OutcomeResult, error) {
	return s.recordPriceOutcome(ctx, domain.OutcomeBeginCheckout, req.InstallationID, req.ImpressionID, "", 0)
}

// RecordPurchaseOutcome credits a purchase to the quoted variant. Revenue is taken from
// the quoted price; valueCents and itemsCount are only carried on the event stream.
func (s *BanditService) RecordPurchaseOutcome(
	ctx context.Context,
	req domain.PurchaseOutcomeRequest,
) (domain.OutcomeResult, error) {
	var value int64
	if req.ValueCents != nil {
		value = *req.ValueCents
	}
	return s.recordPriceOutcome(ctx, domain.OutcomePurchase, req.InstallationID, req.ImpressionID, "", value)
}

func (s *BanditService) recordPriceOutcome(
	ctx context.Context,
	outcome domain.Outcome,
	installationID, impressionID, productID string,
	valueCents int64,
) (domain.OutcomeResult, error) {
	if err := ctx.Err(); err != nil {
		return internalFailure(), fmt.Errorf("context error: %w", err)
	}

	cfg := s.loadConfig(ctx, domain.BanditPrice)
	tid := TraceIDFromContext(ctx)

	imp, found, err := s.impressionRepo.GetPriceImpression(ctx, impressionID)
	if err != nil {
		return s.priceStoreFailure(ctx, outcome, impressionID, fmt.Errorf("load price impression: %w", err))
	}

	if reason := priceOutcomeRejection(imp, found, outcome, installationID, productID, s.now().UnixMilli(), cfg); reason != "" {
		return s.rejectPrice(ctx, outcome, impressionID, reason), nil
	}

	won, err := s.impressionRepo.MarkPriceAttributed(ctx, impressionID, outcome)
	if err != nil {
		return s.priceStoreFailure(ctx, outcome, impressionID, fmt.Errorf("mark attributed: %w", err))
	}
	if !won {
		return s.rejectPrice(ctx, outcome, impressionID, domain.AlreadyAttributedReason(outcome)), nil
	}

	nowMs := s.now().UnixMilli()
	delta := domain.StatsDelta{AtMs: nowMs}
	switch outcome {
	case domain.OutcomeAddToCart:
		delta.SuccessAddToCart = 1
		delta.Successes = 1
	case domain.OutcomeBeginCheckout:
		delta.SuccessBeginCheckout = 1
	case domain.OutcomePurchase:
		delta.SuccessPurchase = 1
	}
	if err := s.statsRepo.IncrementPriceStats(ctx, imp.ContextKey, imp.VariantID, delta); err != nil {
		return s.priceStoreFailure(ctx, outcome, impressionID, fmt.Errorf("increment price stats: %w", err))
	}

	if outcome == domain.OutcomePurchase {
		day := dayKeyMs(imp.ShownAtMs, cfg.Location)
		if err := s.dailyRepo.IncrementDailyStat(ctx, day, purchasesField(imp.VariantID), 1); err != nil {
			return s.priceStoreFailure(ctx, outcome, impressionID, fmt.Errorf("increment daily purchases: %w", err))
		}
		if imp.PriceCents > 0 {
			if err := s.dailyRepo.IncrementDailyStat(ctx, day, revenueField(imp.VariantID), imp.PriceCents); err != nil {
				return s.priceStoreFailure(ctx, outcome, impressionID, fmt.Errorf("increment daily revenue: %w", err))
			}
		}
	}

	logger.Debug("price_outcome",
		"trace_id", tid,
		"outcome", outcome,
		"impression_id", impressionID,
		"context_key", imp.ContextKey,
		"variant", imp.VariantID,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditPrice, string(outcome), "success").Inc()

	s.publish(ctx, domain.DecisionEvent{
		Type:           domain.EventOutcomeRecorded,
		Bandit:         domain.BanditPrice,
		ImpressionID:   impressionID,
		InstallationID: installationID,
		ContextKey:     imp.ContextKey,
		VariantID:      imp.VariantID,
		Policy:         imp.Policy,
		Outcome:        outcome,
		ValueCents:     valueCents,
	})

	return domain.OutcomeResult{
		Success:    true,
		ContextKey: imp.ContextKey,
		VariantID:  imp.VariantID,
	}, nil
}

// priceOutcomeRejection applies the guards in order and returns the first failing reason.
func priceOutcomeRejection(
	imp domain.PriceImpression,
	found bool,
	outcome domain.Outcome,
	installationID, productID string,
	nowMs int64,
	cfg Config,
) string {
	switch {
	case !found:
		return domain.ReasonImpressionNotFound
	case imp.InstallationID != installationID:
		return domain.ReasonInstallationMismatch
	case outcome == domain.OutcomeAddToCart && imp.ProductID != productID:
		return domain.ReasonProductMismatch
	case imp.IsAttributed(outcome):
		return domain.AlreadyAttributedReason(outcome)
	}

	if outcome == domain.OutcomePurchase {
		deadline := imp.PurchaseExpiresAtMs
		if deadline == 0 {
			deadline = imp.ShownAtMs + cfg.PurchaseTTL.Milliseconds()
		}
		if nowMs > deadline {
			return domain.ReasonPurchaseWindowExpired
		}
		return ""
	}

	if nowMs > imp.ExpiresAtMs {
		return domain.ReasonImpressionExpired
	}
	return ""
}

func (s *BanditService) rejectPrice(ctx context.Context, outcome domain.Outcome, impressionID, reason string) domain.OutcomeResult {
	logger.Debug("price_outcome_rejected",
		"trace_id", TraceIDFromContext(ctx),
		"outcome", outcome,
		"impression_id", impressionID,
		"reason", reason,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditPrice, string(outcome), reason).Inc()
	return domain.OutcomeResult{Success: false, Reason: reason}
}

func (s *BanditService) priceStoreFailure(ctx context.Context, outcome domain.Outcome, impressionID string, err error) (domain.OutcomeResult, error) {
	logger.Error("price_outcome_failed",
		"trace_id", TraceIDFromContext(ctx),
		"outcome", outcome,
		"impression_id", impressionID,
		"error", err,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditPrice, string(outcome), domain.ReasonInternalError).Inc()
	return internalFailure(), err
}

func internalFailure() domain.OutcomeResult {
	return domain.OutcomeResult{Success: false, Reason: domain.ReasonInternalError}
}
