package bandit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// OfferVariants in tie-break order.
var OfferVariants = []string{domain.OfferO0, domain.OfferO5, domain.OfferO10}

var discountRates = map[string]decimal.Decimal{
	domain.OfferO0:  decimal.Zero,
	domain.OfferO5:  decimal.RequireFromString("0.05"),
	domain.OfferO10: decimal.RequireFromString("0.10"),
}

// DiscountRate returns the discount fraction of an offer variant (0.05 for O5).
func DiscountRate(variantID string) float64 {
	return discountRates[variantID].InexactFloat64()
}

// ApplyDiscount returns the rounded discount and the resulting cart total.
func ApplyDiscount(cartTotalCents int64, variantID string) (int64, int64) {
	discount := decimal.NewFromInt(cartTotalCents).Mul(discountRates[variantID]).Round(0).IntPart()
	final := cartTotalCents - discount
	if final < 0 {
		final = 0
	}
	return discount, final
}

// GetCartOffer scores the cart, gates the eligible tiers, picks one with the offer
// bandit and records the offer impression.
func (s *BanditService) GetCartOffer(
	ctx context.Context,
	req domain.CartOfferRequest,
) (domain.CartOffer, error) {
	if err := ctx.Err(); err != nil {
		return domain.CartOffer{}, fmt.Errorf("context error: %w", err)
	}
	if req.InstallationID == "" || req.OfferContextKey == "" {
		return domain.CartOffer{}, fmt.Errorf("%w: installationId and offerContextKey are required", ErrInvalidRequest)
	}
	if req.CartTotalCents < 0 {
		return domain.CartOffer{}, fmt.Errorf("%w: cartTotalCents must not be negative", ErrInvalidRequest)
	}

	cfg := s.loadConfig(ctx, domain.BanditOffer)
	features := req.Features()

	score, bucket := ComputePropensity(features)
	gate, eligible := ApplyGating(score)
	timing := ApplyTiming(score, features.TimeInCartSec, features.NumCartOpens)
	key := OfferContextKey(req.OfferContextKey, bucket)

	var variant, policy string
	if gate == domain.GateNoOffer {
		variant, policy = domain.OfferO0, domain.PolicyNoOffer
	} else {
		stats, err := s.statsRepo.GetOfferStats(ctx, key)
		if err != nil {
			return domain.CartOffer{}, fmt.Errorf("load offer stats: %w", err)
		}
		variant, policy = s.chooseOfferVariant(cfg, eligible, stats)
	}

	discount, final := ApplyDiscount(req.CartTotalCents, variant)
	rate := DiscountRate(variant)

	now := s.now()
	nowMs := now.UnixMilli()
	imp := domain.OfferImpression{
		OfferImpressionID:   uuid.NewString(),
		InstallationID:      req.InstallationID,
		OfferContextKey:     key,
		VariantID:           variant,
		CartTotalCents:      req.CartTotalCents,
		DiscountPercent:     rate,
		DiscountCents:       discount,
		FinalTotalCents:     final,
		Policy:              policy,
		PropensityScore:     score,
		PropBucket:          bucket,
		GateDecision:        gate,
		EligibleOffers:      eligible,
		TimingDecision:      timing,
		ShownAtMs:           nowMs,
		ExpiresAtMs:         nowMs + cfg.OfferImpressionTTL.Milliseconds(),
		PurchaseExpiresAtMs: nowMs + cfg.OfferPurchaseTTL.Milliseconds(),
	}

	if err := s.impressionRepo.CreateOfferImpression(ctx, imp); err != nil {
		return domain.CartOffer{}, fmt.Errorf("save offer impression: %w", err)
	}
	if err := s.statsRepo.IncrementOfferStats(ctx, key, variant, domain.StatsDelta{Shows: 1, AtMs: nowMs}); err != nil {
		return domain.CartOffer{}, fmt.Errorf("increment offer shows: %w", err)
	}
	if err := s.dailyRepo.IncrementDailyStat(ctx, DayKey(now, cfg.Location), offerShowsField(variant), 1); err != nil {
		return domain.CartOffer{}, fmt.Errorf("increment daily offer shows: %w", err)
	}

	logger.Debug("cart_offer",
		"trace_id", TraceIDFromContext(ctx),
		"installation_id", req.InstallationID,
		"offer_context_key", key,
		"score", score,
		"gate", gate,
		"timing", timing,
		"variant", variant,
		"policy", policy,
	)
	BanditDecisionsTotal.WithLabelValues(domain.BanditOffer, variant, policy).Inc()

	s.publish(ctx, domain.DecisionEvent{
		Type:           domain.EventOfferShown,
		Bandit:         domain.BanditOffer,
		ImpressionID:   imp.OfferImpressionID,
		InstallationID: imp.InstallationID,
		ContextKey:     key,
		VariantID:      variant,
		Policy:         policy,
		ValueCents:     discount,
		OccurredAt:     now,
	})

	out := domain.CartOffer{
		OfferImpressionID: imp.OfferImpressionID,
		VariantID:         variant,
		DiscountPercent:   rate,
		DiscountCents:     discount,
		FinalTotalCents:   final,
		Policy:            policy,
		TimingDecision:    timing,
		PropBucket:        bucket,
	}
	if timing == domain.TimingDelayed {
		out.RetryAfterSec = int(cfg.DelayedOfferRetry.Seconds())
	}
	return out, nil
}

// chooseOfferVariant picks among the eligible tiers. Thompson samples are penalised by
// lambda times the discount rate so bigger discounts have to earn their cost.
func (s *BanditService) chooseOfferVariant(
	cfg Config,
	eligible []string,
	stats map[string]domain.OfferVariantStats,
) (string, string) {
	if s.sampler.Uniform() < cfg.OfferEpsilon {
		return eligible[s.sampler.Intn(len(eligible))], domain.PolicyExplore
	}

	var total int64
	for _, v := range eligible {
		total += stats[v].Shows
	}
	if total < cfg.OfferMinBootstrap {
		return leastShown(eligible, func(v string) int64 { return stats[v].Shows }), domain.PolicyBootstrap
	}

	chosen := eligible[0]
	best := 0.0
	for i, v := range eligible {
		st := stats[v]
		sample := s.sampler.Beta(float64(1+st.SuccessPurchase), float64(1+st.Shows-st.SuccessPurchase))
		score := sample - cfg.OfferLambda*DiscountRate(v)
		if i == 0 || score > best {
			chosen, best = v, score
		}
	}
	return chosen, domain.PolicyThompson
}

// RecordOfferPurchaseOutcome credits a purchase to a shown offer exactly once.
func (s *BanditService) RecordOfferPurchaseOutcome(
	ctx context.Context,
	req domain.OfferPurchaseOutcomeRequest,
) (domain.OfferOutcomeResult, error) {
	if err := ctx.Err(); err != nil {
		return offerInternalFailure(), fmt.Errorf("context error: %w", err)
	}

	cfg := s.loadConfig(ctx, domain.BanditOffer)

	imp, found, err := s.impressionRepo.GetOfferImpression(ctx, req.OfferImpressionID)
	if err != nil {
		return s.offerStoreFailure(ctx, req.OfferImpressionID, fmt.Errorf("load offer impression: %w", err))
	}

	nowMs := s.now().UnixMilli()
	if reason := offerOutcomeRejection(imp, found, req.InstallationID, nowMs, cfg); reason != "" {
		return s.rejectOffer(ctx, req.OfferImpressionID, reason), nil
	}

	var orderValue int64
	if req.ValueCents != nil {
		orderValue = *req.ValueCents
	}
	net := orderValue - imp.DiscountCents
	if net < 0 {
		net = 0
	}

	won, err := s.impressionRepo.MarkOfferPurchased(ctx, req.OfferImpressionID, orderValue, net, nowMs)
	if err != nil {
		return s.offerStoreFailure(ctx, req.OfferImpressionID, fmt.Errorf("mark offer purchased: %w", err))
	}
	if !won {
		return s.rejectOffer(ctx, req.OfferImpressionID, domain.AlreadyAttributedReason(domain.OutcomePurchase)), nil
	}

	delta := domain.StatsDelta{SuccessPurchase: 1, Successes: 1, NetRevenueCents: net, AtMs: nowMs}
	if err := s.statsRepo.IncrementOfferStats(ctx, imp.OfferContextKey, imp.VariantID, delta); err != nil {
		return s.offerStoreFailure(ctx, req.OfferImpressionID, fmt.Errorf("increment offer stats: %w", err))
	}

	day := dayKeyMs(imp.ShownAtMs, cfg.Location)
	fields := map[string]int64{offerPurchasesField(imp.VariantID): 1}
	if orderValue > 0 {
		fields[offerRevenueField(imp.VariantID)] = orderValue
		fields[offerNetRevenueField(imp.VariantID)] = net
	}
	for field, amount := range fields {
		if err := s.dailyRepo.IncrementDailyStat(ctx, day, field, amount); err != nil {
			return s.offerStoreFailure(ctx, req.OfferImpressionID, fmt.Errorf("increment daily %s: %w", field, err))
		}
	}

	logger.Debug("offer_outcome",
		"trace_id", TraceIDFromContext(ctx),
		"offer_impression_id", req.OfferImpressionID,
		"variant", imp.VariantID,
		"order_value_cents", orderValue,
		"net_revenue_cents", net,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditOffer, string(domain.OutcomePurchase), "success").Inc()

	s.publish(ctx, domain.DecisionEvent{
		Type:           domain.EventOutcomeRecorded,
		Bandit:         domain.BanditOffer,
		ImpressionID:   req.OfferImpressionID,
		InstallationID: req.InstallationID,
		ContextKey:     imp.OfferContextKey,
		VariantID:      imp.VariantID,
		Policy:         imp.Policy,
		Outcome:        domain.OutcomePurchase,
		ValueCents:     net,
	})

	return domain.OfferOutcomeResult{
		Success:         true,
		VariantID:       imp.VariantID,
		NetRevenueCents: net,
	}, nil
}

func offerOutcomeRejection(imp domain.OfferImpression, found bool, installationID string, nowMs int64, cfg Config) string {
	switch {
	case !found:
		return domain.ReasonOfferImpressionNotFound
	case imp.InstallationID != installationID:
		return domain.ReasonInstallationMismatch
	case imp.AttributedPurchase:
		return domain.AlreadyAttributedReason(domain.OutcomePurchase)
	}

	deadline := imp.PurchaseExpiresAtMs
	if deadline == 0 {
		deadline = imp.ShownAtMs + cfg.OfferPurchaseTTL.Milliseconds()
	}
	if nowMs > deadline {
		return domain.ReasonOfferPurchaseExpired
	}
	return ""
}

func (s *BanditService) rejectOffer(ctx context.Context, offerImpressionID, reason string) domain.OfferOutcomeResult {
	logger.Debug("offer_outcome_rejected",
		"trace_id", TraceIDFromContext(ctx),
		"offer_impression_id", offerImpressionID,
		"reason", reason,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditOffer, string(domain.OutcomePurchase), reason).Inc()
	return domain.OfferOutcomeResult{Success: false, Reason: reason}
}

func (s *BanditService) offerStoreFailure(ctx context.Context, offerImpressionID string, err error) (domain.OfferOutcomeResult, error) {
	logger.Error("offer_outcome_failed",
		"trace_id", TraceIDFromContext(ctx),
		"offer_impression_id", offerImpressionID,
		"error", err,
	)
	BanditAttributionsTotal.WithLabelValues(domain.BanditOffer, string(domain.OutcomePurchase), domain.ReasonInternalError).Inc()
	return offerInternalFailure(), err
}

func offerInternalFailure() domain.OfferOutcomeResult {
	return domain.OfferOutcomeResult{Success: false, Reason: domain.ReasonInternalError}
}
