package bandit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// PriceVariants in tie-break order.
var PriceVariants = []string{domain.VariantA, domain.VariantB, domain.VariantC}

var priceMultipliers = map[string]decimal.Decimal{
	domain.VariantA: decimal.RequireFromString("0.90"),
	domain.VariantB: decimal.RequireFromString("1.00"),
	domain.VariantC: decimal.RequireFromString("1.10"),
}

// QuotePrice applies the variant multiplier, rounding half up, never below one cent.
func QuotePrice(basePriceCents int64, variantID string) int64 {
	m, ok := priceMultipliers[variantID]
	if !ok {
		m = decimal.NewFromInt(1)
	}
	price := decimal.NewFromInt(basePriceCents).Mul(m).Round(0).IntPart()
	if price < 1 {
		return 1
	}
	return price
}

// GetPriceQuote picks a price variant for the context, records the impression and
// counts the show.
func (s *BanditService) GetPriceQuote(
	ctx context.Context,
	req domain.PriceQuoteRequest,
) (domain.PriceQuote, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("context error: %w", err)
	}
	if req.InstallationID == "" || req.ProductID == "" || req.ContextKey == "" {
		return domain.PriceQuote{}, fmt.Errorf("%w: installationId, productId and contextKey are required", ErrInvalidRequest)
	}
	if req.BasePriceCents < 0 {
		return domain.PriceQuote{}, fmt.Errorf("%w: basePriceCents must not be negative", ErrInvalidRequest)
	}

	cfg := s.loadConfig(ctx, domain.BanditPrice)

	stats, err := s.statsRepo.GetPriceStats(ctx, req.ContextKey)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("load price stats: %w", err)
	}

	variant, policy := s.choosePriceVariant(cfg, stats)
	price := QuotePrice(req.BasePriceCents, variant)

	now := s.now()
	nowMs := now.UnixMilli()
	imp := domain.PriceImpression{
		ImpressionID:        uuid.NewString(),
		InstallationID:      req.InstallationID,
		ProductID:           req.ProductID,
		ContextKey:          req.ContextKey,
		VariantID:           variant,
		PriceCents:          price,
		Policy:              policy,
		ShownAtMs:           nowMs,
		ExpiresAtMs:         nowMs + cfg.ImpressionTTL.Milliseconds(),
		PurchaseExpiresAtMs: nowMs + cfg.PurchaseTTL.Milliseconds(),
	}

	if err := s.impressionRepo.CreatePriceImpression(ctx, imp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("save price impression: %w", err)
	}
	if err := s.statsRepo.IncrementPriceStats(ctx, req.ContextKey, variant, domain.StatsDelta{Shows: 1, AtMs: nowMs}); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("increment price shows: %w", err)
	}
	if err := s.dailyRepo.IncrementDailyStat(ctx, DayKey(now, cfg.Location), showsField(variant), 1); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("increment daily shows: %w", err)
	}

	tid := TraceIDFromContext(ctx)
	logger.Debug("price_quote",
		"trace_id", tid,
		"installation_id", req.InstallationID,
		"product_id", req.ProductID,
		"context_key", req.ContextKey,
		"variant", variant,
		"policy", policy,
		"price_cents", price,
	)

	BanditDecisionsTotal.WithLabelValues(domain.BanditPrice, variant, policy).Inc()

	s.publish(ctx, domain.DecisionEvent{
		Type:           domain.EventPriceQuoted,
		Bandit:         domain.BanditPrice,
		ImpressionID:   imp.ImpressionID,
		InstallationID: imp.InstallationID,
		ContextKey:     imp.ContextKey,
		VariantID:      variant,
		Policy:         policy,
		ValueCents:     price,
		OccurredAt:     now,
	})

	return domain.PriceQuote{
		ImpressionID: imp.ImpressionID,
		VariantID:    variant,
		PriceCents:   price,
		ValidUntil:   imp.ExpiresAtMs,
		Policy:       policy,
	}, nil
}

// choosePriceVariant runs epsilon-greedy, then bootstrap, then Thompson sampling
// on the legacy successes counter.
func (s *BanditService) choosePriceVariant(cfg Config, stats map[string]domain.VariantStats) (string, string) {
	if s.sampler.Uniform() < cfg.Epsilon {
		return PriceVariants[s.sampler.Intn(len(PriceVariants))], domain.PolicyExplore
	}

	var total int64
	for _, v := range PriceVariants {
		total += stats[v].Shows
	}
	if total < cfg.MinBootstrap {
		return leastShown(PriceVariants, func(v string) int64 { return stats[v].Shows }), domain.PolicyBootstrap
	}

	chosen := PriceVariants[0]
	best := -1.0
	for _, v := range PriceVariants {
		st := stats[v]
		sample := s.sampler.Beta(float64(1+st.Successes), float64(1+st.Shows-st.Successes))
		if sample > best {
			chosen, best = v, sample
		}
	}
	return chosen, domain.PolicyThompson
}
