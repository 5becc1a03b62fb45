package bandit

import (
	"context"
	"fmt"
	"math"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// InspectStats returns bandit counters for inspection. With a context key only that
// context is returned as raw counters; without one every context is listed with rates.
func (s *BanditService) InspectStats(ctx context.Context, bandit, contextKey string) (domain.BanditStatsView, error) {
	if err := ctx.Err(); err != nil {
		return domain.BanditStatsView{}, fmt.Errorf("context error: %w", err)
	}
	if bandit == "" {
		bandit = domain.BanditPrice
	}
	if err := validBandit(bandit); err != nil {
		return domain.BanditStatsView{}, err
	}

	logger.Debug("bandit_inspect_stats",
		"trace_id", TraceIDFromContext(ctx),
		"bandit", bandit,
		"context_key", contextKey,
	)

	view := domain.BanditStatsView{Bandit: bandit}
	withRates := contextKey == ""

	if bandit == domain.BanditPrice {
		var rows []domain.VariantStats
		if contextKey != "" {
			byVariant, err := s.statsRepo.GetPriceStats(ctx, contextKey)
			if err != nil {
				return domain.BanditStatsView{}, fmt.Errorf("load price stats: %w", err)
			}
			for _, st := range byVariant {
				rows = append(rows, st)
			}
		} else {
			var err error
			if rows, err = s.statsRepo.ListPriceStats(ctx); err != nil {
				return domain.BanditStatsView{}, fmt.Errorf("list price stats: %w", err)
			}
		}
		view.Contexts = make(map[string]map[string]domain.PriceVariantView)
		for _, st := range rows {
			if view.Contexts[st.ContextKey] == nil {
				view.Contexts[st.ContextKey] = make(map[string]domain.PriceVariantView)
			}
			view.Contexts[st.ContextKey][st.VariantID] = priceView(st, withRates)
		}
		return view, nil
	}

	var rows []domain.OfferVariantStats
	if contextKey != "" {
		byVariant, err := s.statsRepo.GetOfferStats(ctx, contextKey)
		if err != nil {
			return domain.BanditStatsView{}, fmt.Errorf("load offer stats: %w", err)
		}
		for _, st := range byVariant {
			rows = append(rows, st)
		}
	} else {
		var err error
		if rows, err = s.statsRepo.ListOfferStats(ctx); err != nil {
			return domain.BanditStatsView{}, fmt.Errorf("list offer stats: %w", err)
		}
	}
	view.Offers = make(map[string]map[string]domain.OfferVariantView)
	for _, st := range rows {
		if view.Offers[st.ContextKey] == nil {
			view.Offers[st.ContextKey] = make(map[string]domain.OfferVariantView)
		}
		view.Offers[st.ContextKey][st.VariantID] = offerView(st, withRates)
	}
	return view, nil
}

func priceView(st domain.VariantStats, withRates bool) domain.PriceVariantView {
	v := domain.PriceVariantView{
		Shows:                st.Shows,
		Successes:            st.Successes,
		SuccessAddToCart:     st.SuccessAddToCart,
		SuccessBeginCheckout: st.SuccessBeginCheckout,
		SuccessPurchase:      st.SuccessPurchase,
	}
	if withRates {
		v.RateAddToCart = percent(st.SuccessAddToCart, st.Shows)
		v.RateBeginCheckout = percent(st.SuccessBeginCheckout, st.Shows)
		v.RatePurchase = percent(st.SuccessPurchase, st.Shows)
	}
	return v
}

func offerView(st domain.OfferVariantStats, withRates bool) domain.OfferVariantView {
	v := domain.OfferVariantView{
		Shows:              st.Shows,
		SuccessPurchase:    st.SuccessPurchase,
		NetRevenueSumCents: st.NetRevenueSumCents,
	}
	if withRates {
		v.RatePurchase = percent(st.SuccessPurchase, st.Shows)
		if st.Shows > 0 {
			v.NetRevPerShow = int64(math.Round(float64(st.NetRevenueSumCents) / float64(st.Shows)))
		}
	}
	return v
}

// percent formats n/shows as "12.5%", or "N/A" without shows.
func percent(n, shows int64) string {
	if shows <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(shows)*100)
}
