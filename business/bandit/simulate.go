package bandit

import (
	"context"
	"fmt"
	"math"
	"time"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

const (
	defaultSimShowsPerCell = 100
	MaxSimShowsPerCell     = 10000
	simDailyDays           = 30
)

var (
	simRegions = []string{"SP", "RJ", "MG", "BA", "RS"}
	simTiers   = []string{"low", "mid", "high"}
	simDays    = []int{5, 12, 20, 26}
	simCarts   = []int{0, 1, 3} // one per cart bucket
)

type funnelRates struct {
	addToCart, checkout, purchase float64
}

var simBaseRates = map[string]funnelRates{
	domain.VariantA: {0.45, 0.25, 0.12},
	domain.VariantB: {0.35, 0.20, 0.10},
	domain.VariantC: {0.25, 0.15, 0.08},
}

var (
	simDailyPurchaseRate = map[string]float64{domain.VariantA: 0.08, domain.VariantB: 0.06, domain.VariantC: 0.05}
	simAvgPriceCents     = map[string]int64{domain.VariantA: 9000, domain.VariantB: 10000, domain.VariantC: 11000}
)

// simRates adjusts the base funnel: low-tier devices are price sensitive, high-tier
// ones barely penalise the expensive variant, fuller carts convert better.
func simRates(variant, tier, cartBucket string) funnelRates {
	r := simBaseRates[variant]
	switch tier {
	case "low":
		if variant == domain.VariantA {
			r.addToCart += 0.15
			r.purchase += 0.05
		}
		if variant == domain.VariantC {
			r.addToCart -= 0.10
			r.purchase -= 0.04
		}
	case "high":
		if variant == domain.VariantC {
			r.addToCart += 0.10
			r.purchase += 0.04
		}
	}
	switch cartBucket {
	case "cart1_2":
		r.checkout += 0.10
		r.purchase += 0.05
	case "cart3p":
		r.checkout += 0.20
		r.purchase += 0.12
	}
	r.addToCart = clamp01(r.addToCart)
	r.checkout = clamp01(r.checkout)
	r.purchase = clamp01(r.purchase)
	return r
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// Simulate overwrites price stats for a synthetic context grid and writes 30 days of
// synthetic daily rollups ending today.
func (s *BanditService) Simulate(ctx context.Context, showsPerCell int) (domain.SimulationSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.SimulationSummary{}, fmt.Errorf("context error: %w", err)
	}
	if showsPerCell <= 0 {
		showsPerCell = defaultSimShowsPerCell
	}
	if showsPerCell > MaxSimShowsPerCell {
		return domain.SimulationSummary{}, fmt.Errorf("%w: shows per cell must be at most %d", ErrInvalidRequest, MaxSimShowsPerCell)
	}

	cfg := s.loadConfig(ctx, domain.BanditPrice)
	now := s.now()
	nowMs := now.UnixMilli()

	var (
		rows       []domain.VariantStats
		contexts   int
		totalShows int64
	)
	for _, region := range simRegions {
		for _, tier := range simTiers {
			for _, day := range simDays {
				for _, items := range simCarts {
					if err := ctx.Err(); err != nil {
						return domain.SimulationSummary{}, fmt.Errorf("simulation aborted: %w", err)
					}
					key := ContextKey(region, tier, day, items)
					contexts++
					for _, v := range PriceVariants {
						st := s.simulateCell(key, v, tier, CartBucket(items), showsPerCell)
						st.UpdatedAtMs = nowMs
						rows = append(rows, st)
						totalShows += st.Shows
					}
				}
			}
		}
	}

	if err := s.statsRepo.SetPriceStats(ctx, rows); err != nil {
		return domain.SimulationSummary{}, fmt.Errorf("write simulated stats: %w", err)
	}

	for d := 0; d < simDailyDays; d++ {
		day := DayKey(now.Add(-time.Duration(d)*24*time.Hour), cfg.Location)
		counters := make(map[string]int64, 3*len(PriceVariants))
		for _, v := range PriceVariants {
			shows := int64(math.Floor(float64(totalShows)/3/simDailyDays + (s.sampler.Uniform()-0.5)*20))
			purchases := int64(math.Floor(float64(shows)*simDailyPurchaseRate[v] + (s.sampler.Uniform()-0.5)*3))
			shows = max(shows, 0)
			purchases = max(purchases, 0)
			counters[showsField(v)] = shows
			counters[purchasesField(v)] = purchases
			counters[revenueField(v)] = purchases * simAvgPriceCents[v]
		}
		if err := s.dailyRepo.SetDailyStat(ctx, domain.DailyStat{DayKey: day, Counters: counters}); err != nil {
			return domain.SimulationSummary{}, fmt.Errorf("write simulated daily stat %s: %w", day, err)
		}
	}

	logger.Info("bandit_simulation_written",
		"trace_id", TraceIDFromContext(ctx),
		"contexts", contexts,
		"total_shows", totalShows,
		"shows_per_cell", showsPerCell,
	)

	return domain.SimulationSummary{
		TotalContexts:     contexts,
		TotalVariantCells: len(rows),
		TotalShows:        totalShows,
		ShowsPerCell:      showsPerCell,
		DailyStatsDays:    simDailyDays,
		Regions:           simRegions,
		Tiers:             simTiers,
		CartBuckets:       []string{"cart0", "cart1_2", "cart3p"},
	}, nil
}

// simulateCell walks a nested funnel: checkout needs an add-to-cart, purchase needs a checkout.
func (s *BanditService) simulateCell(contextKey, variant, tier, cartBucket string, showsPerCell int) domain.VariantStats {
	rates := simRates(variant, tier, cartBucket)
	shows := showsPerCell + int(math.Floor((s.sampler.Uniform()-0.5)*float64(showsPerCell)*0.3))

	st := domain.VariantStats{ContextKey: contextKey, VariantID: variant, Shows: int64(shows)}
	for i := 0; i < shows; i++ {
		if s.sampler.Uniform() >= rates.addToCart {
			continue
		}
		st.SuccessAddToCart++
		if s.sampler.Uniform() >= rates.checkout {
			continue
		}
		st.SuccessBeginCheckout++
		if s.sampler.Uniform() < rates.purchase {
			st.SuccessPurchase++
		}
	}
	st.Successes = st.SuccessAddToCart
	return st
}
