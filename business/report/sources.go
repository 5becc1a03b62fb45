package report

import (
	"context"
	"time"

	"smartPricing/business/bandit"
	"smartPricing/domain"
)

// rollupSource sums named daily counters over the day keys covering the window.
type rollupSource struct {
	repo     DailyStatRepository
	loc      *time.Location
	variants []string

	// counter name prefixes
	shows, purchases, revenue string
}

func (rollupSource) Name() string { return domain.SourceDailyStats }

func (r rollupSource) Tally(ctx context.Context, w domain.ReportWindow) (tally, int, bool, error) {
	startDay := bandit.DayKey(time.UnixMilli(w.StartMs), r.loc)
	endDay := bandit.DayKey(time.UnixMilli(w.EndMs), r.loc)

	docs, err := r.repo.GetDailyStats(ctx, startDay, endDay)
	if err != nil {
		return tally{}, 0, false, err
	}

	t := newTally()
	for _, doc := range docs {
		for _, v := range r.variants {
			t.shows[v] += doc.Counters[r.shows+v]
			t.purchases[v] += doc.Counters[r.purchases+v]
			t.revenue[v] += doc.Counters[r.revenue+v]
		}
	}
	return t, len(docs), len(docs) > 0, nil
}

// priceImpressionSource rebuilds the sales tally from raw price impressions.
type priceImpressionSource struct {
	repo ImpressionRepository
}

func (priceImpressionSource) Name() string { return domain.SourcePriceImpressions }

func (p priceImpressionSource) Tally(ctx context.Context, w domain.ReportWindow) (tally, int, bool, error) {
	imps, err := p.repo.ListPriceImpressions(ctx, w.StartMs, w.EndMs)
	if err != nil {
		return tally{}, 0, false, err
	}

	t := newTally()
	for _, imp := range imps {
		t.shows[imp.VariantID]++
		if imp.AttributedPurchase {
			t.purchases[imp.VariantID]++
			if imp.PriceCents > 0 {
				t.revenue[imp.VariantID] += imp.PriceCents
			}
		}
	}
	return t, 0, true, nil
}

// offerImpressionSource rebuilds the offer tally from raw offer impressions.
type offerImpressionSource struct {
	repo ImpressionRepository
}

func (offerImpressionSource) Name() string { return domain.SourceCartOfferImpressions }

func (o offerImpressionSource) Tally(ctx context.Context, w domain.ReportWindow) (tally, int, bool, error) {
	imps, err := o.repo.ListOfferImpressions(ctx, w.StartMs, w.EndMs)
	if err != nil {
		return tally{}, 0, false, err
	}

	t := newTally()
	for _, imp := range imps {
		t.shows[imp.VariantID]++
		if imp.AttributedPurchase {
			t.purchases[imp.VariantID]++
			if imp.OrderValueCents > 0 {
				t.revenue[imp.VariantID] += imp.NetRevenueCents
			}
		}
	}
	return t, 0, true, nil
}
