package report

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

var ErrInvalidWindow = errors.New("invalid report window")

const defaultWindow = 30 * 24 * time.Hour

type DailyStatRepository interface {
	GetDailyStats(ctx context.Context, startDay, endDay string) ([]domain.DailyStat, error)
}

type ImpressionRepository interface {
	ListPriceImpressions(ctx context.Context, startMs, endMs int64) ([]domain.PriceImpression, error)
	ListOfferImpressions(ctx context.Context, startMs, endMs int64) ([]domain.OfferImpression, error)
}

type ReportService struct {
	dailyRepo      DailyStatRepository
	impressionRepo ImpressionRepository
	loc            *time.Location
	now            func() time.Time
}

func NewReportService(dailyRepo DailyStatRepository, impressionRepo ImpressionRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		dailyRepo:      dailyRepo,
		impressionRepo: impressionRepo,
		loc:            loc,
		now:            time.Now,
	}
}

// WithClock replaces the wall clock used for the default window.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// tally is the per-variant aggregate produced by either source.
type tally struct {
	shows     map[string]int64
	purchases map[string]int64
	revenue   map[string]int64
}

func newTally() tally {
	return tally{
		shows:     map[string]int64{},
		purchases: map[string]int64{},
		revenue:   map[string]int64{},
	}
}

// tallySource aggregates a window. ok=false means the source had nothing for it.
type tallySource interface {
	Name() string
	Tally(ctx context.Context, w domain.ReportWindow) (t tally, days int, ok bool, err error)
}

// aggregate asks each source in turn and keeps the first one with data; the last
// source always answers.
func aggregate(ctx context.Context, w domain.ReportWindow, sources ...tallySource) (tally, string, int, error) {
	for i, src := range sources {
		t, days, ok, err := src.Tally(ctx, w)
		if err != nil {
			return tally{}, "", 0, fmt.Errorf("%s: %w", src.Name(), err)
		}
		if ok || i == len(sources)-1 {
			return t, src.Name(), days, nil
		}
	}
	return newTally(), "", 0, nil
}

// GetSalesSummary aggregates price variant shows, purchases and revenue in the window.
func (s *ReportService) GetSalesSummary(ctx context.Context, req domain.SummaryRequest) (domain.SalesSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.SalesSummary{}, fmt.Errorf("context error: %w", err)
	}
	w, err := s.window(req)
	if err != nil {
		return domain.SalesSummary{}, err
	}

	t, source, days, err := aggregate(ctx, w,
		rollupSource{repo: s.dailyRepo, loc: s.loc, variants: bandit.PriceVariants, shows: "shows_", purchases: "purchases_", revenue: "revenue_"},
		priceImpressionSource{repo: s.impressionRepo},
	)
	if err != nil {
		return domain.SalesSummary{}, fmt.Errorf("sales summary: %w", err)
	}

	out := domain.SalesSummary{
		Window:       w,
		Shows:        map[string]int64{},
		Purchases:    map[string]int64{},
		PurchaseRate: map[string]float64{},
		RevenueCents: map[string]int64{},
		Source:       source,
		DaysCounted:  days,
	}
	for _, v := range bandit.PriceVariants {
		out.Shows[v] = t.shows[v]
		out.Purchases[v] = t.purchases[v]
		out.RevenueCents[v] = t.revenue[v]
		out.PurchaseRate[v] = rate(t.purchases[v], t.shows[v])

		out.Totals.Shows += t.shows[v]
		out.Totals.Purchases += t.purchases[v]
		out.Totals.RevenueCents += t.revenue[v]
	}
	out.Totals.OverallRate = rate(out.Totals.Purchases, out.Totals.Shows)

	logger.Debug("sales_summary",
		"trace_id", bandit.TraceIDFromContext(ctx),
		"start_ms", w.StartMs,
		"end_ms", w.EndMs,
		"source", source,
		"days_counted", days,
	)
	return out, nil
}

// GetOfferSummary aggregates offer variant shows, purchases and net revenue in the window.
func (s *ReportService) GetOfferSummary(ctx context.Context, req domain.SummaryRequest) (domain.OfferSummary, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferSummary{}, fmt.Errorf("context error: %w", err)
	}
	w, err := s.window(req)
	if err != nil {
		return domain.OfferSummary{}, err
	}

	t, source, days, err := aggregate(ctx, w,
		rollupSource{repo: s.dailyRepo, loc: s.loc, variants: bandit.OfferVariants, shows: "offer_shows_", purchases: "offer_purchases_", revenue: "offer_net_revenue_"},
		offerImpressionSource{repo: s.impressionRepo},
	)
	if err != nil {
		return domain.OfferSummary{}, fmt.Errorf("offer summary: %w", err)
	}

	out := domain.OfferSummary{
		Window:          w,
		Shows:           map[string]int64{},
		Purchases:       map[string]int64{},
		PurchaseRate:    map[string]float64{},
		NetRevenueCents: map[string]int64{},
		NetRevPerShow:   map[string]int64{},
		Source:          source,
		DaysCounted:     days,
	}
	for _, v := range bandit.OfferVariants {
		out.Shows[v] = t.shows[v]
		out.Purchases[v] = t.purchases[v]
		out.NetRevenueCents[v] = t.revenue[v]
		out.PurchaseRate[v] = rate(t.purchases[v], t.shows[v])
		if t.shows[v] > 0 {
			out.NetRevPerShow[v] = int64(math.Round(float64(t.revenue[v]) / float64(t.shows[v])))
		} else {
			out.NetRevPerShow[v] = 0
		}

		out.Totals.Shows += t.shows[v]
		out.Totals.Purchases += t.purchases[v]
		out.Totals.NetRevenueCents += t.revenue[v]
	}
	out.Totals.OverallRate = rate(out.Totals.Purchases, out.Totals.Shows)

	logger.Debug("offer_summary",
		"trace_id", bandit.TraceIDFromContext(ctx),
		"start_ms", w.StartMs,
		"end_ms", w.EndMs,
		"source", source,
		"days_counted", days,
	)
	return out, nil
}

func (s *ReportService) window(req domain.SummaryRequest) (domain.ReportWindow, error) {
	end := s.now().UnixMilli()
	if req.EndMs != nil {
		end = *req.EndMs
	}
	start := end - defaultWindow.Milliseconds()
	if req.StartMs != nil {
		start = *req.StartMs
	}
	if start > end {
		return domain.ReportWindow{}, fmt.Errorf("%w: start_ms %d is after end_ms %d", ErrInvalidWindow, start, end)
	}
	return domain.ReportWindow{StartMs: start, EndMs: end}, nil
}

// rate is n/d rounded to 4 decimals, 0 without a denominator.
func rate(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10000) / 10000
}
