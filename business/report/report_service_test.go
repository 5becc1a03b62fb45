package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/business/bandit"
	"smartPricing/domain"
	"smartPricing/internal/repository/memory"
)

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type noRollups struct{}

func (noRollups) GetDailyStats(context.Context, string, string) ([]domain.DailyStat, error) {
	return nil, nil
}

func int64p(v int64) *int64 { return &v }
func intp(v int) *int       { return &v }

// seedTraffic drives real quotes, offers and outcomes through the bandit service.
func seedTraffic(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	cfg := bandit.DefaultConfig()
	cfg.Location = time.UTC
	now := t0
	svc := bandit.NewBanditService(store, store, store, store, nil, bandit.NewSampler(bandit.NewSource(9)), cfg).
		WithClock(func() time.Time { return now })

	for i := 0; i < 40; i++ {
		q, err := svc.GetPriceQuote(ctx, domain.PriceQuoteRequest{
			InstallationID: "inst-1",
			ProductID:      "sku-1",
			BasePriceCents: 1000 + int64(i),
			ContextKey:     "SP|mid|day_14|cart0",
		})
		require.NoError(t, err)
		if i%4 == 0 {
			res, err := svc.RecordPurchaseOutcome(ctx, domain.PurchaseOutcomeRequest{InstallationID: "inst-1", ImpressionID: q.ImpressionID})
			require.NoError(t, err)
			require.True(t, res.Success)
		}

		o, err := svc.GetCartOffer(ctx, domain.CartOfferRequest{
			InstallationID:  "inst-1",
			CartTotalCents:  20000,
			OfferContextKey: "SP|mid|day_14|cart1_2",
			CartItemsCount:  intp(i % 3),
		})
		require.NoError(t, err)
		if i%5 == 0 {
			var value *int64
			if i%10 == 0 {
				value = int64p(20000)
			}
			res, err := svc.RecordOfferPurchaseOutcome(ctx, domain.OfferPurchaseOutcomeRequest{
				InstallationID:    "inst-1",
				OfferImpressionID: o.OfferImpressionID,
				ValueCents:        value,
			})
			require.NoError(t, err)
			require.True(t, res.Success)
		}
		now = now.Add(time.Minute)
	}
}

func dayWindow() domain.SummaryRequest {
	start := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC).UnixMilli()
	end := time.Date(2025, 3, 14, 23, 59, 59, 999e6, time.UTC).UnixMilli()
	return domain.SummaryRequest{StartMs: &start, EndMs: &end}
}

func TestSalesSummary_RollupMatchesRawScan(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTraffic(t, store)

	rolled, err := NewReportService(store, store, time.UTC).GetSalesSummary(ctx, dayWindow())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDailyStats, rolled.Source)
	assert.Equal(t, 1, rolled.DaysCounted)
	assert.Equal(t, int64(40), rolled.Totals.Shows)
	assert.Equal(t, int64(10), rolled.Totals.Purchases)
	assert.Equal(t, 0.25, rolled.Totals.OverallRate)

	raw, err := NewReportService(noRollups{}, store, time.UTC).GetSalesSummary(ctx, dayWindow())
	require.NoError(t, err)
	assert.Equal(t, domain.SourcePriceImpressions, raw.Source)
	assert.Equal(t, 0, raw.DaysCounted)

	assert.Equal(t, rolled.Shows, raw.Shows)
	assert.Equal(t, rolled.Purchases, raw.Purchases)
	assert.Equal(t, rolled.RevenueCents, raw.RevenueCents)
	assert.Equal(t, rolled.PurchaseRate, raw.PurchaseRate)
	assert.Equal(t, rolled.Totals, raw.Totals)
}

func TestOfferSummary_RollupMatchesRawScan(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seedTraffic(t, store)

	rolled, err := NewReportService(store, store, time.UTC).GetOfferSummary(ctx, dayWindow())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDailyStats, rolled.Source)
	assert.Equal(t, int64(40), rolled.Totals.Shows)
	assert.Equal(t, int64(8), rolled.Totals.Purchases)

	raw, err := NewReportService(noRollups{}, store, time.UTC).GetOfferSummary(ctx, dayWindow())
	require.NoError(t, err)
	assert.Equal(t, domain.SourceCartOfferImpressions, raw.Source)

	assert.Equal(t, rolled.Shows, raw.Shows)
	assert.Equal(t, rolled.Purchases, raw.Purchases)
	assert.Equal(t, rolled.NetRevenueCents, raw.NetRevenueCents)
	assert.Equal(t, rolled.NetRevPerShow, raw.NetRevPerShow)
	assert.Equal(t, rolled.Totals, raw.Totals)
}

func TestSummary_DefaultWindowAndEmptyStore(t *testing.T) {
	store := memory.NewStore()
	svc := NewReportService(store, store, time.UTC).WithClock(func() time.Time { return t0 })

	out, err := svc.GetSalesSummary(context.Background(), domain.SummaryRequest{})
	require.NoError(t, err)
	assert.Equal(t, t0.UnixMilli(), out.Window.EndMs)
	assert.Equal(t, t0.Add(-30*24*time.Hour).UnixMilli(), out.Window.StartMs)
	assert.Equal(t, domain.SourcePriceImpressions, out.Source)
	assert.Equal(t, int64(0), out.Shows["A"])
	assert.Equal(t, 0.0, out.PurchaseRate["A"])
	assert.Equal(t, 0.0, out.Totals.OverallRate)
}

func TestSummary_RejectsInvertedWindow(t *testing.T) {
	store := memory.NewStore()
	_, err := NewReportService(store, store, time.UTC).GetOfferSummary(context.Background(),
		domain.SummaryRequest{StartMs: int64p(10), EndMs: int64p(5)})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestSummary_RollupOutsideWindowIgnored(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SetDailyStat(ctx, domain.DailyStat{DayKey: "2025-01-01", Counters: map[string]int64{"shows_A": 100}}))
	require.NoError(t, store.SetDailyStat(ctx, domain.DailyStat{DayKey: "2025-03-14", Counters: map[string]int64{"shows_A": 3, "purchases_A": 1, "revenue_A": 900}}))

	out, err := NewReportService(store, store, time.UTC).GetSalesSummary(ctx, dayWindow())
	require.NoError(t, err)
	assert.Equal(t, 1, out.DaysCounted)
	assert.Equal(t, int64(3), out.Shows["A"])
	assert.Equal(t, 0.3333, out.PurchaseRate["A"])
	assert.Equal(t, int64(900), out.RevenueCents["A"])
}
