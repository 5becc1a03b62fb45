package postgres

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smartPricing/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func TestBanditStatsRepository_Increment(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditStatsRepository(newTestDB(t))

	require.NoError(t, repo.IncrementPriceStats(ctx, "k", "A", domain.StatsDelta{Shows: 1, AtMs: 10}))
	require.NoError(t, repo.IncrementPriceStats(ctx, "k", "A", domain.StatsDelta{Shows: 1, AtMs: 20}))
	require.NoError(t, repo.IncrementPriceStats(ctx, "k", "A", domain.StatsDelta{SuccessAddToCart: 1, Successes: 1, AtMs: 30}))
	require.NoError(t, repo.IncrementPriceStats(ctx, "k", "B", domain.StatsDelta{Shows: 1, AtMs: 40}))
	require.NoError(t, repo.IncrementPriceStats(ctx, "other", "A", domain.StatsDelta{Shows: 5}))

	stats, err := repo.GetPriceStats(ctx, "k")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(2), stats["A"].Shows)
	assert.Equal(t, int64(1), stats["A"].SuccessAddToCart)
	assert.Equal(t, int64(1), stats["A"].Successes)
	assert.Equal(t, int64(30), stats["A"].UpdatedAtMs)
	assert.Equal(t, int64(1), stats["B"].Shows)

	all, err := repo.ListPriceStats(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBanditStatsRepository_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditStatsRepository(newTestDB(t))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.IncrementOfferStats(ctx, "k|p1", "O5", domain.StatsDelta{Shows: 1, NetRevenueCents: 100}))
		}()
	}
	wg.Wait()

	stats, err := repo.GetOfferStats(ctx, "k|p1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats["O5"].Shows)
	assert.Equal(t, int64(2000), stats["O5"].NetRevenueSumCents)
}

func TestBanditStatsRepository_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditStatsRepository(newTestDB(t))

	require.NoError(t, repo.IncrementPriceStats(ctx, "k", "A", domain.StatsDelta{Shows: 50}))
	require.NoError(t, repo.SetPriceStats(ctx, []domain.VariantStats{
		{ContextKey: "k", VariantID: "A", Shows: 7, SuccessAddToCart: 3, Successes: 3},
		{ContextKey: "k", VariantID: "C", Shows: 9},
	}))

	stats, err := repo.GetPriceStats(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats["A"].Shows)
	assert.Equal(t, int64(3), stats["A"].SuccessAddToCart)
	assert.Equal(t, int64(9), stats["C"].Shows)
}

func TestImpressionRepository_MarkIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewImpressionRepository(newTestDB(t))

	require.NoError(t, repo.CreatePriceImpression(ctx, domain.PriceImpression{
		ImpressionID:   "imp-1",
		InstallationID: "inst-1",
		ProductID:      "sku-1",
		ContextKey:     "k",
		VariantID:      "A",
		PriceCents:     900,
		ShownAtMs:      1000,
		ExpiresAtMs:    2000,
	}))

	won, err := repo.MarkPriceAttributed(ctx, "imp-1", domain.OutcomeAddToCart)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkPriceAttributed(ctx, "imp-1", domain.OutcomeAddToCart)
	require.NoError(t, err)
	assert.False(t, won)

	won, err = repo.MarkPriceAttributed(ctx, "imp-1", domain.OutcomePurchase)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkPriceAttributed(ctx, "missing", domain.OutcomePurchase)
	require.NoError(t, err)
	assert.False(t, won)

	imp, found, err := repo.GetPriceImpression(ctx, "imp-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, imp.Attributed)
	assert.True(t, imp.AttributedAddToCart)
	assert.False(t, imp.AttributedBeginCheckout)
	assert.True(t, imp.AttributedPurchase)

	_, found, err = repo.GetPriceImpression(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestImpressionRepository_OfferPurchase(t *testing.T) {
	ctx := context.Background()
	repo := NewImpressionRepository(newTestDB(t))

	require.NoError(t, repo.CreateOfferImpression(ctx, domain.OfferImpression{
		OfferImpressionID: "off-1",
		InstallationID:    "inst-1",
		OfferContextKey:   "k|p0",
		VariantID:         "O10",
		CartTotalCents:    10000,
		DiscountCents:     1000,
		EligibleOffers:    []string{"O5", "O10"},
		ShownAtMs:         5000,
	}))

	won, err := repo.MarkOfferPurchased(ctx, "off-1", 10000, 9000, 6000)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = repo.MarkOfferPurchased(ctx, "off-1", 1, 1, 7000)
	require.NoError(t, err)
	assert.False(t, won)

	imp, found, err := repo.GetOfferImpression(ctx, "off-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"O5", "O10"}, []string(imp.EligibleOffers))
	assert.Equal(t, int64(9000), imp.NetRevenueCents)
	assert.Equal(t, int64(6000), imp.PurchasedAtMs)

	rows, err := repo.ListOfferImpressions(ctx, 5000, 5000)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	rows, err = repo.ListOfferImpressions(ctx, 5001, 9000)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDailyStatRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewDailyStatRepository(newTestDB(t))

	require.NoError(t, repo.IncrementDailyStat(ctx, "2025-03-14", "shows_A", 1))
	require.NoError(t, repo.IncrementDailyStat(ctx, "2025-03-14", "shows_A", 2))
	require.NoError(t, repo.IncrementDailyStat(ctx, "2025-03-15", "revenue_B", 900))
	require.NoError(t, repo.IncrementDailyStat(ctx, "2025-04-01", "shows_A", 1))

	days, err := repo.GetDailyStats(ctx, "2025-03-14", "2025-03-31")
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-14", days[0].DayKey)
	assert.Equal(t, int64(3), days[0].Counters["shows_A"])
	assert.Equal(t, int64(900), days[1].Counters["revenue_B"])

	require.NoError(t, repo.SetDailyStat(ctx, domain.DailyStat{DayKey: "2025-03-14", Counters: map[string]int64{"shows_B": 4}}))
	days, err = repo.GetDailyStats(ctx, "2025-03-14", "2025-03-14")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, map[string]int64{"shows_B": 4}, days[0].Counters)
}

func TestBanditConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBanditConfigRepository(newTestDB(t))

	_, found, err := repo.GetConfig(ctx, domain.BanditOffer)
	require.NoError(t, err)
	assert.False(t, found)

	eps, lambda := 0.2, 0.5
	require.NoError(t, repo.UpsertConfig(ctx, domain.BanditConfig{Bandit: domain.BanditOffer, Epsilon: &eps}))
	require.NoError(t, repo.UpsertConfig(ctx, domain.BanditConfig{Bandit: domain.BanditOffer, Epsilon: &eps, Lambda: &lambda}))

	cfg, found, err := repo.GetConfig(ctx, domain.BanditOffer)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, cfg.Epsilon)
	assert.Equal(t, 0.2, *cfg.Epsilon)
	require.NotNil(t, cfg.Lambda)
	assert.Equal(t, 0.5, *cfg.Lambda)
	assert.Nil(t, cfg.MinBootstrap)
}
