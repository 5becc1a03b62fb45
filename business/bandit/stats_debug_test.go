package bandit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/domain"
	"smartPricing/internal/repository/memory"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.5%", percent(1, 8))
	assert.Equal(t, "0.0%", percent(0, 3))
	assert.Equal(t, "N/A", percent(0, 0))
}

func TestInspectStats(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SetPriceStats(ctx, []domain.VariantStats{
		{ContextKey: "k1", VariantID: "A", Shows: 8, Successes: 1, SuccessAddToCart: 1, SuccessPurchase: 1},
		{ContextKey: "k1", VariantID: "B"},
		{ContextKey: "k2", VariantID: "C", Shows: 4, SuccessBeginCheckout: 2},
	}))
	require.NoError(t, store.IncrementOfferStats(ctx, "k1|p1", "O5", domain.StatsDelta{Shows: 3, SuccessPurchase: 1, NetRevenueCents: 1000}))
	svc := newTestService(store, script(), &clock{at: t0})

	all, err := svc.InspectStats(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, domain.BanditPrice, all.Bandit)
	require.Len(t, all.Contexts, 2)
	assert.Equal(t, "12.5%", all.Contexts["k1"]["A"].RateAddToCart)
	assert.Equal(t, "N/A", all.Contexts["k1"]["B"].RatePurchase)
	assert.Equal(t, "50.0%", all.Contexts["k2"]["C"].RateBeginCheckout)

	one, err := svc.InspectStats(ctx, domain.BanditPrice, "k1")
	require.NoError(t, err)
	require.Len(t, one.Contexts, 1)
	assert.Equal(t, int64(8), one.Contexts["k1"]["A"].Shows)
	assert.Empty(t, one.Contexts["k1"]["A"].RateAddToCart)

	offers, err := svc.InspectStats(ctx, domain.BanditOffer, "")
	require.NoError(t, err)
	assert.Equal(t, int64(333), offers.Offers["k1|p1"]["O5"].NetRevPerShow)
	assert.Equal(t, "33.3%", offers.Offers["k1|p1"]["O5"].RatePurchase)

	_, err = svc.InspectStats(ctx, "nope", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
