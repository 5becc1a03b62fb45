package bandit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/internal/repository/memory"
)

func TestSimulate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(store, NewSource(1), &clock{at: t0})

	sum, err := svc.Simulate(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 180, sum.TotalContexts)
	assert.Equal(t, 540, sum.TotalVariantCells)
	assert.Equal(t, 30, sum.DailyStatsDays)

	rows, err := store.ListPriceStats(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 540)

	var shows int64
	for _, st := range rows {
		assert.GreaterOrEqual(t, st.Shows, int64(8))
		assert.LessOrEqual(t, st.Shows, int64(11))
		assert.LessOrEqual(t, st.SuccessBeginCheckout, st.SuccessAddToCart)
		assert.LessOrEqual(t, st.SuccessPurchase, st.SuccessBeginCheckout)
		assert.Equal(t, st.SuccessAddToCart, st.Successes)
		shows += st.Shows
	}
	assert.Equal(t, sum.TotalShows, shows)

	days, err := store.GetDailyStats(ctx, DayKey(t0.Add(-29*24*time.Hour), time.UTC), DayKey(t0, time.UTC))
	require.NoError(t, err)
	require.Len(t, days, 30)
	for _, d := range days {
		assert.Equal(t, d.Counters["purchases_A"]*9000, d.Counters["revenue_A"])
		assert.GreaterOrEqual(t, d.Counters["shows_B"], int64(0))
	}
}

func TestSimulateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(store, NewSource(2), &clock{at: t0})

	_, err := svc.Simulate(ctx, 10)
	require.NoError(t, err)
	sum, err := svc.Simulate(ctx, 10)
	require.NoError(t, err)

	rows, _ := store.ListPriceStats(ctx)
	var shows int64
	for _, st := range rows {
		shows += st.Shows
	}
	assert.Equal(t, sum.TotalShows, shows)
}

func TestSimRates(t *testing.T) {
	r := simRates("A", "low", "cart3p")
	assert.InDelta(t, 0.60, r.addToCart, 1e-9)
	assert.InDelta(t, 0.45, r.checkout, 1e-9)
	assert.InDelta(t, 0.29, r.purchase, 1e-9)

	r = simRates("C", "low", "cart0")
	assert.InDelta(t, 0.15, r.addToCart, 1e-9)
	assert.InDelta(t, 0.04, r.purchase, 1e-9)
}

// cancelAfter cancels the context once n draws have been taken.
type cancelAfter struct {
	n      int
	cancel context.CancelFunc
	src    Source
}

func (c *cancelAfter) Float64() float64 {
	c.n--
	if c.n == 0 {
		c.cancel()
	}
	return c.src.Float64()
}

func TestSimulateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewStore()
	svc := newTestService(store, &cancelAfter{n: 1000, cancel: cancel, src: NewSource(4)}, &clock{at: t0})

	start := time.Now()
	_, err := svc.Simulate(ctx, MaxSimShowsPerCell)
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)

	rows, err := store.ListPriceStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSimulateRejectsOversizedRun(t *testing.T) {
	svc := newTestService(memory.NewStore(), NewSource(5), &clock{at: t0})

	_, err := svc.Simulate(context.Background(), MaxSimShowsPerCell+1)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
