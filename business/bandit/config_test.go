package bandit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartPricing/domain"
	"smartPricing/internal/repository/memory"
	"smartPricing/pkg/config"
)

func f64p(v float64) *float64 { return &v }

func TestWithTuning(t *testing.T) {
	cfg := DefaultConfig().WithTuning(config.BanditTuning{
		Price: config.PriceTuning{Epsilon: f64p(0), PurchaseTTL: 48 * time.Hour},
		Offer: config.OfferTuning{Lambda: f64p(0.8), DelayedRetry: 30 * time.Second},
	})

	assert.Equal(t, 0.0, cfg.Epsilon, "explicit zero must override")
	assert.Equal(t, int64(defaultMinBootstrap), cfg.MinBootstrap)
	assert.Equal(t, 48*time.Hour, cfg.PurchaseTTL)
	assert.Equal(t, defaultImpressionTTL, cfg.ImpressionTTL)
	assert.Equal(t, 0.8, cfg.OfferLambda)
	assert.Equal(t, defaultEpsilon, cfg.OfferEpsilon)
	assert.Equal(t, 30*time.Second, cfg.DelayedOfferRetry)
}

type brokenConfigRepo struct{}

func (brokenConfigRepo) GetConfig(context.Context, string) (domain.BanditConfig, bool, error) {
	return domain.BanditConfig{}, false, errors.New("timeout")
}

func (brokenConfigRepo) UpsertConfig(context.Context, domain.BanditConfig) error {
	return errors.New("timeout")
}

func TestLoadConfigOverrides(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(store, script(), &clock{at: t0})

	require.NoError(t, svc.UpdateConfig(ctx, domain.BanditConfig{Bandit: domain.BanditOffer, Epsilon: f64p(0.5), Lambda: f64p(1)}))

	offer := svc.loadConfig(ctx, domain.BanditOffer)
	assert.Equal(t, 0.5, offer.OfferEpsilon)
	assert.Equal(t, 1.0, offer.OfferLambda)
	assert.Equal(t, defaultEpsilon, offer.Epsilon, "offer row leaves the price bandit alone")

	price := svc.loadConfig(ctx, domain.BanditPrice)
	assert.Equal(t, defaultEpsilon, price.Epsilon)

	got, err := svc.GetConfig(ctx, domain.BanditPrice)
	require.NoError(t, err)
	assert.Equal(t, domain.BanditPrice, got.Bandit)
	assert.Nil(t, got.Epsilon)
}

func TestLoadConfigFallsBackOnStoreError(t *testing.T) {
	store := memory.NewStore()
	cfg := DefaultConfig()
	svc := NewBanditService(store, store, store, brokenConfigRepo{}, nil, NewSampler(script()), cfg)

	assert.Equal(t, cfg.Epsilon, svc.loadConfig(context.Background(), domain.BanditPrice).Epsilon)
}

func TestUpdateConfigRejects(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(memory.NewStore(), script(), &clock{at: t0})

	err := svc.UpdateConfig(ctx, domain.BanditConfig{Bandit: domain.BanditPrice, Lambda: f64p(0.2)})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	err = svc.UpdateConfig(ctx, domain.BanditConfig{Bandit: "shipping"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	noStore := NewBanditService(memory.NewStore(), memory.NewStore(), memory.NewStore(), nil, nil, nil, DefaultConfig())
	err = noStore.UpdateConfig(ctx, domain.BanditConfig{Bandit: domain.BanditPrice})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
