package bandit

import (
	"context"
	"time"

	"smartPricing/domain"
	"smartPricing/pkg/config"
)

type Config struct {
	// price bandit
	Epsilon      float64
	MinBootstrap int64

	// offer bandit
	OfferEpsilon      float64
	OfferMinBootstrap int64
	// penalty per unit of discount rate subtracted from the sampled conversion
	OfferLambda float64

	ImpressionTTL      time.Duration
	PurchaseTTL        time.Duration
	OfferImpressionTTL time.Duration
	OfferPurchaseTTL   time.Duration

	// how long a client waits before polling again after a "delayed" timing decision
	DelayedOfferRetry time.Duration

	// timezone used for daily rollup keys
	Location *time.Location
}

const (
	defaultEpsilon           = 0.1
	defaultMinBootstrap      = 9
	defaultOfferLambda       = 0.3
	defaultImpressionTTL     = 30 * time.Minute
	defaultPurchaseTTL       = 24 * time.Hour
	defaultDelayedOfferRetry = 15 * time.Second
)

func DefaultConfig() Config {
	return Config{
		Epsilon:      defaultEpsilon,
		MinBootstrap: defaultMinBootstrap,

		OfferEpsilon:      defaultEpsilon,
		OfferMinBootstrap: defaultMinBootstrap,
		OfferLambda:       defaultOfferLambda,

		ImpressionTTL:      defaultImpressionTTL,
		PurchaseTTL:        defaultPurchaseTTL,
		OfferImpressionTTL: defaultImpressionTTL,
		OfferPurchaseTTL:   defaultPurchaseTTL,

		DelayedOfferRetry: defaultDelayedOfferRetry,
		Location:          time.Local,
	}
}

// WithTuning overlays the values set in a tuning file.
func (c Config) WithTuning(t config.BanditTuning) Config {
	if t.Price.Epsilon != nil {
		c.Epsilon = *t.Price.Epsilon
	}
	if t.Price.MinBootstrap != nil {
		c.MinBootstrap = *t.Price.MinBootstrap
	}
	if t.Price.ImpressionTTL > 0 {
		c.ImpressionTTL = t.Price.ImpressionTTL
	}
	if t.Price.PurchaseTTL > 0 {
		c.PurchaseTTL = t.Price.PurchaseTTL
	}

	if t.Offer.Epsilon != nil {
		c.OfferEpsilon = *t.Offer.Epsilon
	}
	if t.Offer.MinBootstrap != nil {
		c.OfferMinBootstrap = *t.Offer.MinBootstrap
	}
	if t.Offer.Lambda != nil {
		c.OfferLambda = *t.Offer.Lambda
	}
	if t.Offer.ImpressionTTL > 0 {
		c.OfferImpressionTTL = t.Offer.ImpressionTTL
	}
	if t.Offer.PurchaseTTL > 0 {
		c.OfferPurchaseTTL = t.Offer.PurchaseTTL
	}
	if t.Offer.DelayedRetry > 0 {
		c.DelayedOfferRetry = t.Offer.DelayedRetry
	}
	return c
}

// read per-bandit runtime overrides from DB.
type ConfigRepository interface {
	GetConfig(ctx context.Context, bandit string) (domain.BanditConfig, bool, error)
	UpsertConfig(ctx context.Context, cfg domain.BanditConfig) error
}
