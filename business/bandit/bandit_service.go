package bandit

import (
	"context"
	"errors"
	"time"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

var ErrInvalidRequest = errors.New("invalid request")

// ---- Repository interfaces ----

// StatsRepository stores per (context key, variant) counters. Increments must be
// atomic in the backing store.
type StatsRepository interface {
	GetPriceStats(ctx context.Context, contextKey string) (map[string]domain.VariantStats, error)
	IncrementPriceStats(ctx context.Context, contextKey, variantID string, delta domain.StatsDelta) error
	ListPriceStats(ctx context.Context) ([]domain.VariantStats, error)
	SetPriceStats(ctx context.Context, stats []domain.VariantStats) error

	GetOfferStats(ctx context.Context, contextKey string) (map[string]domain.OfferVariantStats, error)
	IncrementOfferStats(ctx context.Context, contextKey, variantID string, delta domain.StatsDelta) error
	ListOfferStats(ctx context.Context) ([]domain.OfferVariantStats, error)
}

// ImpressionRepository stores impressions. The Mark* calls are compare-and-set:
// they return true only for the caller that flipped the flag.
type ImpressionRepository interface {
	CreatePriceImpression(ctx context.Context, imp domain.PriceImpression) error
	GetPriceImpression(ctx context.Context, impressionID string) (domain.PriceImpression, bool, error)
	MarkPriceAttributed(ctx context.Context, impressionID string, outcome domain.Outcome) (bool, error)

	CreateOfferImpression(ctx context.Context, imp domain.OfferImpression) error
	GetOfferImpression(ctx context.Context, offerImpressionID string) (domain.OfferImpression, bool, error)
	MarkOfferPurchased(ctx context.Context, offerImpressionID string, orderValueCents, netRevenueCents, purchasedAtMs int64) (bool, error)
}

// DailyStatRepository keeps the per-day rollup counters.
type DailyStatRepository interface {
	IncrementDailyStat(ctx context.Context, dayKey, field string, amount int64) error
	SetDailyStat(ctx context.Context, stat domain.DailyStat) error
}

// EventPublisher streams decisions and attributions. Failures are logged, never fatal.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.DecisionEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.DecisionEvent) error { return nil }

// ---- Usecase / Service ----

type BanditService struct {
	statsRepo      StatsRepository
	impressionRepo ImpressionRepository
	dailyRepo      DailyStatRepository
	cfgRepo        ConfigRepository
	publisher      EventPublisher
	sampler        *Sampler
	defaultCfg     Config
	now            func() time.Time
}

func NewBanditService(
	statsRepo StatsRepository,
	impressionRepo ImpressionRepository,
	dailyRepo DailyStatRepository,
	cfgRepo ConfigRepository,
	publisher EventPublisher,
	sampler *Sampler,
	defaultCfg Config,
) *BanditService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if sampler == nil {
		sampler = NewSampler(nil)
	}
	if defaultCfg.Location == nil {
		defaultCfg.Location = time.Local
	}
	return &BanditService{
		statsRepo:      statsRepo,
		impressionRepo: impressionRepo,
		dailyRepo:      dailyRepo,
		cfgRepo:        cfgRepo,
		publisher:      publisher,
		sampler:        sampler,
		defaultCfg:     defaultCfg,
		now:            time.Now,
	}
}

// WithClock replaces the wall clock, used by tests to pin TTL boundaries.
func (s *BanditService) WithClock(now func() time.Time) *BanditService {
	s.now = now
	return s
}

func (s *BanditService) publish(ctx context.Context, ev domain.DecisionEvent) {
	ev.TraceID = TraceIDFromContext(ctx)
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.now()
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("bandit_event_publish_failed",
			"trace_id", ev.TraceID,
			"type", ev.Type,
			"impression_id", ev.ImpressionID,
			"error", err,
		)
	}
}

// leastShown returns the first variant in order with the smallest show count.
func leastShown(order []string, shows func(string) int64) string {
	best := order[0]
	fewest := shows(best)
	for _, v := range order[1:] {
		if n := shows(v); n < fewest {
			best, fewest = v, n
		}
	}
	return best
}
