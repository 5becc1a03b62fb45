package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"smartPricing/domain"
)

type statKey struct {
	contextKey string
	variantID  string
}

// Store keeps every repository in process memory behind one mutex. It backs
// DB_DRIVER=memory and the service tests.
type Store struct {
	mu sync.Mutex

	priceStats map[statKey]domain.VariantStats
	offerStats map[statKey]domain.OfferVariantStats
	priceImps  map[string]domain.PriceImpression
	offerImps  map[string]domain.OfferImpression
	daily      map[string]map[string]int64
	configs    map[string]domain.BanditConfig
}

func NewStore() *Store {
	return &Store{
		priceStats: map[statKey]domain.VariantStats{},
		offerStats: map[statKey]domain.OfferVariantStats{},
		priceImps:  map[string]domain.PriceImpression{},
		offerImps:  map[string]domain.OfferImpression{},
		daily:      map[string]map[string]int64{},
		configs:    map[string]domain.BanditConfig{},
	}
}

// ---- stats ----

func (s *Store) GetPriceStats(ctx context.Context, contextKey string) (map[string]domain.VariantStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]domain.VariantStats{}
	for k, v := range s.priceStats {
		if k.contextKey == contextKey {
			out[k.variantID] = v
		}
	}
	return out, nil
}

func (s *Store) IncrementPriceStats(ctx context.Context, contextKey, variantID string, d domain.StatsDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := statKey{contextKey, variantID}
	st := s.priceStats[k]
	st.ContextKey, st.VariantID = contextKey, variantID
	st.Shows += d.Shows
	st.Successes += d.Successes
	st.SuccessAddToCart += d.SuccessAddToCart
	st.SuccessBeginCheckout += d.SuccessBeginCheckout
	st.SuccessPurchase += d.SuccessPurchase
	st.UpdatedAtMs = d.AtMs
	s.priceStats[k] = st
	return nil
}

func (s *Store) ListPriceStats(ctx context.Context) ([]domain.VariantStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.VariantStats, 0, len(s.priceStats))
	for _, v := range s.priceStats {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContextKey != out[j].ContextKey {
			return out[i].ContextKey < out[j].ContextKey
		}
		return out[i].VariantID < out[j].VariantID
	})
	return out, nil
}

func (s *Store) SetPriceStats(ctx context.Context, stats []domain.VariantStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range stats {
		s.priceStats[statKey{st.ContextKey, st.VariantID}] = st
	}
	return nil
}

func (s *Store) GetOfferStats(ctx context.Context, contextKey string) (map[string]domain.OfferVariantStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := map[string]domain.OfferVariantStats{}
	for k, v := range s.offerStats {
		if k.contextKey == contextKey {
			out[k.variantID] = v
		}
	}
	return out, nil
}

func (s *Store) IncrementOfferStats(ctx context.Context, contextKey, variantID string, d domain.StatsDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	k := statKey{contextKey, variantID}
	st := s.offerStats[k]
	st.ContextKey, st.VariantID = contextKey, variantID
	st.Shows += d.Shows
	st.Successes += d.Successes
	st.SuccessPurchase += d.SuccessPurchase
	st.NetRevenueSumCents += d.NetRevenueCents
	st.UpdatedAtMs = d.AtMs
	s.offerStats[k] = st
	return nil
}

func (s *Store) ListOfferStats(ctx context.Context) ([]domain.OfferVariantStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.OfferVariantStats, 0, len(s.offerStats))
	for _, v := range s.offerStats {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContextKey != out[j].ContextKey {
			return out[i].ContextKey < out[j].ContextKey
		}
		return out[i].VariantID < out[j].VariantID
	})
	return out, nil
}

// ---- impressions ----

func (s *Store) CreatePriceImpression(ctx context.Context, imp domain.PriceImpression) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceImps[imp.ImpressionID] = imp
	return nil
}

func (s *Store) GetPriceImpression(ctx context.Context, impressionID string) (domain.PriceImpression, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.PriceImpression{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.priceImps[impressionID]
	return imp, ok, nil
}

func (s *Store) MarkPriceAttributed(ctx context.Context, impressionID string, outcome domain.Outcome) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.priceImps[impressionID]
	if !ok || imp.IsAttributed(outcome) {
		return false, nil
	}
	switch outcome {
	case domain.OutcomeAddToCart:
		imp.AttributedAddToCart = true
		imp.Attributed = true
	case domain.OutcomeBeginCheckout:
		imp.AttributedBeginCheckout = true
	case domain.OutcomePurchase:
		imp.AttributedPurchase = true
	default:
		return false, nil
	}
	s.priceImps[impressionID] = imp
	return true, nil
}

func (s *Store) ListPriceImpressions(ctx context.Context, startMs, endMs int64) ([]domain.PriceImpression, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.PriceImpression
	for _, imp := range s.priceImps {
		if imp.ShownAtMs >= startMs && imp.ShownAtMs <= endMs {
			out = append(out, imp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShownAtMs < out[j].ShownAtMs })
	return out, nil
}

func (s *Store) CreateOfferImpression(ctx context.Context, imp domain.OfferImpression) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offerImps[imp.OfferImpressionID] = imp
	return nil
}

func (s *Store) GetOfferImpression(ctx context.Context, offerImpressionID string) (domain.OfferImpression, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.OfferImpression{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.offerImps[offerImpressionID]
	return imp, ok, nil
}

func (s *Store) MarkOfferPurchased(ctx context.Context, offerImpressionID string, orderValueCents, netRevenueCents, purchasedAtMs int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	imp, ok := s.offerImps[offerImpressionID]
	if !ok || imp.AttributedPurchase {
		return false, nil
	}
	imp.AttributedPurchase = true
	imp.OrderValueCents = orderValueCents
	imp.NetRevenueCents = netRevenueCents
	imp.PurchasedAtMs = purchasedAtMs
	s.offerImps[offerImpressionID] = imp
	return true, nil
}

func (s *Store) ListOfferImpressions(ctx context.Context, startMs, endMs int64) ([]domain.OfferImpression, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.OfferImpression
	for _, imp := range s.offerImps {
		if imp.ShownAtMs >= startMs && imp.ShownAtMs <= endMs {
			out = append(out, imp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShownAtMs < out[j].ShownAtMs })
	return out, nil
}

// ---- daily rollups ----

func (s *Store) IncrementDailyStat(ctx context.Context, dayKey, field string, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.daily[dayKey] == nil {
		s.daily[dayKey] = map[string]int64{}
	}
	s.daily[dayKey][field] += amount
	return nil
}

func (s *Store) SetDailyStat(ctx context.Context, stat domain.DailyStat) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	counters := make(map[string]int64, len(stat.Counters))
	for k, v := range stat.Counters {
		counters[k] = v
	}
	s.daily[stat.DayKey] = counters
	return nil
}

func (s *Store) GetDailyStats(ctx context.Context, startDay, endDay string) ([]domain.DailyStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.DailyStat
	for day, counters := range s.daily {
		if day < startDay || day > endDay {
			continue
		}
		c := make(map[string]int64, len(counters))
		for k, v := range counters {
			c[k] = v
		}
		out = append(out, domain.DailyStat{DayKey: day, Counters: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayKey < out[j].DayKey })
	return out, nil
}

// ---- runtime config ----

func (s *Store) GetConfig(ctx context.Context, bandit string) (domain.BanditConfig, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.BanditConfig{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.configs[bandit]
	return cfg, ok, nil
}

func (s *Store) UpsertConfig(ctx context.Context, cfg domain.BanditConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg.UpdatedAt = time.Now()
	s.configs[cfg.Bandit] = cfg
	return nil
}
