package bandit

import (
	"context"
	"errors"
	"time"

	"smartPricing/domain"
	"smartPricing/internal/repository/memory"
)

// scriptedSource replays fixed draws, then falls through to next (or 0.5).
type scriptedSource struct {
	vals []float64
	i    int
	next Source
}

func (s *scriptedSource) Float64() float64 {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return v
	}
	if s.next != nil {
		return s.next.Float64()
	}
	return 0.5
}

func script(vals ...float64) *scriptedSource {
	return &scriptedSource{vals: vals}
}

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

type clock struct{ at time.Time }

func (c *clock) now() time.Time { return c.at }

func newTestService(store *memory.Store, src Source, c *clock) *BanditService {
	cfg := DefaultConfig()
	cfg.Location = time.UTC
	return NewBanditService(store, store, store, store, nil, NewSampler(src), cfg).WithClock(c.now)
}

var errStoreDown = errors.New("store down")

// failingImpressions breaks impression reads.
type failingImpressions struct {
	*memory.Store
}

func (failingImpressions) GetPriceImpression(context.Context, string) (domain.PriceImpression, bool, error) {
	return domain.PriceImpression{}, false, errStoreDown
}

func (failingImpressions) GetOfferImpression(context.Context, string) (domain.OfferImpression, bool, error) {
	return domain.OfferImpression{}, false, errStoreDown
}

// recordingPublisher keeps published events.
type recordingPublisher struct {
	events []domain.DecisionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev domain.DecisionEvent) error {
	p.events = append(p.events, ev)
	return nil
}
