package domain

import "time"

// Decision event types published on the event stream.
const (
	EventPriceQuoted     = "price_quoted"
	EventOfferShown      = "offer_shown"
	EventOutcomeRecorded = "outcome_recorded"
)

// DecisionEvent describes one bandit decision or one successful attribution.
type DecisionEvent struct {
	Type           string    `json:"type"`
	Bandit         string    `json:"bandit"`
	ImpressionID   string    `json:"impression_id"`
	InstallationID string    `json:"installation_id"`
	ContextKey     string    `json:"context_key"`
	VariantID      string    `json:"variant_id"`
	Policy         string    `json:"policy,omitempty"`
	Outcome        Outcome   `json:"outcome,omitempty"`
	ValueCents     int64     `json:"value_cents,omitempty"`
	TraceID        string    `json:"trace_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// SimulationSummary is returned after seeding synthetic bandit data.
type SimulationSummary struct {
	TotalContexts     int      `json:"total_contexts"`
	TotalVariantCells int      `json:"total_variant_cells"`
	TotalShows        int64    `json:"total_shows"`
	ShowsPerCell      int      `json:"shows_per_cell"`
	DailyStatsDays    int      `json:"daily_stats_days"`
	Regions           []string `json:"regions"`
	Tiers             []string `json:"tiers"`
	CartBuckets       []string `json:"cart_buckets"`
}
