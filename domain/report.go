package domain

// Report sources.
const (
	SourceDailyStats           = "daily_variant_stats"
	SourcePriceImpressions     = "price_impressions"
	SourceCartOfferImpressions = "cart_offer_impressions"
)

// DailyStat is the rollup document of one day: sparse counters such as shows_A,
// purchases_B, revenue_C or offer_net_revenue_O5.
type DailyStat struct {
	DayKey   string           `json:"day_key"`
	Counters map[string]int64 `json:"counters"`
}

type SummaryRequest struct {
	StartMs *int64 `query:"start_ms"`
	EndMs   *int64 `query:"end_ms"`
}

type ReportWindow struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

type SalesTotals struct {
	Shows        int64   `json:"shows"`
	Purchases    int64   `json:"purchases"`
	RevenueCents int64   `json:"revenue_cents"`
	OverallRate  float64 `json:"overall_rate"`
}

type SalesSummary struct {
	Window       ReportWindow       `json:"window"`
	Shows        map[string]int64   `json:"shows"`
	Purchases    map[string]int64   `json:"purchases"`
	PurchaseRate map[string]float64 `json:"purchase_rate"`
	RevenueCents map[string]int64   `json:"revenue_cents"`
	Totals       SalesTotals        `json:"totals"`
	Source       string             `json:"source"`
	DaysCounted  int                `json:"days_counted"`
}

type OfferTotals struct {
	Shows           int64   `json:"shows"`
	Purchases       int64   `json:"purchases"`
	NetRevenueCents int64   `json:"net_revenue_cents"`
	OverallRate     float64 `json:"overall_rate"`
}

type OfferSummary struct {
	Window          ReportWindow       `json:"window"`
	Shows           map[string]int64   `json:"shows"`
	Purchases       map[string]int64   `json:"purchases"`
	PurchaseRate    map[string]float64 `json:"purchase_rate"`
	NetRevenueCents map[string]int64   `json:"net_revenue_cents"`
	NetRevPerShow   map[string]int64   `json:"net_rev_per_show"`
	Totals          OfferTotals        `json:"totals"`
	Source          string             `json:"source"`
	DaysCounted     int                `json:"days_counted"`
}
