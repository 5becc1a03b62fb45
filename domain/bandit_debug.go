package domain

type PriceVariantView struct {
	Shows                int64  `json:"shows"`
	Successes            int64  `json:"successes"`
	SuccessAddToCart     int64  `json:"success_add_to_cart"`
	SuccessBeginCheckout int64  `json:"success_begin_checkout"`
	SuccessPurchase      int64  `json:"success_purchase"`
	RateAddToCart        string `json:"rate_add_to_cart,omitempty"` // "12.5%" or "N/A"
	RateBeginCheckout    string `json:"rate_begin_checkout,omitempty"`
	RatePurchase         string `json:"rate_purchase,omitempty"`
}

type OfferVariantView struct {
	Shows              int64  `json:"shows"`
	SuccessPurchase    int64  `json:"success_purchase"`
	NetRevenueSumCents int64  `json:"net_revenue_sum_cents"`
	RatePurchase       string `json:"rate_purchase,omitempty"`
	NetRevPerShow      int64  `json:"net_rev_per_show"`
}

// BanditStatsView is the inspection payload: context key -> variant -> counters.
type BanditStatsView struct {
	Bandit   string                                 `json:"bandit"`
	Contexts map[string]map[string]PriceVariantView `json:"contexts,omitempty"`
	Offers   map[string]map[string]OfferVariantView `json:"offers,omitempty"`
}
