package domain

import "gorm.io/datatypes"

// Offer bandit variants.
const (
	OfferO0  = "O0"
	OfferO5  = "O5"
	OfferO10 = "O10"
)

// Gate decisions.
const (
	GateNoOffer    = "no_offer"
	GateBandit     = "bandit"
	GateForceOffer = "force_offer"
)

// Timing decisions.
const (
	TimingOnViewCart = "on_view_cart"
	TimingDelayed    = "delayed"
)

// OfferVariantStats holds the counters of one discount tier under one offer context key
// (context key with the propensity bucket appended).
type OfferVariantStats struct {
	ContextKey string `gorm:"column:context_key;primaryKey" json:"context_key"`
	VariantID  string `gorm:"column:variant_id;primaryKey" json:"variant_id"`

	Shows              int64 `gorm:"column:shows;not null;default:0" json:"shows"`
	Successes          int64 `gorm:"column:successes;not null;default:0" json:"successes"`
	SuccessPurchase    int64 `gorm:"column:success_purchase;not null;default:0" json:"success_purchase"`
	NetRevenueSumCents int64 `gorm:"column:net_revenue_sum_cents;not null;default:0" json:"net_revenue_sum_cents"`

	UpdatedAtMs int64 `gorm:"column:updated_at_ms" json:"updated_at_ms"`
}

func (OfferVariantStats) TableName() string {
	return "offer_bandit_stats"
}

type OfferImpression struct {
	OfferImpressionID string `gorm:"column:offer_impression_id;primaryKey" json:"offer_impression_id"`
	InstallationID    string `gorm:"column:installation_id;not null" json:"installation_id"`
	OfferContextKey   string `gorm:"column:offer_context_key;not null" json:"offer_context_key"`
	VariantID         string `gorm:"column:variant_id;not null" json:"variant_id"`

	CartTotalCents  int64   `gorm:"column:cart_total_cents" json:"cart_total_cents"`
	DiscountPercent float64 `gorm:"column:discount_percent" json:"discount_percent"`
	DiscountCents   int64   `gorm:"column:discount_cents" json:"discount_cents"`
	FinalTotalCents int64   `gorm:"column:final_total_cents" json:"final_total_cents"`

	Policy          string                      `gorm:"column:policy" json:"policy"`
	PropensityScore float64                     `gorm:"column:propensity_score" json:"propensity_score"`
	PropBucket      string                      `gorm:"column:prop_bucket" json:"prop_bucket"`
	GateDecision    string                      `gorm:"column:gate_decision" json:"gate_decision"`
	EligibleOffers  datatypes.JSONSlice[string] `gorm:"column:eligible_offers" json:"eligible_offers"`
	TimingDecision  string                      `gorm:"column:timing_decision" json:"timing_decision"`

	ShownAtMs           int64 `gorm:"column:shown_at;index" json:"shown_at"`
	ExpiresAtMs         int64 `gorm:"column:expires_at" json:"expires_at"`
	PurchaseExpiresAtMs int64 `gorm:"column:purchase_expires_at" json:"purchase_expires_at"`

	AttributedPurchase bool  `gorm:"column:attributed_purchase;not null;default:false" json:"attributed_purchase"`
	OrderValueCents    int64 `gorm:"column:order_value_cents" json:"order_value_cents"`
	NetRevenueCents    int64 `gorm:"column:net_revenue_cents" json:"net_revenue_cents"`
	PurchasedAtMs      int64 `gorm:"column:purchased_at" json:"purchased_at"`
}

func (OfferImpression) TableName() string {
	return "cart_offer_impressions"
}

// CartFeatures are the behavioural signals of a cart view after defaults were applied.
type CartFeatures struct {
	CartItemsCount       int
	NumCartOpens         int
	TimeInCartSec        int
	RemovedItemsCount    int
	BeginCheckoutClicked bool
}

type (
	CartOfferRequest struct {
		InstallationID       string `json:"installationId" validate:"required"`
		CartTotalCents       int64  `json:"cartTotalCents" validate:"gte=0"`
		OfferContextKey      string `json:"offerContextKey" validate:"required"`
		CartItemsCount       *int   `json:"cartItemsCount,omitempty" validate:"omitempty,gte=0"`
		NumCartOpens         *int   `json:"numCartOpens,omitempty" validate:"omitempty,gte=0"`
		TimeInCartSec        *int   `json:"timeInCartSec,omitempty" validate:"omitempty,gte=0"`
		RemovedItemsCount    *int   `json:"removedItemsCount,omitempty" validate:"omitempty,gte=0"`
		BeginCheckoutClicked *bool  `json:"beginCheckoutClicked,omitempty"`
	}

	CartOffer struct {
		OfferImpressionID string  `json:"offerImpressionId"`
		VariantID         string  `json:"variantId"`
		DiscountPercent   float64 `json:"discountPercent"`
		DiscountCents     int64   `json:"discountCents"`
		FinalTotalCents   int64   `json:"finalTotalCents"`
		Policy            string  `json:"policy"`
		TimingDecision    string  `json:"timingDecision"`
		PropBucket        string  `json:"propBucket"`
		RetryAfterSec     int     `json:"retryAfterSec,omitempty"`
	}

	OfferPurchaseOutcomeRequest struct {
		InstallationID    string `json:"installationId" validate:"required"`
		OfferImpressionID string `json:"offerImpressionId" validate:"required"`
		ValueCents        *int64 `json:"valueCents,omitempty" validate:"omitempty,gte=0"`
	}
)

// Features applies the request defaults for absent signals.
func (r CartOfferRequest) Features() CartFeatures {
	f := CartFeatures{NumCartOpens: 1}
	if r.CartItemsCount != nil {
		f.CartItemsCount = *r.CartItemsCount
	}
	if r.NumCartOpens != nil {
		f.NumCartOpens = *r.NumCartOpens
	}
	if r.TimeInCartSec != nil {
		f.TimeInCartSec = *r.TimeInCartSec
	}
	if r.RemovedItemsCount != nil {
		f.RemovedItemsCount = *r.RemovedItemsCount
	}
	if r.BeginCheckoutClicked != nil {
		f.BeginCheckoutClicked = *r.BeginCheckoutClicked
	}
	return f
}
