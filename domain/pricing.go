package domain

// Price bandit variants.
const (
	VariantA = "A"
	VariantB = "B"
	VariantC = "C"
)

// Decision policies reported with every quote or offer.
const (
	PolicyExplore   = "explore"
	PolicyBootstrap = "bootstrap"
	PolicyThompson  = "thompson"
	PolicyNoOffer   = "no_offer"
)

// Bandit names, used as partition for runtime config, metrics and events.
const (
	BanditPrice = "price"
	BanditOffer = "offer"
)

// VariantStats holds the counters of one price variant under one context key.
//
// CREATE TABLE bandit_stats (
//
//	context_key             TEXT NOT NULL,
//	variant_id              TEXT NOT NULL,
//	shows                   BIGINT NOT NULL DEFAULT 0,
//	successes               BIGINT NOT NULL DEFAULT 0,
//	success_add_to_cart     BIGINT NOT NULL DEFAULT 0,
//	success_begin_checkout  BIGINT NOT NULL DEFAULT 0,
//	success_purchase        BIGINT NOT NULL DEFAULT 0,
//	updated_at_ms           BIGINT,
//	PRIMARY KEY (context_key, variant_id)
//
// );
type VariantStats struct {
	ContextKey string `gorm:"column:context_key;primaryKey" json:"context_key"`
	VariantID  string `gorm:"column:variant_id;primaryKey" json:"variant_id"`

	Shows int64 `gorm:"column:shows;not null;default:0" json:"shows"`
	// legacy combined counter, moves together with SuccessAddToCart
	Successes            int64 `gorm:"column:successes;not null;default:0" json:"successes"`
	SuccessAddToCart     int64 `gorm:"column:success_add_to_cart;not null;default:0" json:"success_add_to_cart"`
	SuccessBeginCheckout int64 `gorm:"column:success_begin_checkout;not null;default:0" json:"success_begin_checkout"`
	SuccessPurchase      int64 `gorm:"column:success_purchase;not null;default:0" json:"success_purchase"`

	UpdatedAtMs int64 `gorm:"column:updated_at_ms" json:"updated_at_ms"`
}

func (VariantStats) TableName() string {
	return "bandit_stats"
}

// StatsDelta is the set of increments applied atomically to a variant stats record.
type StatsDelta struct {
	Shows                int64
	Successes            int64
	SuccessAddToCart     int64
	SuccessBeginCheckout int64
	SuccessPurchase      int64
	NetRevenueCents      int64
	AtMs                 int64
}

// PriceImpression is one quote shown to an installation, kept for later attribution.
type PriceImpression struct {
	ImpressionID   string `gorm:"column:impression_id;primaryKey" json:"impression_id"`
	InstallationID string `gorm:"column:installation_id;not null" json:"installation_id"`
	ProductID      string `gorm:"column:product_id;not null" json:"product_id"`
	ContextKey     string `gorm:"column:context_key;not null" json:"context_key"`
	VariantID      string `gorm:"column:variant_id;not null" json:"variant_id"`
	PriceCents     int64  `gorm:"column:price_cents;not null" json:"price_cents"`
	Policy         string `gorm:"column:policy" json:"policy"`

	ShownAtMs   int64 `gorm:"column:shown_at;index" json:"shown_at"`
	ExpiresAtMs int64 `gorm:"column:expires_at" json:"expires_at"`
	// zero when the record predates the purchase window
	PurchaseExpiresAtMs int64 `gorm:"column:purchase_expires_at" json:"purchase_expires_at"`

	Attributed              bool `gorm:"column:attributed;not null;default:false" json:"attributed"`
	AttributedAddToCart     bool `gorm:"column:attributed_add_to_cart;not null;default:false" json:"attributed_add_to_cart"`
	AttributedBeginCheckout bool `gorm:"column:attributed_begin_checkout;not null;default:false" json:"attributed_begin_checkout"`
	AttributedPurchase      bool `gorm:"column:attributed_purchase;not null;default:false" json:"attributed_purchase"`
}

func (PriceImpression) TableName() string {
	return "price_impressions"
}

// IsAttributed reports whether the given outcome was already credited to this impression.
func (p PriceImpression) IsAttributed(o Outcome) bool {
	switch o {
	case OutcomeAddToCart:
		return p.AttributedAddToCart
	case OutcomeBeginCheckout:
		return p.AttributedBeginCheckout
	case OutcomePurchase:
		return p.AttributedPurchase
	}
	return false
}

type (
	PriceQuoteRequest struct {
		InstallationID string `json:"installationId" validate:"required"`
		ProductID      string `json:"productId" validate:"required"`
		BasePriceCents int64  `json:"basePriceCents" validate:"gte=0"`
		ContextKey     string `json:"contextKey" validate:"required"`
	}

	PriceQuote struct {
		ImpressionID string `json:"impressionId"`
		VariantID    string `json:"variantId"`
		PriceCents   int64  `json:"priceCents"`
		ValidUntil   int64  `json:"validUntil"`
		Policy       string `json:"policy"`
	}

	AddToCartOutcomeRequest struct {
		InstallationID string `json:"installationId" validate:"required"`
		ProductID      string `json:"productId" validate:"required"`
		ImpressionID   string `json:"impressionId" validate:"required"`
	}

	BeginCheckoutOutcomeRequest struct {
		InstallationID string `json:"installationId" validate:"required"`
		ImpressionID   string `json:"impressionId" validate:"required"`
	}

	PurchaseOutcomeRequest struct {
		InstallationID string `json:"installationId" validate:"required"`
		ImpressionID   string `json:"impressionId" validate:"required"`
		ValueCents     *int64 `json:"valueCents,omitempty" validate:"omitempty,gte=0"`
		ItemsCount     *int   `json:"itemsCount,omitempty" validate:"omitempty,gte=0"`
	}
)
