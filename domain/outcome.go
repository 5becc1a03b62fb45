package domain

type Outcome string

const (
	OutcomeAddToCart     Outcome = "add_to_cart"
	OutcomeBeginCheckout Outcome = "begin_checkout"
	OutcomePurchase      Outcome = "purchase"
)

// Rejection reasons returned by outcome calls.
const (
	ReasonImpressionNotFound      = "impression_not_found"
	ReasonOfferImpressionNotFound = "offer_impression_not_found"
	ReasonInstallationMismatch    = "installation_mismatch"
	ReasonProductMismatch         = "product_mismatch"
	ReasonImpressionExpired       = "impression_expired"
	ReasonPurchaseWindowExpired   = "purchase_window_expired"
	ReasonOfferPurchaseExpired    = "offer_purchase_expired"
	ReasonInternalError           = "internal_error"
	ReasonInvalidRequest          = "invalid_request"
)

// AlreadyAttributedReason is the rejection reason for a duplicate outcome.
func AlreadyAttributedReason(o Outcome) string {
	return "already_attributed_" + string(o)
}

type OutcomeResult struct {
	Success    bool   `json:"success"`
	Reason     string `json:"reason,omitempty"`
	ContextKey string `json:"contextKey,omitempty"`
	VariantID  string `json:"variantId,omitempty"`
}

type OfferOutcomeResult struct {
	Success         bool   `json:"success"`
	Reason          string `json:"reason,omitempty"`
	VariantID       string `json:"variantId,omitempty"`
	NetRevenueCents int64  `json:"netRevenueCents"`
}
