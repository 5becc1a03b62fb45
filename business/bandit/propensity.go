package bandit

import "smartPricing/domain"

// ComputePropensity scores checkout likelihood from cart signals and buckets it.
func ComputePropensity(f domain.CartFeatures) (float64, string) {
	var score float64
	switch {
	case f.BeginCheckoutClicked:
		score = 0.85
	case f.CartItemsCount >= 2:
		score = 0.60
	case f.CartItemsCount == 1:
		score = 0.45
	default:
		score = 0.15
	}

	if f.NumCartOpens >= 2 {
		score += 0.05
	}
	if f.RemovedItemsCount >= 1 {
		score -= 0.05
	}

	if score < 0.01 {
		score = 0.01
	}
	if score > 0.99 {
		score = 0.99
	}
	return score, PropensityBucket(score)
}

func PropensityBucket(score float64) string {
	switch {
	case score < 0.25:
		return "p0"
	case score < 0.50:
		return "p1"
	case score < 0.75:
		return "p2"
	default:
		return "p3"
	}
}

// ApplyGating decides whether an offer is shown and which tiers are eligible.
// Likely buyers get nothing, undecided carts go to the bandit, cold carts are forced
// to a discount.
func ApplyGating(score float64) (string, []string) {
	switch {
	case score >= 0.75:
		return domain.GateNoOffer, []string{domain.OfferO0}
	case score >= 0.40:
		return domain.GateBandit, []string{domain.OfferO0, domain.OfferO5}
	default:
		return domain.GateForceOffer, []string{domain.OfferO5, domain.OfferO10}
	}
}

// ApplyTiming delays the offer for low-propensity carts seen for the first time.
func ApplyTiming(score float64, timeInCartSec, numCartOpens int) string {
	if score >= 0.40 {
		return domain.TimingOnViewCart
	}
	if timeInCartSec < 15 && numCartOpens == 1 {
		return domain.TimingDelayed
	}
	return domain.TimingOnViewCart
}
