package bandit

import (
	"fmt"
	"time"
)

const dayKeyLayout = "2006-01-02"

// DayKey formats t as the yyyy-mm-dd rollup key in loc.
func DayKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dayKeyLayout)
}

func dayKeyMs(ms int64, loc *time.Location) string {
	return DayKey(time.UnixMilli(ms), loc)
}

// CartBucket groups cart sizes: cart0, cart1_2 or cart3p.
func CartBucket(items int) string {
	switch {
	case items <= 0:
		return "cart0"
	case items <= 2:
		return "cart1_2"
	default:
		return "cart3p"
	}
}

// ContextKey composes region|tier|day_N|cartBucket.
func ContextKey(region, tier string, dayOfMonth, cartItems int) string {
	return fmt.Sprintf("%s|%s|day_%d|%s", region, tier, dayOfMonth, CartBucket(cartItems))
}

// OfferContextKey appends the propensity bucket to an offer context key.
func OfferContextKey(contextKey, propBucket string) string {
	return contextKey + "|" + propBucket
}

// daily rollup field names
func showsField(v string) string          { return "shows_" + v }
func purchasesField(v string) string      { return "purchases_" + v }
func revenueField(v string) string        { return "revenue_" + v }
func offerShowsField(v string) string     { return "offer_shows_" + v }
func offerPurchasesField(v string) string { return "offer_purchases_" + v }
func offerRevenueField(v string) string   { return "offer_revenue_" + v }
func offerNetRevenueField(v string) string {
	return "offer_net_revenue_" + v
}
