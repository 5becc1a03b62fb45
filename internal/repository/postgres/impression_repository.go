package postgres

import (
	"context"
	"errors"
	"fmt"

	"smartPricing/business/bandit"
	"smartPricing/business/report"
	"smartPricing/domain"

	"gorm.io/gorm"
)

type ImpressionRepository struct {
	DB *gorm.DB
}

var (
	_ bandit.ImpressionRepository = (*ImpressionRepository)(nil)
	_ report.ImpressionRepository = (*ImpressionRepository)(nil)
)

func NewImpressionRepository(db *gorm.DB) *ImpressionRepository {
	return &ImpressionRepository{DB: db}
}

var attributionColumns = map[domain.Outcome]string{
	domain.OutcomeAddToCart:     "attributed_add_to_cart",
	domain.OutcomeBeginCheckout: "attributed_begin_checkout",
	domain.OutcomePurchase:      "attributed_purchase",
}

// ---- price ----

func (r *ImpressionRepository) CreatePriceImpression(ctx context.Context, imp domain.PriceImpression) error {
	if err := r.DB.WithContext(ctx).Create(&imp).Error; err != nil {
		return fmt.Errorf("failed to save price impression: %w", err)
	}
	return nil
}

func (r *ImpressionRepository) GetPriceImpression(ctx context.Context, impressionID string) (domain.PriceImpression, bool, error) {
	var imp domain.PriceImpression
	err := r.DB.WithContext(ctx).First(&imp, "impression_id = ?", impressionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.PriceImpression{}, false, nil
	}
	if err != nil {
		return domain.PriceImpression{}, false, fmt.Errorf("failed to query price impression: %w", err)
	}
	return imp, true, nil
}

// MarkPriceAttributed flips the outcome flag only while it is still false. The
// legacy attributed flag follows add-to-cart.
func (r *ImpressionRepository) MarkPriceAttributed(ctx context.Context, impressionID string, outcome domain.Outcome) (bool, error) {
	col, ok := attributionColumns[outcome]
	if !ok {
		return false, fmt.Errorf("unknown outcome %q", outcome)
	}

	updates := map[string]any{col: true}
	if outcome == domain.OutcomeAddToCart {
		updates["attributed"] = true
	}

	res := r.DB.WithContext(ctx).
		Model(&domain.PriceImpression{}).
		Where("impression_id = ? AND "+col+" = ?", impressionID, false).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark price impression: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ImpressionRepository) ListPriceImpressions(ctx context.Context, startMs, endMs int64) ([]domain.PriceImpression, error) {
	var rows []domain.PriceImpression
	if err := r.DB.WithContext(ctx).
		Where("shown_at >= ? AND shown_at <= ?", startMs, endMs).
		Order("shown_at").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list price impressions: %w", err)
	}
	return rows, nil
}

// ---- offer ----

func (r *ImpressionRepository) CreateOfferImpression(ctx context.Context, imp domain.OfferImpression) error {
	if err := r.DB.WithContext(ctx).Create(&imp).Error; err != nil {
		return fmt.Errorf("failed to save offer impression: %w", err)
	}
	return nil
}

func (r *ImpressionRepository) GetOfferImpression(ctx context.Context, offerImpressionID string) (domain.OfferImpression, bool, error) {
	var imp domain.OfferImpression
	err := r.DB.WithContext(ctx).First(&imp, "offer_impression_id = ?", offerImpressionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.OfferImpression{}, false, nil
	}
	if err != nil {
		return domain.OfferImpression{}, false, fmt.Errorf("failed to query offer impression: %w", err)
	}
	return imp, true, nil
}

func (r *ImpressionRepository) MarkOfferPurchased(
	ctx context.Context,
	offerImpressionID string,
	orderValueCents, netRevenueCents, purchasedAtMs int64,
) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&domain.OfferImpression{}).
		Where("offer_impression_id = ? AND attributed_purchase = ?", offerImpressionID, false).
		Updates(map[string]any{
			"attributed_purchase": true,
			"order_value_cents":   orderValueCents,
			"net_revenue_cents":   netRevenueCents,
			"purchased_at":        purchasedAtMs,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark offer impression: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ImpressionRepository) ListOfferImpressions(ctx context.Context, startMs, endMs int64) ([]domain.OfferImpression, error) {
	var rows []domain.OfferImpression
	if err := r.DB.WithContext(ctx).
		Where("shown_at >= ? AND shown_at <= ?", startMs, endMs).
		Order("shown_at").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list offer impressions: %w", err)
	}
	return rows, nil
}
