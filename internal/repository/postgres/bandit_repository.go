package postgres

import (
	"context"
	"fmt"

	"smartPricing/business/bandit"
	"smartPricing/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const statsBatchSize = 490

// BanditStatsRepository keeps price and offer variant counters. Increments are single
// INSERT .. ON CONFLICT DO UPDATE statements so concurrent writers never lose updates.
type BanditStatsRepository struct {
	DB *gorm.DB
}

var _ bandit.StatsRepository = (*BanditStatsRepository)(nil)

func NewBanditStatsRepository(db *gorm.DB) *BanditStatsRepository {
	return &BanditStatsRepository{DB: db}
}

// ---- price ----

func (r *BanditStatsRepository) GetPriceStats(ctx context.Context, contextKey string) (map[string]domain.VariantStats, error) {
	var rows []domain.VariantStats
	if err := r.DB.WithContext(ctx).
		Where("context_key = ?", contextKey).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query bandit_stats: %w", err)
	}

	out := make(map[string]domain.VariantStats, len(rows))
	for _, row := range rows {
		out[row.VariantID] = row
	}
	return out, nil
}

func (r *BanditStatsRepository) IncrementPriceStats(ctx context.Context, contextKey, variantID string, d domain.StatsDelta) error {
	row := domain.VariantStats{
		ContextKey:           contextKey,
		VariantID:            variantID,
		Shows:                d.Shows,
		Successes:            d.Successes,
		SuccessAddToCart:     d.SuccessAddToCart,
		SuccessBeginCheckout: d.SuccessBeginCheckout,
		SuccessPurchase:      d.SuccessPurchase,
		UpdatedAtMs:          d.AtMs,
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "context_key"}, {Name: "variant_id"}},
			DoUpdates: incrementColumns("bandit_stats",
				"shows",
				"successes",
				"success_add_to_cart",
				"success_begin_checkout",
				"success_purchase",
			),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment bandit_stats: %w", err)
	}
	return nil
}

func (r *BanditStatsRepository) ListPriceStats(ctx context.Context) ([]domain.VariantStats, error) {
	var rows []domain.VariantStats
	if err := r.DB.WithContext(ctx).
		Order("context_key, variant_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list bandit_stats: %w", err)
	}
	return rows, nil
}

// SetPriceStats overwrites whole rows, used by the simulator.
func (r *BanditStatsRepository) SetPriceStats(ctx context.Context, stats []domain.VariantStats) error {
	if len(stats) == 0 {
		return nil
	}
	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "context_key"}, {Name: "variant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shows",
				"successes",
				"success_add_to_cart",
				"success_begin_checkout",
				"success_purchase",
				"updated_at_ms",
			}),
		}).
		CreateInBatches(stats, statsBatchSize).Error
	if err != nil {
		return fmt.Errorf("failed to set bandit_stats: %w", err)
	}
	return nil
}

// ---- offer ----

func (r *BanditStatsRepository) GetOfferStats(ctx context.Context, contextKey string) (map[string]domain.OfferVariantStats, error) {
	var rows []domain.OfferVariantStats
	if err := r.DB.WithContext(ctx).
		Where("context_key = ?", contextKey).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query offer_bandit_stats: %w", err)
	}

	out := make(map[string]domain.OfferVariantStats, len(rows))
	for _, row := range rows {
		out[row.VariantID] = row
	}
	return out, nil
}

func (r *BanditStatsRepository) IncrementOfferStats(ctx context.Context, contextKey, variantID string, d domain.StatsDelta) error {
	row := domain.OfferVariantStats{
		ContextKey:         contextKey,
		VariantID:          variantID,
		Shows:              d.Shows,
		Successes:          d.Successes,
		SuccessPurchase:    d.SuccessPurchase,
		NetRevenueSumCents: d.NetRevenueCents,
		UpdatedAtMs:        d.AtMs,
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "context_key"}, {Name: "variant_id"}},
			DoUpdates: incrementColumns("offer_bandit_stats",
				"shows",
				"successes",
				"success_purchase",
				"net_revenue_sum_cents",
			),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment offer_bandit_stats: %w", err)
	}
	return nil
}

func (r *BanditStatsRepository) ListOfferStats(ctx context.Context) ([]domain.OfferVariantStats, error) {
	var rows []domain.OfferVariantStats
	if err := r.DB.WithContext(ctx).
		Order("context_key, variant_id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list offer_bandit_stats: %w", err)
	}
	return rows, nil
}

// incrementColumns builds "col = table.col + excluded.col" for each counter and
// refreshes updated_at_ms.
func incrementColumns(table string, cols ...string) clause.Set {
	set := make(clause.Set, 0, len(cols)+1)
	for _, col := range cols {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr(fmt.Sprintf("%s.%s + excluded.%s", table, col, col)),
		})
	}
	return append(set, clause.Assignment{
		Column: clause.Column{Name: "updated_at_ms"},
		Value:  gorm.Expr("excluded.updated_at_ms"),
	})
}
