package postgres

import (
	"fmt"

	"smartPricing/domain"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the engine writes to.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.VariantStats{},
		&domain.OfferVariantStats{},
		&domain.PriceImpression{},
		&domain.OfferImpression{},
		&domain.BanditConfig{},
		&dailyStatRow{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
