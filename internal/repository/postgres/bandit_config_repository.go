package postgres

import (
	"context"
	"errors"

	"smartPricing/business/bandit"
	"smartPricing/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BanditConfigRepository struct {
	DB *gorm.DB
}

var _ bandit.ConfigRepository = (*BanditConfigRepository)(nil)

func NewBanditConfigRepository(db *gorm.DB) *BanditConfigRepository {
	return &BanditConfigRepository{DB: db}
}

func (r *BanditConfigRepository) GetConfig(ctx context.Context, name string) (domain.BanditConfig, bool, error) {
	var cfg domain.BanditConfig

	err := r.DB.WithContext(ctx).
		Where("bandit = ?", name).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.BanditConfig{}, false, nil
	}
	if err != nil {
		return domain.BanditConfig{}, false, err
	}
	return cfg, true, nil
}

func (r *BanditConfigRepository) UpsertConfig(ctx context.Context, cfg domain.BanditConfig) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bandit"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"epsilon",
				"min_bootstrap",
				"lambda",
				"updated_at",
			}),
		}).
		Create(&cfg).Error
}
