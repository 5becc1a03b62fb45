package postgres

import (
	"context"
	"fmt"
	"time"

	"smartPricing/business/bandit"
	"smartPricing/business/report"
	"smartPricing/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// one row per (day, counter name)
type dailyStatRow struct {
	DayKey      string `gorm:"column:day_key;primaryKey"`
	Field       string `gorm:"column:field;primaryKey"`
	Value       int64  `gorm:"column:value;not null;default:0"`
	UpdatedAtMs int64  `gorm:"column:updated_at_ms"`
}

func (dailyStatRow) TableName() string {
	return "daily_variant_stats"
}

type DailyStatRepository struct {
	DB *gorm.DB
}

var (
	_ bandit.DailyStatRepository = (*DailyStatRepository)(nil)
	_ report.DailyStatRepository = (*DailyStatRepository)(nil)
)

func NewDailyStatRepository(db *gorm.DB) *DailyStatRepository {
	return &DailyStatRepository{DB: db}
}

func (r *DailyStatRepository) IncrementDailyStat(ctx context.Context, dayKey, field string, amount int64) error {
	row := dailyStatRow{DayKey: dayKey, Field: field, Value: amount, UpdatedAtMs: time.Now().UnixMilli()}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "day_key"}, {Name: "field"}},
			DoUpdates: incrementColumns("daily_variant_stats", "value"),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to increment daily_variant_stats: %w", err)
	}
	return nil
}

// SetDailyStat replaces every counter of a day.
func (r *DailyStatRepository) SetDailyStat(ctx context.Context, stat domain.DailyStat) error {
	nowMs := time.Now().UnixMilli()
	rows := make([]dailyStatRow, 0, len(stat.Counters))
	for field, v := range stat.Counters {
		rows = append(rows, dailyStatRow{DayKey: stat.DayKey, Field: field, Value: v, UpdatedAtMs: nowMs})
	}

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("day_key = ?", stat.DayKey).Delete(&dailyStatRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear daily_variant_stats: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to write daily_variant_stats: %w", err)
		}
		return nil
	})
}

func (r *DailyStatRepository) GetDailyStats(ctx context.Context, startDay, endDay string) ([]domain.DailyStat, error) {
	var rows []dailyStatRow
	if err := r.DB.WithContext(ctx).
		Where("day_key >= ? AND day_key <= ?", startDay, endDay).
		Order("day_key").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily_variant_stats: %w", err)
	}

	var out []domain.DailyStat
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].DayKey != row.DayKey {
			out = append(out, domain.DailyStat{DayKey: row.DayKey, Counters: map[string]int64{}})
		}
		out[len(out)-1].Counters[row.Field] = row.Value
	}
	return out, nil
}
