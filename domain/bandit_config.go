package domain

import "time"

// BanditConfig is a runtime override row for one bandit. Nil fields keep the
// file/default value.
type BanditConfig struct {
	Bandit string `json:"bandit" gorm:"column:bandit;primaryKey" validate:"required,oneof=price offer"`

	Epsilon      *float64 `json:"epsilon,omitempty" gorm:"column:epsilon" validate:"omitempty,gte=0,lte=1"`
	MinBootstrap *int64   `json:"min_bootstrap,omitempty" gorm:"column:min_bootstrap" validate:"omitempty,gte=0"`
	// offer only
	Lambda *float64 `json:"lambda,omitempty" gorm:"column:lambda" validate:"omitempty,gte=0"`

	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (BanditConfig) TableName() string {
	return "bandit_config"
}
