package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// BanditTuning is the optional tuning file. Absent keys keep the built-in defaults.
//
//	price:
//	  epsilon: 0.1
//	  min_bootstrap: 9
//	  impression_ttl: 30m
//	  purchase_ttl: 24h
//	offer:
//	  epsilon: 0.1
//	  min_bootstrap: 9
//	  lambda: 0.3
//	  delayed_retry: 15s
type BanditTuning struct {
	Price PriceTuning `yaml:"price"`
	Offer OfferTuning `yaml:"offer"`
}

type PriceTuning struct {
	Epsilon       *float64      `yaml:"epsilon"`
	MinBootstrap  *int64        `yaml:"min_bootstrap"`
	ImpressionTTL time.Duration `yaml:"impression_ttl"`
	PurchaseTTL   time.Duration `yaml:"purchase_ttl"`
}

type OfferTuning struct {
	Epsilon       *float64      `yaml:"epsilon"`
	MinBootstrap  *int64        `yaml:"min_bootstrap"`
	Lambda        *float64      `yaml:"lambda"`
	ImpressionTTL time.Duration `yaml:"impression_ttl"`
	PurchaseTTL   time.Duration `yaml:"purchase_ttl"`
	DelayedRetry  time.Duration `yaml:"delayed_retry"`
}

// LoadBanditTuning reads the tuning file. An empty path yields an empty tuning.
func LoadBanditTuning(path string) (BanditTuning, error) {
	var t BanditTuning
	if path == "" {
		return t, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read bandit tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse bandit tuning: %w", err)
	}
	if err := t.validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t BanditTuning) validate() error {
	for name, eps := range map[string]*float64{"price.epsilon": t.Price.Epsilon, "offer.epsilon": t.Offer.Epsilon} {
		if eps != nil && (*eps < 0 || *eps > 1) {
			return fmt.Errorf("bandit tuning: %s must be within [0,1], got %v", name, *eps)
		}
	}
	for name, n := range map[string]*int64{"price.min_bootstrap": t.Price.MinBootstrap, "offer.min_bootstrap": t.Offer.MinBootstrap} {
		if n != nil && *n < 0 {
			return fmt.Errorf("bandit tuning: %s must not be negative", name)
		}
	}
	if t.Offer.Lambda != nil && *t.Offer.Lambda < 0 {
		return fmt.Errorf("bandit tuning: offer.lambda must not be negative")
	}
	return nil
}
