package bandit

import (
	"context"
	"fmt"

	"smartPricing/domain"
	"smartPricing/pkg/logger"
)

// loadConfig returns defaultCfg with the runtime overrides of one bandit applied.
// A missing row or a failing repository keeps the defaults.
func (s *BanditService) loadConfig(ctx context.Context, bandit string) Config {
	if s.cfgRepo == nil {
		return s.defaultCfg
	}

	dbCfg, ok, err := s.cfgRepo.GetConfig(ctx, bandit)
	if err != nil {
		logger.Warn("bandit_config_load_failed", "bandit", bandit, "error", err)
		return s.defaultCfg
	}
	if !ok {
		return s.defaultCfg
	}

	cfg := s.defaultCfg
	switch bandit {
	case domain.BanditPrice:
		if dbCfg.Epsilon != nil {
			cfg.Epsilon = *dbCfg.Epsilon
		}
		if dbCfg.MinBootstrap != nil {
			cfg.MinBootstrap = *dbCfg.MinBootstrap
		}
	case domain.BanditOffer:
		if dbCfg.Epsilon != nil {
			cfg.OfferEpsilon = *dbCfg.Epsilon
		}
		if dbCfg.MinBootstrap != nil {
			cfg.OfferMinBootstrap = *dbCfg.MinBootstrap
		}
		if dbCfg.Lambda != nil {
			cfg.OfferLambda = *dbCfg.Lambda
		}
	}
	return cfg
}

// GetConfig returns the stored override row for a bandit, or an empty row.
func (s *BanditService) GetConfig(ctx context.Context, bandit string) (domain.BanditConfig, error) {
	if err := validBandit(bandit); err != nil {
		return domain.BanditConfig{}, err
	}
	if s.cfgRepo == nil {
		return domain.BanditConfig{Bandit: bandit}, nil
	}
	cfg, ok, err := s.cfgRepo.GetConfig(ctx, bandit)
	if err != nil {
		return domain.BanditConfig{}, fmt.Errorf("get bandit config: %w", err)
	}
	if !ok {
		return domain.BanditConfig{Bandit: bandit}, nil
	}
	return cfg, nil
}

// UpdateConfig stores runtime overrides; they apply from the next decision on.
func (s *BanditService) UpdateConfig(ctx context.Context, cfg domain.BanditConfig) error {
	if err := validBandit(cfg.Bandit); err != nil {
		return err
	}
	if s.cfgRepo == nil {
		return fmt.Errorf("%w: runtime config store not configured", ErrInvalidRequest)
	}
	if cfg.Bandit == domain.BanditPrice && cfg.Lambda != nil {
		return fmt.Errorf("%w: lambda only applies to the offer bandit", ErrInvalidRequest)
	}
	if err := s.cfgRepo.UpsertConfig(ctx, cfg); err != nil {
		return fmt.Errorf("upsert bandit config: %w", err)
	}
	logger.Info("bandit_config_updated", "bandit", cfg.Bandit, "trace_id", TraceIDFromContext(ctx))
	return nil
}

func validBandit(bandit string) error {
	if bandit != domain.BanditPrice && bandit != domain.BanditOffer {
		return fmt.Errorf("%w: unknown bandit %q", ErrInvalidRequest, bandit)
	}
	return nil
}
