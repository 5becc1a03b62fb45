package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"smartPricing/pkg/config"
)

func TestNewOptions(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{Name: "Smart Pricing API"},
		Redis: config.RedisConfig{
			RedisHost:     "cache.internal",
			RedisPort:     "6380",
			RedisUsername: "pricing",
			RedisPassword: "pw",
			RedisDB:       3,
			PoolSize:      12,
		},
	}

	opts := newOptions(cfg)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "smart-pricing-api", opts.ClientName)
	assert.Equal(t, "pricing", opts.Username)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
	assert.Equal(t, 12, opts.PoolSize)
	assert.Equal(t, 3, opts.MinIdleConns)
	assert.Equal(t, time.Second, opts.ReadTimeout)
}

func TestNewOptionsIPv6AndSmallPool(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{RedisHost: "::1", RedisPort: "6379", PoolSize: 2},
	}

	opts := newOptions(cfg)
	assert.Equal(t, "[::1]:6379", opts.Addr)
	assert.Equal(t, 1, opts.MinIdleConns)
	assert.Empty(t, opts.ClientName)
}
