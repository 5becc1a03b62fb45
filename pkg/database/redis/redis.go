package redis

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartPricing/pkg/config"
)

const pingTimeout = 5 * time.Second

// newOptions maps the daily-rollup cache settings onto a client config.
func newOptions(cfg *config.Config) *redis.Options {
	minIdle := cfg.Redis.PoolSize / 4
	if minIdle < 1 {
		minIdle = 1
	}

	return &redis.Options{
		Addr:         net.JoinHostPort(cfg.Redis.RedisHost, cfg.Redis.RedisPort),
		ClientName:   strings.ReplaceAll(strings.ToLower(cfg.App.Name), " ", "-"),
		Username:     cfg.Redis.RedisUsername,
		Password:     cfg.Redis.RedisPassword,
		DB:           cfg.Redis.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: minIdle,
	}
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts := newOptions(cfg)
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis %s db %d: %w", opts.Addr, opts.DB, err)
	}

	return client, nil
}

// CloseRedisClient closes the Redis connection
func CloseRedisClient(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}

	return nil
}
