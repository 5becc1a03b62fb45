package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"smartPricing/business/bandit"
	"smartPricing/business/report"
	"smartPricing/domain"
)

const (
	dailyKeyPrefix = "daily_variant_stats:"
	dayLayout      = "2006-01-02"
	// longest range a single report may scan
	maxRangeDays = 3660
)

// DailyStatRepository keeps one hash per day; counters move with HINCRBY.
type DailyStatRepository struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	_ bandit.DailyStatRepository = (*DailyStatRepository)(nil)
	_ report.DailyStatRepository = (*DailyStatRepository)(nil)
)

// NewDailyStatRepository returns a Redis rollup store. A zero ttl keeps day hashes forever.
func NewDailyStatRepository(client *redis.Client, ttl time.Duration) *DailyStatRepository {
	return &DailyStatRepository{
		client: client,
		ttl:    ttl,
	}
}

func dailyKey(dayKey string) string {
	return dailyKeyPrefix + dayKey
}

func (r *DailyStatRepository) IncrementDailyStat(ctx context.Context, dayKey, field string, amount int64) error {
	key := dailyKey(dayKey)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, field, amount)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment %s in Redis: %w", key, err)
	}
	return nil
}

func (r *DailyStatRepository) SetDailyStat(ctx context.Context, stat domain.DailyStat) error {
	key := dailyKey(stat.DayKey)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(stat.Counters) == 0 {
			return nil
		}
		values := make(map[string]any, len(stat.Counters))
		for k, v := range stat.Counters {
			values[k] = v
		}
		pipe.HSet(ctx, key, values)
		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

// GetDailyStats reads every day hash in [startDay, endDay] in one pipeline and skips
// days without counters.
func (r *DailyStatRepository) GetDailyStats(ctx context.Context, startDay, endDay string) ([]domain.DailyStat, error) {
	days, err := dayRange(startDay, endDay)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(days))
	for i, day := range days {
		cmds[i] = pipe.HGetAll(ctx, dailyKey(day))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read daily stats from Redis: %w", err)
	}

	var out []domain.DailyStat
	for i, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read %s: %w", dailyKey(days[i]), err)
		}
		if len(raw) == 0 {
			continue
		}
		counters, err := parseCounters(raw)
		if err != nil {
			return nil, fmt.Errorf("bad counter in %s: %w", dailyKey(days[i]), err)
		}
		out = append(out, domain.DailyStat{DayKey: days[i], Counters: counters})
	}
	return out, nil
}

func parseCounters(raw map[string]string) (map[string]int64, error) {
	out := make(map[string]int64, len(raw))
	for k, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", k, v, err)
		}
		out[k] = n
	}
	return out, nil
}

// dayRange lists the yyyy-mm-dd keys from start to end inclusive.
func dayRange(startDay, endDay string) ([]string, error) {
	start, err := time.Parse(dayLayout, startDay)
	if err != nil {
		return nil, fmt.Errorf("invalid start day %q: %w", startDay, err)
	}
	end, err := time.Parse(dayLayout, endDay)
	if err != nil {
		return nil, fmt.Errorf("invalid end day %q: %w", endDay, err)
	}
	if end.Before(start) {
		return nil, nil
	}
	if end.Sub(start) > maxRangeDays*24*time.Hour {
		return nil, fmt.Errorf("day range %s..%s exceeds %d days", startDay, endDay, maxRangeDays)
	}

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayLayout))
	}
	return days, nil
}
