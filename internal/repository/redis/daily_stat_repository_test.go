package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipelineReplies answers pipelines locally: each HGETALL gets the hash stored
// under its key, or the configured error. Nothing is dialed.
type pipelineReplies struct {
	hashes  map[string]map[string]string
	errs    map[string]error
	execErr error
}

func (h pipelineReplies) DialHook(redis.DialHook) redis.DialHook {
	return func(context.Context, string, string) (net.Conn, error) {
		return nil, errors.New("dial not expected")
	}
}

func (h pipelineReplies) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return next
}

func (h pipelineReplies) ProcessPipelineHook(redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(_ context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			c, ok := cmd.(*redis.MapStringStringCmd)
			if !ok {
				continue
			}
			key := fmt.Sprint(c.Args()[1])
			if err, ok := h.errs[key]; ok {
				c.SetErr(err)
				continue
			}
			c.SetVal(h.hashes[key])
		}
		return h.execErr
	}
}

func newRepliesRepo(t *testing.T, h pipelineReplies) *DailyStatRepository {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(h)
	t.Cleanup(func() { _ = client.Close() })
	return NewDailyStatRepository(client, 0)
}

func TestDayRange(t *testing.T) {
	days, err := dayRange("2024-02-27", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, days)

	days, err = dayRange("2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01"}, days)

	days, err = dayRange("2024-03-02", "2024-03-01")
	require.NoError(t, err)
	assert.Empty(t, days)

	_, err = dayRange("03/01/2024", "2024-03-01")
	assert.Error(t, err)

	_, err = dayRange("2000-01-01", "2024-03-01")
	assert.Error(t, err)
}

func TestParseCounters(t *testing.T) {
	got, err := parseCounters(map[string]string{"shows_A": "12", "revenue_A": "-3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"shows_A": 12, "revenue_A": -3}, got)

	_, err = parseCounters(map[string]string{"shows_A": "x"})
	assert.Error(t, err)
}

func TestDailyKey(t *testing.T) {
	assert.Equal(t, "daily_variant_stats:2025-03-14", dailyKey("2025-03-14"))
}

func TestGetDailyStatsTreatsWrappedNilAsMissing(t *testing.T) {
	wrappedNil := fmt.Errorf("hgetall: %w", redis.Nil)
	repo := newRepliesRepo(t, pipelineReplies{
		hashes: map[string]map[string]string{
			"daily_variant_stats:2025-03-14": {"shows_A": "4", "add_to_cart_A": "1"},
		},
		errs: map[string]error{
			"daily_variant_stats:2025-03-15": wrappedNil,
		},
		execErr: wrappedNil,
	})

	stats, err := repo.GetDailyStats(context.Background(), "2025-03-13", "2025-03-15")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "2025-03-14", stats[0].DayKey)
	assert.Equal(t, map[string]int64{"shows_A": 4, "add_to_cart_A": 1}, stats[0].Counters)
}

func TestGetDailyStatsSurfacesReadErrors(t *testing.T) {
	repo := newRepliesRepo(t, pipelineReplies{execErr: errors.New("READONLY")})
	_, err := repo.GetDailyStats(context.Background(), "2025-03-14", "2025-03-14")
	assert.ErrorContains(t, err, "READONLY")

	repo = newRepliesRepo(t, pipelineReplies{
		errs: map[string]error{"daily_variant_stats:2025-03-14": errors.New("WRONGTYPE")},
	})
	_, err = repo.GetDailyStats(context.Background(), "2025-03-14", "2025-03-14")
	assert.ErrorContains(t, err, "WRONGTYPE")
}
