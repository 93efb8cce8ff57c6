package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const sequenceTTL = 48 * time.Hour

// raiseScript moves the counter up to ARGV[1] if it is below it. It never
// lowers the counter.
var raiseScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if cur < floor then
	redis.call('SET', KEYS[1], floor, 'EX', ARGV[2])
	return floor
end
return cur
`)

// InvoiceSequencer hands out per-day sequence numbers shared by every process
// talking to the same Redis.
type InvoiceSequencer struct {
	rdb *redis.Client
}

func NewInvoiceSequencer(rdb *redis.Client) *InvoiceSequencer {
	return &InvoiceSequencer{rdb: rdb}
}

func sequenceKey(day string) string {
	return "invoice:seq:" + day
}

func (s *InvoiceSequencer) Next(ctx context.Context, day string) (int64, error) {
	key := sequenceKey(day)

	pipe := s.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, sequenceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}
	return incr.Val(), nil
}

// Resync raises the day's counter to at least floor, the highest sequence
// already stored elsewhere.
func (s *InvoiceSequencer) Resync(ctx context.Context, day string, floor int64) error {
	key := sequenceKey(day)
	if err := raiseScript.Run(ctx, s.rdb, []string{key}, floor, int64(sequenceTTL/time.Second)).Err(); err != nil {
		return fmt.Errorf("failed to resync %s: %w", key, err)
	}
	return nil
}
