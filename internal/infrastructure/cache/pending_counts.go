// Package cache keeps resident pending counts in Redis so pollers do not hit
// the database every tick.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KindVisitors = "visitors"
	KindParcels  = "parcels"
)

// NoGeneration is returned by Get when Redis could not be read. Set ignores it.
const NoGeneration int64 = -1

// genGrace outlives any count load so a generation cannot expire and reset
// while a stale Set is in flight.
const genGrace = time.Hour

// setIfCurrent writes the count only while the generation still matches the
// one read before the database load.
var setIfCurrent = redis.NewScript(`
local g = redis.call('GET', KEYS[2])
if (g or '0') ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type PendingCounts struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewPendingCounts returns nil when rdb is nil or ttl is not positive, which
// disables caching.
func NewPendingCounts(rdb *redis.Client, ttl time.Duration) *PendingCounts {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &PendingCounts{rdb: rdb, ttl: ttl}
}

func Key(kind string, residentID int64) string {
	return fmt.Sprintf("vpms:pending:%s:%d", kind, residentID)
}

// GenKey is bumped on every invalidation of Key(kind, residentID).
func GenKey(kind string, residentID int64) string {
	return Key(kind, residentID) + ":gen"
}

// Get reports a cached count. On a miss it returns the current generation
// for a later Set; Redis failures report a miss with NoGeneration.
func (p *PendingCounts) Get(ctx context.Context, kind string, residentID int64) (int, int64, bool) {
	if p == nil {
		return 0, NoGeneration, false
	}
	vals, err := p.rdb.MGet(ctx, Key(kind, residentID), GenKey(kind, residentID)).Result()
	if err != nil {
		return 0, NoGeneration, false
	}
	return parseEntry(vals)
}

// parseEntry decodes MGET [count, generation].
func parseEntry(vals []any) (int, int64, bool) {
	if len(vals) != 2 {
		return 0, NoGeneration, false
	}
	var gen int64
	if s, ok := vals[1].(string); ok {
		g, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, NoGeneration, false
		}
		gen = g
	}
	s, ok := vals[0].(string)
	if !ok {
		return 0, gen, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, gen, false
	}
	return n, gen, true
}

// Set caches n unless the key was invalidated after gen was read.
func (p *PendingCounts) Set(ctx context.Context, kind string, residentID int64, n int, gen int64) error {
	if p == nil || gen < 0 {
		return nil
	}
	keys := []string{Key(kind, residentID), GenKey(kind, residentID)}
	return setIfCurrent.Run(ctx, p.rdb, keys, gen, n, p.ttl.Milliseconds()).Err()
}

func (p *PendingCounts) Invalidate(ctx context.Context, kind string, residentID int64) error {
	if p == nil {
		return nil
	}
	genKey := GenKey(kind, residentID)
	_, err := p.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.PExpire(ctx, genKey, p.ttl+genGrace)
		pipe.Del(ctx, Key(kind, residentID))
		return nil
	})
	return err
}
