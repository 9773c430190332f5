// Package cache holds the Redis-backed read-through cache for computed
// appointment slot lists.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const defaultPrefix = "hms:slots"

// minGenTTL keeps generation counters well past the lifetime of the entries
// they guard.
const minGenTTL = 24 * time.Hour

// setIfCurrent stores KEYS[1] only while the generation in KEYS[2] still
// equals ARGV[1].
var setIfCurrent = redis.NewScript(`
local cur = redis.call("GET", KEYS[2]) or "0"
if cur ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisSlotCache stores available-slot lists keyed by doctor and date.
// Redis failures are logged and reported as misses so scheduling keeps
// working from the database alone.
type RedisSlotCache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// NewRedisSlotCache creates a cache with the given entry TTL.
func NewRedisSlotCache(rdb redis.Cmdable, ttl time.Duration, logger zerolog.Logger) *RedisSlotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisSlotCache{
		rdb:    rdb,
		ttl:    ttl,
		prefix: defaultPrefix,
		logger: logger.With().Str("component", "slot_cache").Logger(),
	}
}

// WithPrefix overrides the key prefix, mainly to share one Redis between
// deployments.
func (c *RedisSlotCache) WithPrefix(prefix string) *RedisSlotCache {
	prefix = strings.TrimSpace(prefix)
	if prefix != "" {
		c.prefix = prefix
	}
	return c
}

func (c *RedisSlotCache) key(doctorUsername, date string) string {
	return c.prefix + ":" + doctorUsername + ":" + date
}

func (c *RedisSlotCache) genKey(doctorUsername, date string) string {
	return c.key(doctorUsername, date) + ":gen"
}

func (c *RedisSlotCache) genTTL() time.Duration {
	if 2*c.ttl > minGenTTL {
		return 2 * c.ttl
	}
	return minGenTTL
}

// Get returns the cached slot list and whether it was present. On a miss it
// returns the entry's generation for a later Set, or -1 if Redis failed.
func (c *RedisSlotCache) Get(ctx context.Context, doctorUsername, date string) ([]string, int64, bool) {
	vals, err := c.rdb.MGet(ctx, c.key(doctorUsername, date), c.genKey(doctorUsername, date)).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("doctor", doctorUsername).Str("date", date).Msg("slot cache read failed")
		return nil, -1, false
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		c.logger.Warn().Err(err).Str("doctor", doctorUsername).Str("date", date).Msg("slot cache generation corrupt")
		return nil, -1, false
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var slots []string
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		c.logger.Warn().Err(err).Str("doctor", doctorUsername).Str("date", date).Msg("slot cache entry corrupt")
		return nil, gen, false
	}
	return slots, gen, true
}

// Set stores slots if the entry is still at generation gen.
func (c *RedisSlotCache) Set(ctx context.Context, doctorUsername, date string, gen int64, slots []string) {
	if gen < 0 {
		return
	}
	if slots == nil {
		slots = []string{}
	}
	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	keys := []string{c.key(doctorUsername, date), c.genKey(doctorUsername, date)}
	stored, err := setIfCurrent.Run(ctx, c.rdb, keys, strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn().Err(err).Str("doctor", doctorUsername).Str("date", date).Msg("slot cache write failed")
		return
	}
	if stored == 0 {
		c.logger.Debug().Str("doctor", doctorUsername).Str("date", date).Msg("slot cache write skipped, entry invalidated meanwhile")
	}
}

// Invalidate advances the entry's generation and drops the cached list.
func (c *RedisSlotCache) Invalidate(ctx context.Context, doctorUsername, date string) {
	genKey := c.genKey(doctorUsername, date)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.genTTL())
		pipe.Del(ctx, c.key(doctorUsername, date))
		return nil
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("doctor", doctorUsername).Str("date", date).Msg("slot cache invalidate failed")
	}
}

// parseGen reads a generation counter as returned by MGET. A missing counter
// is generation zero.
func parseGen(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(g, 10, 64)
	default:
		return 0, errors.New("unexpected generation type")
	}
}

// NewClient parses a redis:// URL and verifies the server is reachable.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
