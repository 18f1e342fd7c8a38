package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultKeyPrefix namespaces all cache keys in Redis.
const defaultKeyPrefix = "cataloglens:"

const redisOpTimeout = 2 * time.Second

// redisCache stores each unified table under its own string key so Redis
// expires it natively (SET PX), and keeps LRU order in a sorted set
// (member = cache key, score = last-access µs timestamp).
//
//   - {prefix}table:<key> holds the payload.
//   - {prefix}tables:lru  ranks keys by recency.
//
// Sorted-set members whose table key already expired are pruned by Len and
// during eviction.
type redisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxSize    int
	onEvict    EvictCallback
	logger     Logger
	dataPrefix string
	lruKey     string
}

// touchAndGet returns the payload and bumps its recency when it exists.
//
// KEYS[1] = table key, KEYS[2] = LRU sorted set
// ARGV[1] = current µs timestamp, ARGV[2] = member
var touchAndGet = redis.NewScript(`
local val = redis.call('GET', KEYS[1])
if val then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
else
    redis.call('ZREM', KEYS[2], ARGV[2])
end
return val
`)

// storeAndEvict writes the payload, records its recency and pops the oldest
// members until the set fits in maxSize. A maxSize of 0 disables eviction.
//
// KEYS[1] = table key, KEYS[2] = LRU sorted set
// ARGV[1] = value, ARGV[2] = current µs timestamp, ARGV[3] = member,
// ARGV[4] = maxSize, ARGV[5] = TTL in milliseconds (0 = no expiry),
// ARGV[6] = data key prefix
//
// Returns the evicted members that still held a live payload.
var storeAndEvict = redis.NewScript(`
local ttlMs   = tonumber(ARGV[5])
local maxSize = tonumber(ARGV[4])

if ttlMs > 0 then
    redis.call('SET', KEYS[1], ARGV[1], 'PX', ttlMs)
else
    redis.call('SET', KEYS[1], ARGV[1])
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])

local evicted = {}
if maxSize <= 0 then
    return evicted
end

local size = redis.call('ZCARD', KEYS[2])
while size > maxSize do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    local member = oldest[1]
    if redis.call('DEL', ARGV[6] .. member) == 1 then
        table.insert(evicted, member)
    end
    size = size - 1
end
return evicted
`)

// pruneAndCount drops LRU members whose payload expired and returns the
// number of live entries.
//
// KEYS[1] = LRU sorted set, ARGV[1] = data key prefix
var pruneAndCount = redis.NewScript(`
local members = redis.call('ZRANGE', KEYS[1], 0, -1)
for _, member in ipairs(members) do
    if redis.call('EXISTS', ARGV[1] .. member) == 0 then
        redis.call('ZREM', KEYS[1], member)
    end
end
return redis.call('ZCARD', KEYS[1])
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:     client,
		ttl:        cfg.TTL,
		maxSize:    cfg.Size,
		onEvict:    cfg.OnEvict,
		logger:     cfg.Logger,
		dataPrefix: prefix + "table:",
		lruKey:     prefix + "tables:lru",
	}, nil
}

func (r *redisCache) dataKey(key string) string {
	return r.dataPrefix + key
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := strconv.FormatInt(time.Now().UnixMicro(), 10)
	result, err := touchAndGet.Run(ctx, r.client, []string{r.dataKey(key), r.lruKey}, now, key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", err)
		}
		return nil, false
	}
	return []byte(result), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	evicted, err := storeAndEvict.Run(ctx, r.client, []string{r.dataKey(key), r.lruKey},
		value,
		strconv.FormatInt(time.Now().UnixMicro(), 10),
		key,
		strconv.Itoa(r.maxSize),
		strconv.FormatInt(r.ttl.Milliseconds(), 10),
		r.dataPrefix,
	).StringSlice()
	if err != nil {
		r.logError("redis cache Set failed", err)
		return
	}

	// Values of evicted entries are already gone; only keys are reported.
	if r.onEvict != nil {
		for _, evictedKey := range evicted {
			r.onEvict(evictedKey, nil)
		}
	}
}

func (r *redisCache) Remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.dataKey(key))
		pipe.ZRem(ctx, r.lruKey, key)
		return nil
	})
	if err != nil {
		r.logError("redis cache Remove failed", err)
	}
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.client.Exists(ctx, r.dataKey(key)).Result()
	if err != nil {
		r.logError("redis cache Contains failed", err)
		return false
	}
	return n == 1
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := pruneAndCount.Run(ctx, r.client, []string{r.lruKey}, r.dataPrefix).Int()
	if err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
