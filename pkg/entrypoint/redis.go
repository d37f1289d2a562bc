package entrypoint

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient is the subset of redis.Cmdable used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache stores entrypoints in Redis so that several processes
// acting for the same broker share one copy.
//
// The sliding window is implemented with key TTLs; the absolute deadline
// travels with the value.
type RedisCache struct {
	client RedisClient
	prefix string
	policy Expiration
	logger *zap.Logger
	now    func() time.Time
}

type redisEntry struct {
	Deadline int64  `json:"deadline"`
	Root     []byte `json:"root"`
}

// NewRedisCache creates a Redis-backed cache. Keys are stored under prefix.
func NewRedisCache(client RedisClient, prefix string, policy Expiration, logger *zap.Logger) *RedisCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		policy: policy.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

func (c *RedisCache) buildKey(key string) string {
	return c.prefix + key
}

// Get returns the cached root and extends its sliding window. Redis
// failures are logged and reported as misses.
func (c *RedisCache) Get(ctx context.Context, key string) (*Root, bool) {
	redisKey := c.buildKey(key)

	data, err := c.client.Get(ctx, redisKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("entrypoint cache read failed", zap.String("key", redisKey), zap.Error(err))
		}
		return nil, false
	}

	var e redisEntry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("entrypoint cache entry corrupt", zap.String("key", redisKey), zap.Error(err))
		c.client.Del(ctx, redisKey)
		return nil, false
	}

	now := c.now()
	deadline := time.Unix(0, e.Deadline)
	if !now.Before(deadline) {
		c.client.Del(ctx, redisKey)
		return nil, false
	}

	root, err := Parse(e.Root)
	if err != nil {
		c.logger.Warn("entrypoint cache entry unparsable", zap.String("key", redisKey), zap.Error(err))
		c.client.Del(ctx, redisKey)
		return nil, false
	}

	if err := c.client.Expire(ctx, redisKey, c.policy.ttl(now, deadline)).Err(); err != nil {
		c.logger.Debug("failed to extend entrypoint cache entry", zap.String("key", redisKey), zap.Error(err))
	}

	return root, true
}

// Set stores root under key.
func (c *RedisCache) Set(ctx context.Context, key string, root *Root) {
	redisKey := c.buildKey(key)
	now := c.now()
	deadline := now.Add(c.policy.Absolute)

	data, err := json.Marshal(redisEntry{Deadline: deadline.UnixNano(), Root: root.Raw()})
	if err != nil {
		c.logger.Warn("failed to encode entrypoint", zap.Error(err))
		return
	}

	ttl := c.policy.ttl(now, deadline)
	if err := c.client.Set(ctx, redisKey, data, ttl).Err(); err != nil {
		c.logger.Warn("entrypoint cache write failed", zap.String("key", redisKey), zap.Error(err))
		return
	}

	c.logger.Debug("entrypoint cached", zap.String("key", redisKey), zap.Duration("ttl", ttl))
}
