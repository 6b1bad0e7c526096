package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "housing:view:"

// Redis stores views in a shared Redis instance so several dashboard
// replicas serve the same render output.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64
	log    *zap.Logger
}

// NewRedis connects to opts.RedisAddr and verifies the connection.
func NewRedis(ctx context.Context, opts Options) (*Redis, error) {
	if opts.RedisAddr == "" {
		return nil, eris.New("cache: redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr: opts.RedisAddr,
		DB:   opts.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "cache: connect to redis at %s", opts.RedisAddr)
	}
	return NewRedisWithClient(client, opts.KeyPrefix, opts.TTL), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		log:    zap.L().With(zap.String("component", "cache.redis")),
	}
}

// Get retrieves a cached view.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		r.misses.Add(1)
		return nil, false, eris.Wrapf(err, "cache: redis get %s", key)
	}
	r.hits.Add(1)
	return val, true, nil
}

// Put stores a view with the configured TTL.
func (r *Redis) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		return eris.Wrapf(err, "cache: redis set %s", key)
	}
	return nil
}

// Invalidate deletes every key under prefix using SCAN.
func (r *Redis) Invalidate(ctx context.Context, prefix string) error {
	pattern := r.prefix + "*"
	if prefix != "" {
		pattern = r.prefix + prefix + "/*"
	}

	var deleted int64
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return eris.Wrapf(err, "cache: redis del %s", iter.Val())
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return eris.Wrap(err, "cache: redis scan")
	}
	r.log.Debug("invalidated", zap.String("prefix", prefix), zap.Int64("deleted", deleted))
	return nil
}

// Stats counts the keys under the cache prefix.
func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	var entries int
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		entries++
	}
	if err := iter.Err(); err != nil {
		return Stats{}, eris.Wrap(err, "cache: redis scan")
	}

	hits := r.hits.Load()
	misses := r.misses.Load()
	return Stats{
		Driver:  DriverRedis,
		Entries: entries,
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate(hits, misses),
	}, nil
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
