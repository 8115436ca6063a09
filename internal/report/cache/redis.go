package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"go.uber.org/zap"
)

const generationKey = keyPrefix + "generation"

// NewRedisClient connects to Redis and pings it with a short timeout. It
// returns nil when the server is unreachable so callers can fall back to the
// in-process cache.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}

// RedisCache shares built reports between replicas. Redis failures degrade
// to cache misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log.Named("report.cache")}
}

func (c *RedisCache) Generation(ctx context.Context) int64 {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("read cache generation", zap.Error(err))
			return -1
		}
		return 0
	}
	return gen
}

func (c *RedisCache) Get(ctx context.Context, generation int64, key string) (*domain.DashboardReport, bool) {
	if generation < 0 {
		return nil, false
	}
	raw, err := c.client.Get(ctx, entryKey(generation, key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("read cached report", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var report domain.DashboardReport
	if err := json.Unmarshal(raw, &report); err != nil {
		c.log.Warn("decode cached report", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &report, true
}

func (c *RedisCache) Set(ctx context.Context, generation int64, key string, report domain.DashboardReport) {
	if generation < 0 {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		c.log.Warn("encode report", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, entryKey(generation, key), raw, c.ttl).Err(); err != nil {
		c.log.Warn("write cached report", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		c.log.Error("invalidate report cache", zap.Error(err))
	}
}
