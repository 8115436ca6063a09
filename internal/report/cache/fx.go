package cache

import (
	"context"
	"time"

	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("report.cache",
	fx.Provide(New),
)

// New picks the Redis cache when Redis is configured and reachable and the
// in-process cache otherwise.
func New(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) domain.Cache {
	ttl := time.Duration(cfg.ReportCacheTTLSeconds) * time.Second
	if !cfg.Redis.Enabled() {
		return NewMemoryCache(ttl)
	}

	client := NewRedisClient(cfg.Redis)
	if client == nil {
		log.Warn("redis unreachable, using in-process report cache", zap.String("addr", cfg.Redis.Addr))
		return NewMemoryCache(ttl)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	log.Info("report cache backed by redis", zap.String("addr", cfg.Redis.Addr))
	return NewRedisCache(client, ttl, log)
}
