package events

import (
	"context"

	"github.com/sandistd/carbon-footprint-app/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("events",
	fx.Provide(NewPublisher),
)

// NewPublisher returns an AMQP publisher when a broker URL is configured and
// a no-op publisher otherwise.
func NewPublisher(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Publisher {
	if !cfg.AMQP.Enabled() {
		log.Info("event publishing disabled, no broker configured")
		return NoopPublisher{}
	}

	pub := NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Queue, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	})
	return pub
}
