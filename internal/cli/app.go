package cli

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/emission"
	"github.com/sandistd/carbon-footprint-app/internal/events"
	"github.com/sandistd/carbon-footprint-app/internal/factor"
	"github.com/sandistd/carbon-footprint-app/internal/migration"
	"github.com/sandistd/carbon-footprint-app/internal/observability"
	"github.com/sandistd/carbon-footprint-app/internal/report"
	"github.com/sandistd/carbon-footprint-app/internal/stakeholder"
	"github.com/sandistd/carbon-footprint-app/pkg/db"
	"go.uber.org/fx"
)

// infrastructure is shared by every command that touches the database.
func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
	)
}

func domains() fx.Option {
	return fx.Options(
		factor.Module,
		stakeholder.Module,
		events.Module,
		emission.Module,
		report.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", cfg.SnowflakeNode, err)
	}
	return node, nil
}
