package migration

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/clock"
	"github.com/sandistd/carbon-footprint-app/internal/config"
	"github.com/sandistd/carbon-footprint-app/internal/seed"
	"github.com/sandistd/carbon-footprint-app/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
		return Run(context.Background(), conn, cfg, node, clk, log)
	}),
)

// Run brings the schema up to date and seeds the default emission factors
// when enabled.
func Run(ctx context.Context, conn *gorm.DB, cfg config.Config, node *snowflake.Node, clk clock.Clock, log *zap.Logger) error {
	if strings.EqualFold(strings.TrimSpace(cfg.DBType), db.TypePostgres) {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
	} else if err := AutoMigrate(conn); err != nil {
		return err
	}
	log.Info("database schema up to date", zap.String("db_type", cfg.DBType))

	if !cfg.SeedDefaultFactors {
		return nil
	}
	inserted, err := seed.EnsureDefaultFactors(ctx, conn, node, clk.Now())
	if err != nil {
		return err
	}
	if inserted > 0 {
		log.Info("seeded default emission factors", zap.Int("count", inserted))
	}
	return nil
}
