package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

const commandTimeout = 2 * time.Minute

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed default emission factors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(infrastructure(), fx.NopLogger)
			if err := app.Err(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()
			if err := app.Start(ctx); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return app.Stop(ctx)
		},
	}
}
