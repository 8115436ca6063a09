package cli

import (
	"github.com/sandistd/carbon-footprint-app/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := fx.New(serveApp())
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}

// serveApp is the full dependency graph of the API process.
func serveApp() fx.Option {
	return fx.Options(
		infrastructure(),
		domains(),
		server.Module,
	)
}
