package cmd

import (
	"context"

	"ctidash/bootstrap"

	"github.com/spf13/cobra"
)

// newServeCmd creates the 'serve' subcommand
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API serving /api/threats, /health, /metrics and the swagger UI.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := bootstrap.NewApp()
	if err != nil {
		return err
	}
	defer app.Shutdown()

	if err := app.Start(ctx); err != nil {
		return err
	}

	return app.WaitForShutdown()
}
