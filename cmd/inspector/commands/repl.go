package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/leozw/domain-inspector/internal/console"
)

// repl: prompt for domains until exit.
func replCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Inspect domains interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context())
		},
	}
}

func runREPL(ctx context.Context) error {
	return console.New(appCtx.service, appCtx.logger).Run(ctx, os.Stdin, os.Stdout)
}
