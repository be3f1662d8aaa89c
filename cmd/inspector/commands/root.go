package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leozw/domain-inspector/internal/config"
)

var appCtx *app

func Execute() error {
	root := &cobra.Command{
		Use:          "inspector",
		Short:        "Inspect a domain's registration, DNS records and TLS status",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			appCtx, err = newApp(cmd.Context(), cfg)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(cmd.Context())
		},
	}

	root.AddCommand(replCmd(), lookupCmd(), serveCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := root.ExecuteContext(ctx)
	if appCtx != nil {
		appCtx.Close()
	}
	return err
}
