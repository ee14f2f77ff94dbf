package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"collabCanvas/cmd/app"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay and REST server",
	Long:  `Serve boards over websockets and REST. Settings come from configs/config.yaml and COLLABCANVAS_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.GetApp().LetsGo(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
