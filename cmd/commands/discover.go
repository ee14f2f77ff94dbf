package commands

import (
	"context"
	"fmt"
	"time"

	"collabCanvas/configs"
	"collabCanvas/internal/servers/discovery"

	"github.com/spf13/cobra"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "List relays advertised on the local network",
	RunE: func(cmd *cobra.Command, args []string) error {
		service := configs.GetConfig().Viper.GetString("mdns.service")
		ctx, cancel := context.WithTimeout(context.Background(), discoverTimeout+time.Second)
		defer cancel()
		found, err := discovery.Browse(ctx, service, discoverTimeout)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no relays found")
			return nil
		}
		for _, addr := range found {
			fmt.Fprintln(cmd.OutOrStdout(), addr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 2*time.Second, "How long to wait for answers")
}
