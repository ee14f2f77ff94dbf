package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabCanvas/internal/client"
	"collabCanvas/internal/participant"

	"github.com/spf13/cobra"
)

var (
	watchServer   string
	watchBoard    uint
	watchToken    string
	watchOut      string
	watchFollow   bool
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Join a board as a read-only participant and render it",
	Long: `Join a board through the websocket relay, wait for the canonical state and render it to --out.
With --follow the file is re-rendered whenever the board changes until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		endpoint, err := boardURL(watchServer, watchBoard)
		if err != nil {
			return err
		}
		conn, err := client.Dial(ctx, endpoint, watchToken, slog.Default())
		if err != nil {
			return fmt.Errorf("dial %s: %w", endpoint, err)
		}
		defer conn.Close()

		p := participant.New(participant.WithTransport(conn), participant.WithLogger(slog.Default()))
		runErr := make(chan error, 1)
		go func() { runErr <- conn.Run(ctx, p) }()

		select {
		case <-conn.Loaded():
		case err := <-runErr:
			return fmt.Errorf("connection closed before the board was loaded: %w", err)
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := writeSnapshot(watchOut, p.Snapshot()); err != nil {
			return err
		}
		if !watchFollow {
			return nil
		}

		last := p.Revision()
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case err := <-runErr:
				return err
			case <-ticker.C:
				if rev := p.Revision(); rev != last {
					last = rev
					if err := writeSnapshot(watchOut, p.Snapshot()); err != nil {
						return err
					}
				}
			}
		}
	},
}

func boardURL(server string, board uint) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server scheme %q", u.Scheme)
	}
	u.Path = fmt.Sprintf("/ws/boards/%d", board)
	return u.String(), nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchServer, "server", "ws://localhost:8000", "Relay base URL")
	watchCmd.Flags().UintVar(&watchBoard, "board", 0, "Board id")
	watchCmd.Flags().StringVar(&watchToken, "token", "", "Participant token from /api/boards/:id/join")
	watchCmd.Flags().StringVar(&watchOut, "out", "canvas.png", "Output file (.png or .pdf)")
	watchCmd.Flags().BoolVar(&watchFollow, "follow", false, "Keep rendering on every change")
	watchCmd.Flags().StringSliceVar(&imageHosts, "image-host", nil, "Host[:port] image URLs may be fetched from")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Second, "Polling interval with --follow")
	_ = watchCmd.MarkFlagRequired("board")
	_ = watchCmd.MarkFlagRequired("token")
}
