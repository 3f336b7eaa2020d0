package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/danmuck/pine/internal/bridge"
	"github.com/danmuck/pine/internal/client"
	"github.com/spf13/cobra"
)

func serveCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the emulator connection over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Bridge.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.withClient(cmd, func(_ context.Context, c *client.Client) error {
				srv := bridge.New(a.cfg.Target, a.cfg.Bridge.Addr, c, a.cfg.Bridge.CorsOrigins)
				return srv.Serve(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides bridge.addr)")
	return cmd
}
