package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/plotmap/pkg/server"
)

// serveCommand creates the serve command for the HTTP and WebSocket API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map over HTTP and WebSocket",
		Long: `Serve the site plan to browsers.

Each client opens a session with POST /api/sessions and then drives it over
/ws/{id} or POST /api/sessions/{id}/events. Sessions idle out after
server.idle_timeout without a connected client.

Routes:
  GET  /healthz
  GET  /api/parcels, /api/parcels/{id}, /api/layout, /api/site
  POST /api/sessions
  GET  /api/sessions/{id}, /api/sessions/{id}/plan.svg
  GET  /ws/{id}`,
		Example: `  plotmap serve
  plotmap serve --addr 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable artifact caching")

	return cmd
}

// runServe serves until ctx is cancelled, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	vc := c.Config.ViewStack()
	srv := server.New(server.Config{
		Addr:        addr,
		IdleTimeout: c.Config.Server.IdleTimeout.Duration,
		MaxSessions: c.Config.Server.MaxSessions,
		View:        &vc,
		Stagger:     c.Config.Animation.Stagger.Duration,
	}, runner, c.Logger)

	printSuccess("Serving %s on %s", appName, addr)
	printDetail("Press Ctrl+C to stop")
	printNewline()

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printInfo("Server stopped")
	return nil
}
