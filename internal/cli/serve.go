package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/internal/server"
	"github.com/matzehuels/relgraph/pkg/buildinfo"
)

const defaultAddr = "127.0.0.1:8080"

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		Long: `Serve the pipeline over HTTP.

Endpoints:
  GET  /healthz
  POST /api/v1/graph            build a graph
  POST /api/v1/layout           build and lay out a graph
  POST /api/v1/render/{format}  render png, svg, dot or json
  POST /api/v1/hit              resolve a screen point to a person or relationship

Every request body carries the dataset and options, so the server keeps no
state between requests. Results are shared through the configured cache,
which makes a redis backend a good fit for several replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.Logger.Info("starting", "build", buildinfo.String(), "cache", cfg.Cache.Backend)
	return server.New(runner, cfg.Viewport, c.Logger).ListenAndServe(ctx, addr)
}
