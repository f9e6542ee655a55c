package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// layoutCommand creates the layout command for placing a built graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions for a built graph",
		Long: `Compute node positions for a built graph.

The layout command takes a graph.json file (produced by 'build') and places
every node on the canvas. The output is a layout.json file (same format as
'render -f json') that can be drawn with the 'visualize' command.

Force (-t force) runs a seeded simulation with the focal node pinned to the
center; circle (-t circle) places nodes on one ring per level; graphviz
(-t graphviz) uses neato. A layout that fails falls back to circle.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	addLayoutFlags(cmd, &opts)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags pipeline.Options, output string, noCache bool) error {
	g, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}
	opts, err := c.options(flags)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s := spin(ctx, stderr, "Computing "+opts.LayoutType+" layout...")
	placed, lr, cacheHit, err := runner.LayoutWithCacheInfo(ctx, g, opts)
	s.stop()
	if err != nil {
		return err
	}

	if output == "" {
		output = layoutPath(input)
	}
	if err := graph.WriteFile(placed, output); err != nil {
		return err
	}

	printSuccess("Layout computed")
	printStats(len(placed.Nodes), len(placed.Links), cacheHit)
	printLayout(opts.LayoutType, lr.Used, lr.Fallback)
	printFile(output)
	printNewline()
	printNextStep("Render", "relgraph visualize "+output)
	return nil
}

// layoutPath derives data.layout.json from data.graph.json or data.json.
func layoutPath(input string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".graph")
	return base + ".layout.json"
}
