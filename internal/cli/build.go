package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// buildCommand creates the build command for turning records into a graph.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build [data.json|data.yaml|mongodb://...]",
		Short: "Build a leveled graph from profiles and relationships",
		Long: `Build a leveled graph from profiles and relationships.

Records are read from a JSON or YAML file, or from MongoDB when given a
mongodb:// URI (or nothing, with [source] configured). Relationships below
--min-confidence are dropped and every node gets its hop distance from the
focal profile. The result is written as graph.json for the 'layout' command.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Refresh = refresh
			return c.runBuild(cmd.Context(), firstArg(args), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	addGraphFlags(cmd, &opts)

	return cmd
}

// runBuild loads the records, builds the graph and writes graph.json.
func (c *CLI) runBuild(ctx context.Context, input string, flags pipeline.Options, output string, noCache bool) error {
	opts, err := c.options(flags)
	if err != nil {
		return err
	}
	ds, err := c.loadDataset(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, cacheHit, err := runner.BuildWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return err
	}

	if output == "" {
		output = basePath("", input) + ".graph.json"
	}
	if err := graph.WriteFile(g, output); err != nil {
		return err
	}

	printSuccess("Graph built")
	printStats(len(g.Nodes), len(g.Links), cacheHit)
	if g.CenterNodeID != "" {
		printKeyValue("center", g.CenterNodeID)
	}
	printFile(output)
	printNewline()
	printNextStep("Compute layout", "relgraph layout "+output)
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
