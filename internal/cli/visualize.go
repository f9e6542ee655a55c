package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/pipeline"
)

// visualizeCommand creates the visualize command for drawing a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Draw a computed layout as SVG, PNG, DOT or JSON",
		Long: `Draw a computed layout as SVG, PNG, DOT or JSON.

The visualize command takes a layout.json file (produced by 'layout' or
'render -f json') and renders it without recomputing positions. The view is
fitted so every node is visible.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			return c.runVisualize(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default 800)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default 600)")
	addRenderFlags(cmd, &opts, &formats)

	return cmd
}

// runVisualize loads a placed graph and renders the requested formats.
func (c *CLI) runVisualize(ctx context.Context, input string, flags pipeline.Options, output string, noCache bool) error {
	placed, err := graph.ReadFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}
	opts, err := c.options(flags)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result := &pipeline.Result{Graph: placed}
	s := spin(ctx, stderr, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, placed, result, opts)
	s.stop()
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	printStats(len(placed.Nodes), len(placed.Links), cacheHit)
	if result.Stats.FailedItems > 0 {
		printWarning("%d items could not be drawn", result.Stats.FailedItems)
	}
	_, err = writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		input:     strings.TrimSuffix(input, ".json"),
		output:    output,
	})
	return err
}
