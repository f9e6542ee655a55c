package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/watch"
)

// renderCommand creates the render command that runs the full pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output  string
		formats string
		noCache bool
		refresh bool
		watchIt bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [data.json|data.yaml|mongodb://...]",
		Short: "Build, lay out and render records in one step",
		Long: `Build, lay out and render records in one step.

This is equivalent to 'build', 'layout' and 'visualize' in sequence. Every
stage is cached independently, so changing only the output format skips the
build and layout.

With --watch the data file (and the config file, if given) is watched and
the outputs are regenerated whenever it changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formats)
			opts.Refresh = refresh
			input := firstArg(args)
			if watchIt {
				return c.watchRender(cmd.Context(), input, opts, output, noCache)
			}
			return c.runRender(cmd.Context(), input, opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVarP(&watchIt, "watch", "w", false, "re-render when the data file changes")
	addGraphFlags(cmd, &opts)
	addLayoutFlags(cmd, &opts)
	addRenderFlags(cmd, &opts, &formats)

	return cmd
}

// runRender executes the complete pipeline once and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, input string, flags pipeline.Options, output string, noCache bool) error {
	opts, err := c.options(flags)
	if err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
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

	s := spin(ctx, stderr, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	result, err := runner.Execute(ctx, ds, opts)
	s.stop()
	if err != nil {
		return err
	}

	cached := result.CacheInfo.BuildHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
	printSuccess("Rendered %s", strings.Join(opts.Formats, ", "))
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, cached)
	printLayout(opts.LayoutType, result.LayoutUsed, result.LayoutFallback)
	if result.Stats.FailedItems > 0 {
		printWarning("%d items could not be drawn", result.Stats.FailedItems)
	}
	_, err = writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    output,
	})
	return err
}

// watchRender renders once, then again after every change to the data or
// config file until ctx is cancelled. Failed rebuilds are logged and the
// watch continues.
func (c *CLI) watchRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if input == "" || isMongo(input) {
		return errors.New(errors.ErrCodeInvalidInput, "--watch needs a data file")
	}

	paths := []string{input}
	if c.configPath != "" {
		paths = append(paths, c.configPath)
	}
	w, err := watch.New(paths, watch.DefaultQuiet, c.Logger)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := c.runRender(ctx, input, opts, output, noCache); err != nil {
		printError("%v", err)
	}
	printInfo("Watching %s (Ctrl+C to stop)", strings.Join(paths, ", "))

	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		c.Logger.Info("change detected", "files", changed)
		// Pick up config edits on the next render.
		c.config = nil
		return c.runRender(ctx, input, opts, output, noCache)
	})
}
