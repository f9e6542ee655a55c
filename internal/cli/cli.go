// Package cli implements the relgraph command-line interface.
//
// The CLI drives the same pipeline as the HTTP API: records are loaded from a
// JSON/YAML file or MongoDB, built into a leveled graph, laid out and
// rendered. Intermediate results can be written to disk so each stage can be
// run on its own:
//
//	relgraph build data.json          → data.graph.json
//	relgraph layout data.graph.json   → data.layout.json
//	relgraph visualize data.layout.json -f svg,png
//	relgraph render data.json         (all three at once)
//	relgraph explore data.json        (interactive terminal explorer)
//	relgraph serve                    (HTTP API)
//
// # Configuration
//
// Defaults come from the TOML file at --config or
// $XDG_CONFIG_HOME/relgraph/config.toml; flags override it.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes pipeline and cache hooks into the log.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relgraph/pkg/buildinfo"
	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/config"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/pipeline"
	"github.com/matzehuels/relgraph/pkg/records"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "relgraph"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose    bool
	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the pipeline and
// cache hooks log through the CLI logger.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Relgraph visualizes scored relationship graphs",
		Long:          `Relgraph turns profiles and scored relationships into a leveled graph around a focal person, lays it out and renders it as PNG, SVG, DOT or JSON, or explores it interactively in the terminal.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/relgraph/config.toml)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config, Runner and Source Factories
// =============================================================================

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// newRunner creates a pipeline runner for CLI use. An unreachable cache
// backend degrades to no caching with a warning.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.openCache(ctx, cfg, noCache), nil, c.Logger), nil
}

func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc, err := cfg.OpenCache(ctx)
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "error", err)
		return cache.NewNullCache()
	}
	return cache.NewInstrumented(cc)
}

// loadDataset loads records from a file path or MongoDB URI.
func (c *CLI) loadDataset(ctx context.Context, arg string) (records.Dataset, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return records.Dataset{}, err
	}
	src, closeFn, err := cfg.OpenSource(ctx, arg)
	if err != nil {
		return records.Dataset{}, err
	}
	defer closeFn()

	prog := newProgress(c.Logger)
	ds, err := src.Load(ctx)
	if err != nil {
		return records.Dataset{}, fmt.Errorf("load %s: %w", sourceName(arg), err)
	}
	prog.loaded(sourceName(arg), ds)
	return ds, nil
}

// options returns pipeline options with flags applied over the config file.
func (c *CLI) options(flags pipeline.Options) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return flags, err
	}
	cfg.Apply(&flags)
	flags.Logger = c.Logger
	return flags, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// addGraphFlags registers the build stage flags.
func addGraphFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.CenterNodeID, "center", "c", "", "focal profile id (default: whole graph)")
	cmd.Flags().VarP(optional[int]{&opts.MaxDepth, strconv.Atoi}, "depth", "d", "max hops from the focal profile, 0 for the focal profile only, -1 for unlimited (default 2)")
	cmd.Flags().Var(optional[float64]{&opts.MinConfidence, parseFloat}, "min-confidence", "drop relationships below this confidence, 0 keeps all (default 0.3)")
}

// optional is a flag bound to a nil-able option, so that an explicit zero
// is told apart from an absent flag.
type optional[T int | float64] struct {
	p     **T
	parse func(string) (T, error)
}

func (f optional[T]) Set(s string) error {
	v, err := f.parse(s)
	if err != nil {
		return err
	}
	*f.p = &v
	return nil
}

func (f optional[T]) String() string {
	if f.p == nil || *f.p == nil {
		return ""
	}
	return fmt.Sprint(**f.p)
}

func (f optional[T]) Type() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// addLayoutFlags registers the layout stage flags.
func addLayoutFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.LayoutType, "type", "t", "", "layout type: force (default), circle, graphviz")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "canvas width (default 800)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "canvas height (default 600)")
	cmd.Flags().IntVar(&opts.Layout.Iterations, "iterations", 0, "force layout iteration cap (default 300)")
	cmd.Flags().Uint64Var(&opts.Layout.Seed, "seed", 0, "force layout seed (default 42)")
	_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(layout.Types, cobra.ShellCompDirectiveNoFileComp))
}

// addRenderFlags registers the render stage flags; formats is filled from
// the comma-separated --format value.
func addRenderFlags(cmd *cobra.Command, opts *pipeline.Options, formats *string) {
	cmd.Flags().StringVarP(formats, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "device pixel ratio of png output (default 2)")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatDOT, pipeline.FormatJSON},
		cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace))
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string leaves the choice to the config file.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the base output path from the output and input paths.
// If output is empty, it strips the extension from input. If output has a
// format extension, it strips that.
func basePath(output, input string) string {
	if output == "" {
		if isMongo(input) {
			return "relgraph"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func isMongo(arg string) bool {
	return strings.HasPrefix(arg, "mongodb://") || strings.HasPrefix(arg, "mongodb+srv://")
}

func sourceName(arg string) string {
	if arg == "" || isMongo(arg) {
		return "mongodb"
	}
	return arg
}

// =============================================================================
// Artifact Output
// =============================================================================

type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each artifact next to the input (or to --output) and
// prints the written paths. A single format with an explicit output path is
// written to exactly that path.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	var paths []string
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}
		path := basePath(p.output, p.input) + "." + format
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	for _, path := range paths {
		printFile(path)
	}
	return paths, nil
}
