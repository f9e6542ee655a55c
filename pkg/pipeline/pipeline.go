// Package pipeline provides the core visualization pipeline for relgraph.
//
// This package implements the complete build → layout → render pipeline that
// is shared by the CLI, the terminal explorer and the HTTP API. By
// centralizing this logic, every entry point filters, levels, places and draws
// a dataset the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Turn profile and relationship records into a filtered, leveled graph
//  2. Layout: Place the nodes in canvas space, falling back to a circle layout
//  3. Render: Draw the placed graph (PNG, SVG, DOT, JSON)
//
// Each stage can be run on its own. Two drivers sit on top:
//
//   - [Runner] executes the stages once, caching every stage by content hash.
//   - [Engine] keeps a graph alive for an interactive host: it re-runs the
//     stages when data or settings change, turns touch input into view changes
//     and taps, and emits [Event]s.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, dataset, pipeline.Options{
//	    CenterNodeID: "42",
//	    Formats:      []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/render"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Explorer
// =============================================================================

const (
	// DefaultMaxDepth is the hop limit around the focal node.
	DefaultMaxDepth = 2

	// DefaultMinConfidence drops relationships scored below 0.3.
	DefaultMinConfidence = 0.3

	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0

	// DefaultScale is the device pixel ratio of raster output.
	DefaultScale = 2.0

	// DefaultLayoutType is the default layout strategy.
	DefaultLayoutType = layout.TypeForce
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	CenterNodeID string `json:"center_node_id,omitempty"`
	// MaxDepth limits hops from the focal node: 0 keeps only the focal
	// node, a negative value removes the limit, nil takes the default.
	MaxDepth *int `json:"max_depth,omitempty"`
	// MinConfidence drops relationships scored below it: 0 keeps every
	// relationship, nil takes the default.
	MinConfidence *float64 `json:"min_confidence,omitempty"`

	// Layout options
	LayoutType string        `json:"layout_type,omitempty"`
	Width      float64       `json:"width,omitempty"`
	Height     float64       `json:"height,omitempty"`
	Layout     layout.Config `json:"layout,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cached stages.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Settings are the options a user changes while exploring a graph.
type Settings struct {
	LayoutType    string  `json:"layout_type"`
	MinConfidence float64 `json:"min_confidence"`
	MaxDepth      int     `json:"max_depth"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built graph with laid-out node positions.
	Graph *graph.Result

	// DatasetHash, GraphHash and LayoutHash are the content hashes that key
	// each stage's cache entry.
	DatasetHash string
	GraphHash   string
	LayoutHash  string

	// LayoutUsed is the strategy that placed the nodes. It differs from the
	// requested type when LayoutFallback is set.
	LayoutUsed     string
	LayoutFallback bool

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	LinkCount   int
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
	FailedItems int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the built graph came from cache
	LayoutHit bool // Whether node positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateLayoutType checks that a layout type is valid.
func ValidateLayoutType(t string) error {
	return layout.ValidateType(t)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults and validates every stage's options.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()

	if o.CenterNodeID != "" {
		if err := errors.ValidateProfileID(o.CenterNodeID); err != nil {
			return err
		}
	}
	if c := *o.MinConfidence; c < 0 || c > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "min_confidence must be in [0, 1], got %v", c)
	}
	if err := ValidateLayoutType(o.LayoutType); err != nil {
		return err
	}
	if err := errors.ValidateCanvas(o.Width, o.Height); err != nil {
		return err
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale <= 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 8], got %v", o.Scale)
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset fields with defaults. The graph options are unset
// when nil; everything else when zero.
func (o *Options) SetDefaults() {
	if o.MaxDepth == nil {
		o.MaxDepth = Ptr(DefaultMaxDepth)
	}
	if o.MinConfidence == nil {
		o.MinConfidence = Ptr(DefaultMinConfidence)
	}
	if o.LayoutType == "" {
		o.LayoutType = DefaultLayoutType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	o.Layout.SetDefaults()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Settings returns the user-adjustable subset of the options.
func (o *Options) Settings() Settings {
	return Settings{LayoutType: o.LayoutType, MinConfidence: o.minConfidence(), MaxDepth: o.maxDepth()}
}

// ApplySettings replaces the user-adjustable options and revalidates.
func (o *Options) ApplySettings(s Settings) error {
	next := *o
	next.LayoutType, next.MinConfidence, next.MaxDepth = s.LayoutType, Ptr(s.MinConfidence), Ptr(s.MaxDepth)
	next.validated = false
	if err := next.ValidateAndSetDefaults(); err != nil {
		return err
	}
	*o = next
	return nil
}

// GraphOptions returns the build stage options.
func (o *Options) GraphOptions() graph.Options {
	return graph.Options{
		CenterNodeID:  o.CenterNodeID,
		MaxDepth:      o.maxDepth(),
		MinConfidence: o.minConfidence(),
		Logger:        o.Logger,
	}
}

func (o *Options) maxDepth() int {
	if o.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return *o.MaxDepth
}

func (o *Options) minConfidence() float64 {
	if o.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *o.MinConfidence
}

// Ptr returns a pointer to v, for setting the optional graph options.
func Ptr[T any](v T) *T { return &v }

// LayoutOptions returns the layout stage options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Width: o.Width, Height: o.Height, Type: o.LayoutType}
}

// GraphKeyOpts returns cache key options for the build stage.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		CenterNodeID:  o.CenterNodeID,
		MaxDepth:      o.maxDepth(),
		MinConfidence: o.minConfidence(),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	cfg, _ := json.Marshal(o.Layout)
	return cache.LayoutKeyOpts{
		Type:   o.LayoutType,
		Width:  o.Width,
		Height: o.Height,
		Config: string(cfg),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

func (r *Result) String() string {
	return fmt.Sprintf("%d nodes, %d links, layout %s", r.Stats.NodeCount, r.Stats.LinkCount, r.LayoutUsed)
}

// mergeStats folds one surface's render stats into the pipeline stats.
func (s *Stats) mergeRender(rs render.Stats) {
	s.FailedItems += rs.Failed
}
