package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/matzehuels/relgraph/pkg/cache"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/records"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the API server and the watcher all use it so caching logic lives
// in one place.
//
// The Runner is stateless except for the cache, the layout engine and the
// logger - it doesn't store pipeline results. Multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	engine *layout.Engine
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		engine: layout.NewEngine(logger),
	}
}

// Engine returns the layout engine used for the layout stage. Callers may
// register additional strategies on it.
func (r *Runner) Engine() *layout.Engine { return r.engine }

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, ds records.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		DatasetHash: DatasetHash(ds),
		Artifacts:   make(map[string][]byte),
	}

	// Stage 1: Build
	buildStart := time.Now()
	g, buildHit, err := r.BuildWithCacheInfo(ctx, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.LinkCount = len(g.Links)
	result.CacheInfo.BuildHit = buildHit
	result.GraphHash = resultHash(g)

	r.Logger.Info("built graph",
		"nodes", len(g.Nodes),
		"links", len(g.Links),
		"center", g.CenterNodeID,
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	placed, lr, layoutHit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = placed
	result.LayoutUsed = lr.Used
	result.LayoutFallback = lr.Fallback
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit
	result.LayoutHash = resultHash(placed)

	r.Logger.Info("computed layout",
		"requested", opts.LayoutType,
		"used", lr.Used,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, placed, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"failed", result.Stats.FailedItems,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildWithCacheInfo builds the graph with caching and returns cache hit info.
func (r *Runner) BuildWithCacheInfo(ctx context.Context, ds records.Dataset, opts Options) (*graph.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.GraphKey(DatasetHash(ds), opts.GraphKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.UnmarshalResult(data); err == nil {
				return g, true, nil // Cache hit
			}
			// If deserialization fails, fall through to rebuild
		}
	}

	g, err := BuildGraph(ctx, ds, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := graph.MarshalResult(g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
	}

	return g, false, nil // Cache miss
}

// Build is a convenience wrapper that calls BuildWithCacheInfo and discards the cache hit info.
func (r *Runner) Build(ctx context.Context, ds records.Dataset, opts Options) (*graph.Result, error) {
	g, _, err := r.BuildWithCacheInfo(ctx, ds, opts)
	return g, err
}

// cachedLayout is the cache entry of the layout stage.
type cachedLayout struct {
	Graph    *graph.Result `json:"graph"`
	Used     string        `json:"used"`
	Fallback bool          `json:"fallback,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// LayoutWithCacheInfo places the graph with caching and returns cache hit info.
// The returned layout.Result carries Used and Fallback; its Nodes are the
// placed graph's nodes.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Result, opts Options) (*graph.Result, layout.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, layout.Result{}, false, err
	}

	cacheKey := r.Keyer.LayoutKey(resultHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached cachedLayout
			if err := json.Unmarshal(data, &cached); err == nil && cached.Graph != nil && graph.Validate(cached.Graph) == nil {
				lr := layout.Result{Nodes: cached.Graph.Nodes, Used: cached.Used, Fallback: cached.Fallback}
				if cached.Error != "" {
					lr.Err = fmt.Errorf("%s", cached.Error)
				}
				return cached.Graph, lr, true, nil // Cache hit
			}
		}
	}

	placed, lr, err := LayoutGraph(ctx, r.engine, g, opts)
	if err != nil {
		return nil, layout.Result{}, false, err
	}

	entry := cachedLayout{Graph: placed, Used: lr.Used, Fallback: lr.Fallback}
	if lr.Err != nil {
		entry.Error = lr.Err.Error()
	}
	if data, err := json.Marshal(entry); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return placed, lr, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, g *graph.Result, opts Options) (*graph.Result, error) {
	placed, _, _, err := r.LayoutWithCacheInfo(ctx, g, opts)
	return placed, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
// If result is non-nil its render stats are updated.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, placed *graph.Result, result *Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	// Artifacts depend on the canvas as well as the positions.
	layoutHash := cache.Hash([]byte(resultHash(placed) + opts.LayoutKeyOpts().Config + fmt.Sprintf("%gx%g", opts.Width, opts.Height)))

	// Try to get all formats from cache
	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, stats, err := Render(ctx, placed, opts)
	if err != nil {
		return nil, false, err
	}
	if result != nil {
		result.Stats.mergeRender(stats)
	}
	for _, e := range stats.Errors {
		r.Logger.Warn("skipped item", "error", e)
	}

	// Frames with skipped items are not cached so a later run can retry them.
	if stats.Failed == 0 {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		}
	}

	return rendered, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func resultHash(g *graph.Result) string {
	data, err := graph.MarshalResult(g)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}
