package pipeline

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/observability"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/render/sink"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// fitMargin is the padding kept around the graph when fitting it to a
// static artifact.
const fitMargin = 20.0

// Render generates output artifacts in the requested formats.
//
// PNG and SVG draw the placed graph through the shared renderer, fitted to the
// canvas. DOT carries the positions as pinned coordinates and JSON is the
// serialized graph. Items that fail to draw are skipped and counted in the
// returned stats; only a format-level failure is an error.
func Render(ctx context.Context, g *graph.Result, opts Options) (map[string][]byte, render.Stats, error) {
	var stats render.Stats
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, stats, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, stats, err := renderFormats(ctx, g, opts)

	hooks.OnRenderComplete(ctx, opts.Formats, stats.Failed, time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}
	return artifacts, stats, nil
}

// renderFormats draws every format concurrently. Each format gets its own
// surface; the renderer and the graph are only read.
func renderFormats(ctx context.Context, g *graph.Result, opts Options) (map[string][]byte, render.Stats, error) {
	style := render.DefaultStyle()
	renderer := render.NewRenderer(style, opts.Logger)
	w, h := int(math.Round(opts.Width)), int(math.Round(opts.Height))
	t := FitTransform(g.Nodes, opts.Width, opts.Height, style)

	data := make([][]byte, len(opts.Formats))
	stats := make([]render.Stats, len(opts.Formats))

	eg, ctx := errgroup.WithContext(ctx)
	for i, format := range opts.Formats {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			switch format {
			case FormatPNG:
				r := sink.NewRaster(w, h, opts.Scale)
				stats[i] = renderer.Render(r, g.Nodes, g.Links, t)
				data[i], err = r.PNG()
			case FormatSVG:
				s := sink.NewSVG(w, h)
				stats[i] = renderer.Render(s, g.Nodes, g.Links, t)
				data[i] = s.Bytes()
			case FormatDOT:
				data[i] = []byte(graph.ToDOT(g, graph.DOTOptions{Positions: true, Detailed: true}))
			case FormatJSON:
				data[i], err = graph.MarshalResult(g)
			default:
				err = errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
			}
			if err != nil {
				return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
			}
			return nil
		})
	}

	var total render.Stats
	err := eg.Wait()
	for _, st := range stats {
		total = addStats(total, st)
	}
	if err != nil {
		return nil, total, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for i, format := range opts.Formats {
		artifacts[format] = data[i]
	}
	return artifacts, total, nil
}

func addStats(a, b render.Stats) render.Stats {
	a.LinksDrawn += b.LinksDrawn
	a.NodesDrawn += b.NodesDrawn
	a.Failed += b.Failed
	a.Errors = append(a.Errors, b.Errors...)
	return a
}

// FitTransform returns the view transform that centers the placed nodes on
// a width x height canvas, shrinking (never enlarging) the graph so every
// node and its radius fits inside the margin.
func FitTransform(nodes []graph.Node, width, height float64, style render.Style) viewport.Transform {
	minX, minY, maxX, maxY, ok := graph.Bounds(nodes)
	if !ok {
		return viewport.Identity()
	}
	pad := style.LargeRadius + fitMargin
	bw, bh := maxX-minX+2*pad, maxY-minY+2*pad
	scale := math.Min(1, math.Min(width/bw, height/bh))
	return viewport.Transform{
		Scale:      scale,
		TranslateX: width/2 - (minX+maxX)/2*scale,
		TranslateY: height/2 - (minY+maxY)/2*scale,
	}
}
