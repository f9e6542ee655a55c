package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/observability"
)

// LayoutGraph places the nodes of g on the canvas described by opts.
//
// The returned graph is a copy of g whose nodes carry positions; g itself is
// not modified. A failing strategy is answered with the circle layout, which
// the returned layout.Result reports through Used and Fallback.
func LayoutGraph(ctx context.Context, engine *layout.Engine, g *graph.Result, opts Options) (*graph.Result, layout.Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, layout.Result{}, err
	}
	if engine == nil {
		engine = layout.NewEngine(opts.Logger)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.LayoutType, len(g.Nodes))
	start := time.Now()

	res := engine.Layout(ctx, g.Nodes, g.Links, opts.LayoutOptions(), opts.Layout)

	hooks.OnLayoutComplete(ctx, opts.LayoutType, res.Used, res.Fallback, time.Since(start), res.Err)

	placed := *g
	placed.Nodes = res.Nodes
	return &placed, res, nil
}
