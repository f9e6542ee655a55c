package layout

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// Strategy places nodes in canvas space.
type Strategy interface {
	Layout(ctx context.Context, nodes []graph.Node, links []graph.Link, opts Options, cfg Config) ([]graph.Node, error)
}

// Result is the outcome of Engine.Layout.
type Result struct {
	Nodes []graph.Node
	// Used is the layout type that produced Nodes.
	Used string
	// Fallback is set when the requested strategy failed and Circle was used.
	Fallback bool
	// Err is the failure that triggered the fallback.
	Err error
}

// Engine selects a strategy by layout type and falls back to Circle when it
// fails.
type Engine struct {
	strategies map[string]Strategy
	logger     *log.Logger
}

// NewEngine returns an engine with the built-in strategies. A nil logger
// discards output.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Engine{
		strategies: map[string]Strategy{
			TypeForce:    Force{},
			TypeCircle:   Circle{},
			TypeGraphviz: Graphviz{},
		},
		logger: logger,
	}
}

// Register installs or replaces the strategy for a layout type.
func (e *Engine) Register(layoutType string, s Strategy) {
	e.strategies[layoutType] = s
}

// Layout runs the strategy named by opts.Type. Any failure (unknown type,
// error, panic, non-finite coordinates) is logged and answered with the
// Circle layout, so Layout always returns placed nodes.
func (e *Engine) Layout(ctx context.Context, nodes []graph.Node, links []graph.Link, opts Options, cfg Config) Result {
	cfg.SetDefaults()
	layoutType := opts.Type
	if layoutType == "" {
		layoutType = TypeForce
	}

	out, err := e.run(ctx, layoutType, nodes, links, opts, cfg)
	if err == nil {
		return Result{Nodes: out, Used: layoutType}
	}

	e.logger.Warn("layout failed, falling back to circle", "type", layoutType, "error", err)
	return Result{
		Nodes:    circle(nodes, opts),
		Used:     TypeCircle,
		Fallback: true,
		Err:      err,
	}
}

func (e *Engine) run(ctx context.Context, layoutType string, nodes []graph.Node, links []graph.Link, opts Options, cfg Config) (out []graph.Node, err error) {
	s, ok := e.strategies[layoutType]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown layout type %q", layoutType)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, errors.New(errors.ErrCodeLayoutFailed, "%s layout panicked: %v", layoutType, r)
		}
	}()

	out, err = s.Layout(ctx, nodes, links, opts, cfg)
	if err != nil {
		return nil, err
	}
	if len(out) != len(nodes) {
		return nil, errors.New(errors.ErrCodeLayoutFailed, "%s layout returned %d nodes, want %d", layoutType, len(out), len(nodes))
	}
	for _, n := range out {
		if !n.Placed || !finite(n.X) || !finite(n.Y) {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "%s layout left node %s unplaced", layoutType, n.ID)
		}
	}
	return out, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Layout runs the default engine with a discarding logger.
func Layout(nodes []graph.Node, links []graph.Link, opts Options, cfg Config) []graph.Node {
	return NewEngine(nil).Layout(context.Background(), nodes, links, opts, cfg).Nodes
}

func (r Result) String() string {
	if r.Fallback {
		return fmt.Sprintf("%s (fallback: %v)", r.Used, r.Err)
	}
	return r.Used
}
