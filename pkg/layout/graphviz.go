package layout

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// Graphviz delegates placement to a Graphviz layout engine and scales the
// result into the canvas. The focal node, when present, is re-centered on
// the canvas center.
type Graphviz struct {
	// Engine is the Graphviz layout: "neato" (default) or "fdp".
	Engine string
}

// Layout implements Strategy.
func (g Graphviz) Layout(ctx context.Context, nodes []graph.Node, links []graph.Link, opts Options, _ Config) ([]graph.Node, error) {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)
	if len(out) == 0 {
		return out, nil
	}

	dot := graph.ToDOT(&graph.Result{Nodes: out, Links: links}, graph.DOTOptions{})
	laid, err := runGraphviz(ctx, dot, g.engine())
	if err != nil {
		return nil, err
	}

	positions := parsePositions(laid)
	for _, n := range out {
		if _, ok := positions[n.ID]; !ok {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "graphviz returned no position for node %s", n.ID)
		}
	}
	fit(out, positions, opts)
	return out, nil
}

func (g Graphviz) engine() graphviz.Layout {
	if g.Engine == "fdp" {
		return graphviz.FDP
	}
	return graphviz.NEATO
}

func runGraphviz(ctx context.Context, dot string, engine graphviz.Layout) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLayoutFailed, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeLayoutFailed, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(engine).Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeLayoutFailed, err, "graphviz layout")
	}
	return buf.String(), nil
}

var (
	stmtRe = regexp.MustCompile(`(?m)^\s*("(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+)\s*\[([^\]]*)\]`)
	posRe  = regexp.MustCompile(`\bpos="(-?[0-9.e+-]+),(-?[0-9.e+-]+)"`)
)

// parsePositions extracts node positions from laid-out DOT output. Edge pos
// attributes hold spline point lists and never match posRe.
func parsePositions(dot string) map[string][2]float64 {
	dot = strings.ReplaceAll(dot, "\\\n", "")
	positions := make(map[string][2]float64)
	for _, m := range stmtRe.FindAllStringSubmatch(dot, -1) {
		id := m[1]
		switch id {
		case "graph", "node", "edge":
			continue
		}
		if strings.HasPrefix(id, `"`) {
			unq, err := strconv.Unquote(id)
			if err != nil {
				continue
			}
			id = unq
		}
		pm := posRe.FindStringSubmatch(m[2])
		if pm == nil {
			continue
		}
		x, errX := strconv.ParseFloat(pm[1], 64)
		y, errY := strconv.ParseFloat(pm[2], 64)
		if errX != nil || errY != nil {
			continue
		}
		// Graphviz y grows upwards.
		positions[id] = [2]float64{x, -y}
	}
	return positions
}

// fit scales positions uniformly into the canvas with a margin and writes
// them into nodes.
func fit(nodes []graph.Node, positions map[string][2]float64, opts Options) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		p := positions[n.ID]
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}

	margin := 0.1 * math.Min(opts.Width, opts.Height)
	availW, availH := opts.Width-2*margin, opts.Height-2*margin
	scale := 1.0
	if w, h := maxX-minX, maxY-minY; w > 0 || h > 0 {
		scale = math.Inf(1)
		if w > 0 {
			scale = availW / w
		}
		if h > 0 {
			scale = math.Min(scale, availH/h)
		}
	}

	cx, cy := opts.Center()
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	var offX, offY float64
	for _, n := range nodes {
		if n.IsFocal() {
			p := positions[n.ID]
			offX, offY = (p[0]-midX)*scale, (p[1]-midY)*scale
		}
	}
	for i := range nodes {
		p := positions[nodes[i].ID]
		nodes[i].X = cx + (p[0]-midX)*scale - offX
		nodes[i].Y = cy + (p[1]-midY)*scale - offY
		nodes[i].Placed = true
	}
}

func (g Graphviz) String() string { return fmt.Sprintf("graphviz(%s)", g.engine()) }

var _ Strategy = Graphviz{}
