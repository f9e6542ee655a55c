package layout

import (
	"context"
	"math"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Circle places nodes on concentric rings by level.
//
// The focal node sits at the canvas center. Every other level forms a ring
// of radius RingFactor·min(width, height)·ring with its nodes at equal
// angular spacing, in input order. When the graph has no focal node all
// rings move out by one so nothing lands on the center.
type Circle struct{}

// Layout implements Strategy. It never fails.
func (Circle) Layout(_ context.Context, nodes []graph.Node, _ []graph.Link, opts Options, _ Config) ([]graph.Node, error) {
	return circle(nodes, opts), nil
}

func circle(nodes []graph.Node, opts Options) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)

	cx, cy := opts.Center()
	unit := RingFactor * math.Min(opts.Width, opts.Height)

	hasFocal := false
	for _, n := range out {
		if n.IsFocal() {
			hasFocal = true
			break
		}
	}

	rings := make(map[int][]int)
	var ringOrder []int
	for i := range out {
		if out[i].IsFocal() {
			out[i].X, out[i].Y, out[i].Placed = cx, cy, true
			continue
		}
		ring := out[i].Level
		if !hasFocal || ring == 0 {
			ring++
		}
		if _, seen := rings[ring]; !seen {
			ringOrder = append(ringOrder, ring)
		}
		rings[ring] = append(rings[ring], i)
	}

	for _, ring := range ringOrder {
		members := rings[ring]
		radius := unit * float64(ring)
		step := 2 * math.Pi / float64(len(members))
		for k, i := range members {
			angle := float64(k) * step
			out[i].X = cx + radius*math.Cos(angle)
			out[i].Y = cy + radius*math.Sin(angle)
			out[i].Placed = true
		}
	}
	return out
}

var _ Strategy = Circle{}
