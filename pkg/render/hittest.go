package render

import (
	"math"

	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// HitKind says what a screen point resolved to.
type HitKind int

const (
	HitNone HitKind = iota
	HitNode
	HitLink
)

func (k HitKind) String() string {
	switch k {
	case HitNode:
		return "node"
	case HitLink:
		return "link"
	default:
		return "none"
	}
}

// Hit is the result of HitTest.
type Hit struct {
	Kind HitKind
	Node graph.Node
	Link graph.Link
	// Canvas is the tested point in canvas space.
	Canvas viewport.Point
}

// HitTester resolves screen points to nodes and links using the same radii
// and transform contract as Renderer.
type HitTester struct {
	style Style
}

// NewHitTester returns a hit tester matching a renderer drawn with style.
func NewHitTester(style Style) HitTester {
	return HitTester{style: style}
}

// HitTestNode returns the topmost node whose circle contains p.
func (h HitTester) HitTestNode(p viewport.Point, nodes []graph.Node, t viewport.Transform) (graph.Node, bool) {
	c := t.ToCanvas(p)
	// Later nodes are drawn on top.
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if !n.Placed {
			continue
		}
		if math.Hypot(c.X-n.X, c.Y-n.Y) <= h.style.NodeRadius(n) {
			return n, true
		}
	}
	return graph.Node{}, false
}

// HitTestLink returns the first link whose segment passes within its hit
// threshold of p.
func (h HitTester) HitTestLink(p viewport.Point, nodes []graph.Node, links []graph.Link, t viewport.Transform) (graph.Link, bool) {
	c := t.ToCanvas(p)
	idx := graph.NodeIndex(nodes)
	for _, l := range links {
		si, okS := idx[l.Source]
		ti, okT := idx[l.Target]
		if !okS || !okT || !nodes[si].Placed || !nodes[ti].Placed {
			continue
		}
		a := viewport.Point{X: nodes[si].X, Y: nodes[si].Y}
		b := viewport.Point{X: nodes[ti].X, Y: nodes[ti].Y}
		if SegmentDistance(c, a, b) <= h.style.LinkHitThreshold(l) {
			return l, true
		}
	}
	return graph.Link{}, false
}

// HitTest resolves p to a node or, failing that, a link. Nodes always win.
func (h HitTester) HitTest(p viewport.Point, nodes []graph.Node, links []graph.Link, t viewport.Transform) Hit {
	c := t.ToCanvas(p)
	if n, ok := h.HitTestNode(p, nodes, t); ok {
		return Hit{Kind: HitNode, Node: n, Canvas: c}
	}
	if l, ok := h.HitTestLink(p, nodes, links, t); ok {
		return Hit{Kind: HitLink, Link: l, Canvas: c}
	}
	return Hit{Kind: HitNone, Canvas: c}
}

// SegmentDistance returns the distance from p to the segment ab.
func SegmentDistance(p, a, b viewport.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return p.Distance(a)
	}
	u := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	u = max(0, min(1, u))
	return p.Distance(viewport.Point{X: a.X + u*dx, Y: a.Y + u*dy})
}
