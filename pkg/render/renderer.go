package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// Stats reports what a Render call drew.
type Stats struct {
	LinksDrawn int
	NodesDrawn int
	Failed     int
	Errors     []error
}

// Renderer draws graphs onto surfaces. It keeps no per-frame state, so one
// Renderer can serve several surfaces.
type Renderer struct {
	style  Style
	logger *log.Logger
}

// NewRenderer returns a renderer. A nil logger discards output.
func NewRenderer(style Style, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Renderer{style: style, logger: logger}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Render clears s and draws links, then nodes, through t. Items that fail to
// draw are logged, counted and skipped.
func (r *Renderer) Render(s Surface, nodes []graph.Node, links []graph.Link, t viewport.Transform) Stats {
	var stats Stats
	s.Clear(r.style.Background)

	idx := graph.NodeIndex(nodes)
	for _, l := range links {
		err := r.guard(func() error { return r.drawLink(s, l, nodes, idx, t) })
		if err != nil {
			stats.fail(err)
			r.logger.Warn("skipping link", "link", l.ID, "error", err)
			continue
		}
		stats.LinksDrawn++
	}

	for _, n := range nodes {
		err := r.guard(func() error { return r.drawNode(s, n, t) })
		if err != nil {
			stats.fail(err)
			r.logger.Warn("skipping node", "node", n.ID, "error", err)
			continue
		}
		stats.NodesDrawn++
	}
	return stats
}

func (st *Stats) fail(err error) {
	st.Failed++
	st.Errors = append(st.Errors, err)
}

func (r *Renderer) guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrCodeRenderFailed, "panic while drawing: %v", p)
		}
	}()
	return fn()
}

// =============================================================================
// Links
// =============================================================================

func (r *Renderer) drawLink(s Surface, l graph.Link, nodes []graph.Node, idx map[string]int, t viewport.Transform) error {
	si, okS := idx[l.Source]
	ti, okT := idx[l.Target]
	if !okS || !okT {
		return errors.New(errors.ErrCodeRenderFailed, "missing endpoint")
	}
	src, dst := nodes[si], nodes[ti]
	if err := checkPlaced(src); err != nil {
		return err
	}
	if err := checkPlaced(dst); err != nil {
		return err
	}

	a := t.ToScreen(viewport.Point{X: src.X, Y: src.Y})
	b := t.ToScreen(viewport.Point{X: dst.X, Y: dst.Y})

	col, err := ParseHex(graph.TypeInfo(l.Type).Color)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "link color")
	}
	col = WithAlpha(col, graph.StrengthAlpha(l.Strength))

	stroke := Stroke{
		Color: col,
		Width: max(r.style.MinLinkWidth, t.ScaleLength(float64(graph.StrengthWidth(l.Strength)))),
	}
	if l.Style == graph.StyleDashed {
		stroke.Dash = r.style.Dash
	}
	s.Line(a, b, stroke)

	if !l.IsBidirectional() && a != b {
		s.Polygon(r.arrowhead(a, b, t.ScaleLength(r.style.NodeRadius(dst)), t.ScaleLength(r.style.ArrowSize)), Fill{Color: col})
	}
	return nil
}

// arrowhead returns a triangle touching the rim of the target circle.
func (r *Renderer) arrowhead(from, to viewport.Point, targetRadius, size float64) []viewport.Point {
	angle := math.Atan2(to.Y-from.Y, to.X-from.X)
	tip := viewport.Point{
		X: to.X - targetRadius*math.Cos(angle),
		Y: to.Y - targetRadius*math.Sin(angle),
	}
	const spread = math.Pi / 7
	return []viewport.Point{
		tip,
		{X: tip.X - size*math.Cos(angle-spread), Y: tip.Y - size*math.Sin(angle-spread)},
		{X: tip.X - size*math.Cos(angle+spread), Y: tip.Y - size*math.Sin(angle+spread)},
	}
}

// =============================================================================
// Nodes
// =============================================================================

func (r *Renderer) drawNode(s Surface, n graph.Node, t viewport.Transform) error {
	if err := checkPlaced(n); err != nil {
		return err
	}
	c := t.ToScreen(viewport.Point{X: n.X, Y: n.Y})
	radius := t.ScaleLength(r.style.NodeRadius(n))

	fill, border, err := r.nodePaint(n)
	if err != nil {
		return err
	}
	borderWidth := t.ScaleLength(r.style.BorderWidth)
	if n.IsFocal() {
		borderWidth *= 1.5
	}
	s.Circle(c, radius, fill, Stroke{Color: border, Width: borderWidth})

	s.Text(c, n.Initial(), TextStyle{
		Color: r.style.Initial,
		Size:  radius * 0.9,
		Bold:  true,
	})

	if n.IsFocal() || t.Scale >= r.style.LabelScale {
		size := t.ScaleLength(r.style.FontSize)
		s.Text(viewport.Point{X: c.X, Y: c.Y + radius + size}, n.DisplayName(), TextStyle{
			Color: r.style.Label,
			Size:  size,
		})
	}
	return nil
}

func (r *Renderer) nodePaint(n graph.Node) (Fill, color.NRGBA, error) {
	if n.IsFocal() {
		return Fill{Gradient: &RadialGradient{
			Inner:  r.style.FocalInner,
			Outer:  r.style.FocalOuter,
			Offset: viewport.Point{X: -0.3, Y: -0.3},
		}}, r.style.FocalRing, nil
	}
	base, err := ParseHex(n.Color)
	if err != nil {
		base, _ = ParseHex(graph.DefaultNodeColor)
	}
	return Fill{Gradient: &RadialGradient{
		Inner:  Lighten(base, 0.45),
		Outer:  base,
		Offset: viewport.Point{X: -0.3, Y: -0.3},
	}}, r.style.Border, nil
}

func checkPlaced(n graph.Node) error {
	if !n.Placed {
		return errors.New(errors.ErrCodeRenderFailed, "node %s has no position", n.ID)
	}
	if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
		return errors.New(errors.ErrCodeRenderFailed, "node %s has malformed coordinates (%v, %v)", n.ID, n.X, n.Y)
	}
	return nil
}

func (s Stats) String() string {
	return fmt.Sprintf("%d links, %d nodes, %d failed", s.LinksDrawn, s.NodesDrawn, s.Failed)
}
