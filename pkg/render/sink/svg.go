package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// SVG is a vector surface. Call Bytes once drawing is done to close the
// document.
type SVG struct {
	buf           bytes.Buffer
	canvas        *svg.SVG
	width, height int
	gradients     int
	closed        bool
}

// NewSVG starts an SVG document of the given size.
func NewSVG(width, height int) *SVG {
	s := &SVG{width: width, height: height}
	s.canvas = svg.New(&s.buf)
	s.canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	return s
}

// Size implements render.Surface.
func (s *SVG) Size() (float64, float64) { return float64(s.width), float64(s.height) }

// Clear implements render.Surface. The background is a full-size rect; earlier
// content stays in the document underneath it.
func (s *SVG) Clear(bg color.NRGBA) {
	s.canvas.Rect(0, 0, s.width, s.height, "fill:"+css(bg)+opacity("fill-opacity", bg))
}

// Line implements render.Surface.
func (s *SVG) Line(from, to viewport.Point, st render.Stroke) {
	style := fmt.Sprintf("stroke:%s;stroke-width:%s;stroke-linecap:round%s",
		css(st.Color), num(st.Width), opacity("stroke-opacity", st.Color))
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, d := range st.Dash {
			parts[i] = num(d)
		}
		style += ";stroke-dasharray:" + strings.Join(parts, ",")
	}
	s.canvas.Line(px(from.X), px(from.Y), px(to.X), px(to.Y), style)
}

// Polygon implements render.Surface.
func (s *SVG) Polygon(pts []viewport.Point, f render.Fill) {
	if len(pts) < 3 {
		return
	}
	xs, ys := make([]int, len(pts)), make([]int, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = px(p.X), px(p.Y)
	}
	s.canvas.Polygon(xs, ys, "fill:"+css(f.Color)+opacity("fill-opacity", f.Color))
}

// Circle implements render.Surface. Every gradient-filled circle gets its own
// radialGradient definition.
func (s *SVG) Circle(c viewport.Point, radius float64, f render.Fill, st render.Stroke) {
	fill := css(f.Color) + opacity("fill-opacity", f.Color)
	if g := f.Gradient; g != nil {
		s.gradients++
		id := fmt.Sprintf("node-grad-%d", s.gradients)
		s.canvas.Def()
		s.canvas.RadialGradient(id, 50, 50, 50, pct(g.Offset.X), pct(g.Offset.Y), []svg.Offcolor{
			{Offset: 0, Color: css(g.Inner), Opacity: alpha(g.Inner)},
			{Offset: 100, Color: css(g.Outer), Opacity: alpha(g.Outer)},
		})
		s.canvas.DefEnd()
		fill = "url(#" + id + ")"
	}
	style := "fill:" + fill
	if st.Width > 0 {
		style += fmt.Sprintf(";stroke:%s;stroke-width:%s%s", css(st.Color), num(st.Width), opacity("stroke-opacity", st.Color))
	}
	s.canvas.Circle(px(c.X), px(c.Y), max(px(radius), 1), style)
}

// Text implements render.Surface.
func (s *SVG) Text(p viewport.Point, text string, ts render.TextStyle) {
	if text == "" {
		return
	}
	anchor := "middle"
	switch ts.Anchor {
	case render.AnchorStart:
		anchor = "start"
	case render.AnchorEnd:
		anchor = "end"
	}
	style := fmt.Sprintf("fill:%s;font-size:%spx;font-family:system-ui,sans-serif;text-anchor:%s;dominant-baseline:central",
		css(ts.Color), num(ts.Size), anchor)
	if ts.Bold {
		style += ";font-weight:bold"
	}
	s.canvas.Text(px(p.X), px(p.Y), text, style)
}

// Bytes closes the document and returns it.
func (s *SVG) Bytes() []byte {
	if !s.closed {
		s.canvas.End()
		s.closed = true
	}
	return s.buf.Bytes()
}

func css(c color.NRGBA) string { return render.Hex(c) }

func alpha(c color.NRGBA) float64 { return float64(c.A) / 255 }

func opacity(attr string, c color.NRGBA) string {
	if c.A == 255 {
		return ""
	}
	return fmt.Sprintf(";%s:%.2f", attr, alpha(c))
}

func px(v float64) int { return int(math.Round(v)) }

func num(v float64) string { return fmt.Sprintf("%g", math.Round(v*100)/100) }

// pct converts a gradient offset in radii (-1..1) to a bounding-box percentage.
func pct(off float64) uint8 {
	return uint8(math.Round(50 + max(-1, min(1, off))*50))
}
