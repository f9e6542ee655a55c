package sink

import (
	"bytes"
	"image"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// basicfont glyphs are 13px tall; text is scaled from that.
const glyphHeight = 13

// Raster is a bitmap surface. Drawing coordinates are logical pixels; the
// backing image is width*dpr by height*dpr device pixels.
type Raster struct {
	dc            *gg.Context
	width, height float64
	dpr           float64
}

// NewRaster returns a raster surface of the given logical size. A dpr below
// 1 is treated as 1.
func NewRaster(width, height int, dpr float64) *Raster {
	dpr = max(dpr, 1)
	dc := gg.NewContext(int(float64(width)*dpr), int(float64(height)*dpr))
	dc.Scale(dpr, dpr)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetLineCapRound()
	return &Raster{dc: dc, width: float64(width), height: float64(height), dpr: dpr}
}

// Size implements render.Surface.
func (r *Raster) Size() (float64, float64) { return r.width, r.height }

// PixelRatio returns the device pixel ratio.
func (r *Raster) PixelRatio() float64 { return r.dpr }

// Clear implements render.Surface.
func (r *Raster) Clear(bg color.NRGBA) {
	r.dc.SetColor(bg)
	r.dc.Clear()
}

// Line implements render.Surface.
func (r *Raster) Line(from, to viewport.Point, s render.Stroke) {
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(s.Width)
	r.dc.SetDash(s.Dash...)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
	r.dc.SetDash()
}

// Polygon implements render.Surface.
func (r *Raster) Polygon(pts []viewport.Point, f render.Fill) {
	if len(pts) < 3 {
		return
	}
	r.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		r.dc.LineTo(p.X, p.Y)
	}
	r.dc.ClosePath()
	r.setFill(pts[0], 0, f)
	r.dc.Fill()
}

// Circle implements render.Surface.
func (r *Raster) Circle(c viewport.Point, radius float64, f render.Fill, s render.Stroke) {
	r.dc.DrawCircle(c.X, c.Y, radius)
	r.setFill(c, radius, f)
	r.dc.FillPreserve()
	if s.Width <= 0 {
		r.dc.ClearPath()
		return
	}
	r.dc.SetColor(s.Color)
	r.dc.SetLineWidth(s.Width)
	r.dc.SetDash(s.Dash...)
	r.dc.Stroke()
	r.dc.SetDash()
}

// Text implements render.Surface.
func (r *Raster) Text(p viewport.Point, text string, ts render.TextStyle) {
	if text == "" || ts.Size <= 0 {
		return
	}
	ax := 0.5
	switch ts.Anchor {
	case render.AnchorStart:
		ax = 0
	case render.AnchorEnd:
		ax = 1
	}
	k := ts.Size / glyphHeight

	r.dc.Push()
	r.dc.ScaleAbout(k, k, p.X, p.Y)
	r.dc.SetColor(ts.Color)
	r.dc.DrawStringAnchored(text, p.X, p.Y, ax, 0.35)
	if ts.Bold {
		r.dc.DrawStringAnchored(text, p.X+0.6, p.Y, ax, 0.35)
	}
	r.dc.Pop()
}

// setFill installs f as the fill pattern. Gradient patterns are evaluated in
// device pixels, so their geometry is scaled by the pixel ratio here.
func (r *Raster) setFill(c viewport.Point, radius float64, f render.Fill) {
	g := f.Gradient
	if g == nil || radius <= 0 {
		r.dc.SetFillStyle(gg.NewSolidPattern(f.Color))
		return
	}
	cx, cy, rr := c.X*r.dpr, c.Y*r.dpr, radius*r.dpr
	grad := gg.NewRadialGradient(cx+g.Offset.X*rr, cy+g.Offset.Y*rr, 0, cx, cy, rr)
	grad.AddColorStop(0, g.Inner)
	grad.AddColorStop(1, g.Outer)
	r.dc.SetFillStyle(grad)
}

// Image returns the backing bitmap.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// EncodePNG writes the bitmap as PNG.
func (r *Raster) EncodePNG(w io.Writer) error { return r.dc.EncodePNG(w) }

// PNG returns the bitmap encoded as PNG.
func (r *Raster) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
