package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/matzehuels/relgraph/pkg/viewport"
)

// Surface is a 2D drawing target in screen pixels.
//
// Methods do not return errors; a surface that cannot draw something panics
// and the renderer contains the damage to the item being drawn.
type Surface interface {
	// Size returns the drawable size in screen pixels.
	Size() (width, height float64)
	// Clear fills the whole surface with bg.
	Clear(bg color.NRGBA)
	// Line strokes a straight segment.
	Line(from, to viewport.Point, s Stroke)
	// Polygon fills a closed polygon.
	Polygon(points []viewport.Point, f Fill)
	// Circle fills and then strokes a circle. A zero-width stroke is skipped.
	Circle(center viewport.Point, radius float64, f Fill, s Stroke)
	// Text draws a single line of text anchored at p.
	Text(p viewport.Point, text string, t TextStyle)
}

// Stroke describes a line.
type Stroke struct {
	Color color.NRGBA
	Width float64
	// Dash is an on/off pattern in screen pixels; empty means solid.
	Dash []float64
}

// Fill describes an area fill. When Gradient is set it wins over Color.
type Fill struct {
	Color    color.NRGBA
	Gradient *RadialGradient
}

// RadialGradient runs from Inner at a highlight point to Outer at the rim.
// The highlight sits at Offset (fractions of the radius) from the center.
type RadialGradient struct {
	Inner  color.NRGBA
	Outer  color.NRGBA
	Offset viewport.Point
}

// Anchor is the horizontal text alignment.
type Anchor int

const (
	AnchorMiddle Anchor = iota
	AnchorStart
	AnchorEnd
)

// TextStyle describes a text run.
type TextStyle struct {
	Color  color.NRGBA
	Size   float64
	Anchor Anchor
	Bold   bool
}

// ParseHex parses "#rrggbb", "#rgb" or "#rrggbbaa".
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// MustHex is ParseHex for package-level constants.
func MustHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats c as "#rrggbb", dropping alpha.
func Hex(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha returns c with its alpha set to a (0..1).
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(clamp(a, 0, 1)*255 + 0.5)
	return c
}

// Lighten mixes c toward white by f (0..1).
func Lighten(c color.NRGBA, f float64) color.NRGBA {
	f = clamp(f, 0, 1)
	mix := func(v uint8) uint8 { return uint8(float64(v) + (255-float64(v))*f + 0.5) }
	return color.NRGBA{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
