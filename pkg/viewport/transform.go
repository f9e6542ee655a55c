package viewport

import "math"

// Point is a 2D coordinate. Whether it is in screen or canvas space depends
// on where it came from.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Midpoint returns the point halfway between p and q.
func (p Point) Midpoint(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Transform maps canvas space to screen space:
//
//	screen = canvas·Scale + Translate
//
// The renderer draws with ToScreen and the hit tester resolves taps with
// ToCanvas, so the two always agree on where things are.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity returns the transform that leaves coordinates unchanged.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ToScreen maps a canvas point to screen space.
func (t Transform) ToScreen(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// ToCanvas maps a screen point to canvas space. A zero scale is treated as 1.
func (t Transform) ToCanvas(p Point) Point {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return Point{
		X: (p.X - t.TranslateX) / s,
		Y: (p.Y - t.TranslateY) / s,
	}
}

// ScaleLength maps a canvas length to screen pixels.
func (t Transform) ScaleLength(l float64) float64 {
	return l * t.Scale
}
