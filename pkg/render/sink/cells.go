package sink

import (
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// Logical pixels per terminal cell. Cells are roughly twice as tall as wide.
const (
	CellWidth  = 8
	CellHeight = 16
)

type cell struct {
	ch    rune
	fg    color.NRGBA
	bg    color.NRGBA
	hasBg bool
}

// Cells is a character-grid surface for terminals.
type Cells struct {
	cols, rows int
	bg         color.NRGBA
	grid       []cell
}

// NewCells returns a grid of cols x rows characters.
func NewCells(cols, rows int) *Cells {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &Cells{cols: cols, rows: rows, grid: make([]cell, cols*rows)}
	c.Clear(color.NRGBA{A: 255})
	return c
}

// Size implements render.Surface.
func (c *Cells) Size() (float64, float64) {
	return float64(c.cols * CellWidth), float64(c.rows * CellHeight)
}

// Dimensions returns the grid size in characters.
func (c *Cells) Dimensions() (cols, rows int) { return c.cols, c.rows }

// CellCenter returns the logical-pixel center of a character cell, for
// translating terminal mouse positions into surface coordinates.
func CellCenter(col, row int) viewport.Point {
	return viewport.Point{X: (float64(col) + 0.5) * CellWidth, Y: (float64(row) + 0.5) * CellHeight}
}

// Clear implements render.Surface.
func (c *Cells) Clear(bg color.NRGBA) {
	c.bg = bg
	for i := range c.grid {
		c.grid[i] = cell{ch: ' '}
	}
}

// Line implements render.Surface.
func (c *Cells) Line(from, to viewport.Point, s render.Stroke) {
	x0, y0 := from.X/CellWidth, from.Y/CellHeight
	x1, y1 := to.X/CellWidth, to.Y/CellHeight
	dx, dy := x1-x0, y1-y0

	ch := lineRune(dx, dy)
	steps := int(math.Ceil(max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		c.set(int(x0), int(y0), ch, s.Color)
		return
	}
	for i := 0; i <= steps; i++ {
		if len(s.Dash) > 0 && (i/2)%2 == 1 {
			continue
		}
		t := float64(i) / float64(steps)
		c.set(int(math.Floor(x0+dx*t)), int(math.Floor(y0+dy*t)), ch, s.Color)
	}
}

func lineRune(dx, dy float64) rune {
	// Compare slopes in square units; a cell is twice as tall as wide.
	ax, ay := math.Abs(dx), math.Abs(dy)*2
	switch {
	case ay < ax*0.5:
		return '─'
	case ax < ay*0.5:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// Polygon implements render.Surface.
func (c *Cells) Polygon(pts []viewport.Point, f render.Fill) {
	if len(pts) < 3 {
		return
	}
	minC, minR, maxC, maxR := c.bbox(pts)
	filled := false
	for row := minR; row <= maxR; row++ {
		for col := minC; col <= maxC; col++ {
			if pointInPolygon(CellCenter(col, row), pts) {
				c.set(col, row, '▪', f.Color)
				filled = true
			}
		}
	}
	if !filled {
		c.set(int(pts[0].X/CellWidth), int(pts[0].Y/CellHeight), '▸', f.Color)
	}
}

// Circle implements render.Surface.
func (c *Cells) Circle(center viewport.Point, radius float64, f render.Fill, s render.Stroke) {
	minC := int(math.Floor((center.X - radius) / CellWidth))
	maxC := int(math.Floor((center.X + radius) / CellWidth))
	minR := int(math.Floor((center.Y - radius) / CellHeight))
	maxR := int(math.Floor((center.Y + radius) / CellHeight))

	ring := s.Width > 0 && radius >= 2*CellHeight
	filled := false
	for row := minR; row <= maxR; row++ {
		for col := minC; col <= maxC; col++ {
			d := CellCenter(col, row).Distance(center)
			if d > radius {
				continue
			}
			fg := f.Color
			if g := f.Gradient; g != nil {
				fg = lerp(g.Inner, g.Outer, d/radius)
			}
			if ring && d > radius-CellWidth*0.75 {
				fg = s.Color
			}
			c.set(col, row, '█', fg)
			filled = true
		}
	}
	if !filled {
		fg := f.Color
		if f.Gradient != nil {
			fg = f.Gradient.Outer
		}
		c.set(int(center.X/CellWidth), int(center.Y/CellHeight), '●', fg)
	}
}

// Text implements render.Surface. Text over a filled cell keeps the fill as
// its background.
func (c *Cells) Text(p viewport.Point, text string, ts render.TextStyle) {
	runes := []rune(text)
	if len(runes) == 0 {
		return
	}
	row := int(math.Floor(p.Y / CellHeight))
	col := int(math.Floor(p.X / CellWidth))
	switch ts.Anchor {
	case render.AnchorMiddle:
		col -= len(runes) / 2
	case render.AnchorEnd:
		col -= len(runes)
	}
	for i, r := range runes {
		idx, ok := c.index(col+i, row)
		if !ok {
			continue
		}
		prev := c.grid[idx]
		next := cell{ch: r, fg: ts.Color}
		if prev.ch == '█' {
			next.bg, next.hasBg = prev.fg, true
		} else if prev.hasBg {
			next.bg, next.hasBg = prev.bg, true
		}
		c.grid[idx] = next
	}
}

// Plain returns the grid as unstyled text, one line per row.
func (c *Cells) Plain() string {
	var b strings.Builder
	for row := range c.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := range c.cols {
			b.WriteRune(c.grid[row*c.cols+col].ch)
		}
	}
	return b.String()
}

// String renders the grid with terminal colors. Runs of equally styled cells
// share one escape sequence.
func (c *Cells) String() string {
	var b strings.Builder
	for row := range c.rows {
		if row > 0 {
			b.WriteByte('\n')
		}
		line := c.grid[row*c.cols : (row+1)*c.cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && sameStyle(line[start], line[end]) {
				end++
			}
			var run strings.Builder
			for _, cl := range line[start:end] {
				run.WriteRune(cl.ch)
			}
			b.WriteString(c.style(line[start]).Render(run.String()))
			start = end
		}
	}
	return b.String()
}

func (c *Cells) style(cl cell) lipgloss.Style {
	bg := c.bg
	if cl.hasBg {
		bg = cl.bg
	}
	st := lipgloss.NewStyle().Background(lipgloss.Color(render.Hex(bg)))
	if cl.ch != ' ' {
		st = st.Foreground(lipgloss.Color(render.Hex(cl.fg)))
	}
	return st
}

func sameStyle(a, b cell) bool {
	if a.hasBg != b.hasBg || (a.hasBg && a.bg != b.bg) {
		return false
	}
	if a.ch == ' ' && b.ch == ' ' {
		return true
	}
	return a.ch != ' ' && b.ch != ' ' && a.fg == b.fg
}

func (c *Cells) index(col, row int) (int, bool) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0, false
	}
	return row*c.cols + col, true
}

func (c *Cells) set(col, row int, ch rune, fg color.NRGBA) {
	if idx, ok := c.index(col, row); ok {
		c.grid[idx] = cell{ch: ch, fg: opaque(fg, c.bg)}
	}
}

func (c *Cells) bbox(pts []viewport.Point) (minC, minR, maxC, maxR int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	return int(math.Floor(minX / CellWidth)), int(math.Floor(minY / CellHeight)),
		int(math.Floor(maxX / CellWidth)), int(math.Floor(maxY / CellHeight))
}

func pointInPolygon(p viewport.Point, pts []viewport.Point) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// opaque blends a translucent color over bg; terminals have no alpha.
func opaque(fg, bg color.NRGBA) color.NRGBA {
	if fg.A == 255 {
		return fg
	}
	out := lerp(bg, fg, float64(fg.A)/255)
	out.A = 255
	return out
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	t = max(0, min(1, t))
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5) }
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
