package viewport

import (
	"math"
	"time"

	"github.com/matzehuels/relgraph/pkg/graph"
)

// Phase is the coarse touch state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTouching
)

// Mode is what an active touch sequence is currently doing.
type Mode int

const (
	ModeNone Mode = iota
	ModePanning
	ModePinching
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModePinching:
		return "pinching"
	default:
		return "none"
	}
}

// GestureState is everything the controller remembers about the current
// touch sequence.
type GestureState struct {
	Phase Phase
	Mode  Mode

	// MultiTouch is set once a second finger joins and stays set until the
	// sequence ends, so a pinch never resolves as a tap.
	MultiTouch bool

	LastPoint         Point
	StartTime         time.Time
	StartPoint        Point
	Moved             bool
	LastPinchDistance float64
}

// Tap is a completed tap gesture.
type Tap struct {
	Screen Point
	Canvas Point
}

// Controller owns the view transform and turns raw touch streams into pans,
// pinch zooms and taps.
//
//	idle → touching → {panning | pinching | tapping} → idle
//
// A Controller is not safe for concurrent use.
type Controller struct {
	cfg       Config
	transform Transform
	gesture   GestureState
	width     float64
	height    float64

	// home is the translation Reset last fitted; the pan clamp is
	// measured from it.
	home Point
}

// NewController returns a controller with the identity transform. Zero
// config fields take their defaults.
func NewController(cfg Config) *Controller {
	cfg.SetDefaults()
	return &Controller{cfg: cfg, transform: Identity()}
}

// Config returns the active configuration.
func (c *Controller) Config() Config { return c.cfg }

// Transform returns the current view transform.
func (c *Controller) Transform() Transform { return c.transform }

// Gesture returns a copy of the current gesture state.
func (c *Controller) Gesture() GestureState { return c.gesture }

// SetTransform replaces the transform, applying the scale and pan clamps.
func (c *Controller) SetTransform(t Transform) {
	c.transform = t
	c.transform.Scale = c.clampScale(t.Scale)
	c.clampTranslate()
}

// SetCanvasSize sets the viewport size in screen pixels used by the pan
// clamp and Reset.
func (c *Controller) SetCanvasSize(width, height float64) {
	c.width, c.height = width, height
	c.clampTranslate()
}

// CanvasSize returns the viewport size.
func (c *Controller) CanvasSize() (float64, float64) { return c.width, c.height }

// =============================================================================
// Touch Input
// =============================================================================

// TouchStart handles new touches. points holds every active touch after the
// event, in screen space.
func (c *Controller) TouchStart(points []Point, at time.Time) {
	if len(points) == 0 {
		return
	}
	if c.gesture.Phase == PhaseIdle {
		c.gesture = GestureState{
			Phase:      PhaseTouching,
			StartTime:  at,
			StartPoint: points[0],
			LastPoint:  points[0],
		}
	}
	if len(points) >= 2 {
		c.gesture.MultiTouch = true
		c.gesture.LastPinchDistance = 0
	}
}

// TouchMove handles moving touches and reports whether the transform
// changed. Moves without a preceding TouchStart are ignored.
func (c *Controller) TouchMove(points []Point) bool {
	if c.gesture.Phase != PhaseTouching || len(points) == 0 {
		return false
	}
	if len(points) >= 2 {
		return c.pinch(points[0], points[1])
	}
	return c.pan(points[0])
}

// TouchEnd handles lifted touches. remaining holds the touches still down.
// When the last touch lifts, the sequence resolves and, if it was a short
// unmoved single touch, the tap is returned.
func (c *Controller) TouchEnd(remaining []Point, at time.Time) (Tap, bool) {
	if c.gesture.Phase != PhaseTouching {
		return Tap{}, false
	}

	switch {
	case len(remaining) == 1:
		// Pinch to pan: continue from the remaining finger without a jump.
		c.gesture.LastPinchDistance = 0
		c.gesture.LastPoint = remaining[0]
		c.gesture.Mode = ModePanning
		return Tap{}, false
	case len(remaining) >= 2:
		c.gesture.LastPinchDistance = 0
		return Tap{}, false
	}

	g := c.gesture
	c.gesture = GestureState{}

	if g.MultiTouch || g.Moved || at.Sub(g.StartTime) >= c.cfg.TapTimeout {
		return Tap{}, false
	}
	return Tap{Screen: g.StartPoint, Canvas: c.transform.ToCanvas(g.StartPoint)}, true
}

// Cancel abandons the current touch sequence without emitting a tap.
func (c *Controller) Cancel() {
	c.gesture = GestureState{}
}

func (c *Controller) pan(p Point) bool {
	dx, dy := p.X-c.gesture.LastPoint.X, p.Y-c.gesture.LastPoint.Y
	if !c.gesture.Moved && math.Hypot(dx, dy) < c.cfg.JitterThreshold {
		return false
	}
	c.gesture.Moved = true
	c.gesture.Mode = ModePanning
	c.gesture.LastPoint = p

	before := c.transform
	c.transform.TranslateX += dx
	c.transform.TranslateY += dy
	c.clampTranslate()
	return c.transform != before
}

func (c *Controller) pinch(a, b Point) bool {
	c.gesture.MultiTouch = true
	c.gesture.Moved = true
	c.gesture.Mode = ModePinching

	dist := a.Distance(b)
	last := c.gesture.LastPinchDistance
	c.gesture.LastPinchDistance = dist
	if last <= 0 || dist <= 0 {
		return false
	}
	return c.zoom(c.PinchStep(dist/last), a.Midpoint(b))
}

// PinchStep converts a raw pinch ratio into the damped, banded scale
// multiplier of one update.
func (c *Controller) PinchStep(ratio float64) float64 {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 1
	}
	step := math.Pow(ratio, c.cfg.PinchDamping)
	return math.Max(c.cfg.PinchStepMin, math.Min(c.cfg.PinchStepMax, step))
}

// =============================================================================
// Direct Manipulation
// =============================================================================

// PanBy moves the view by a screen-space delta.
func (c *Controller) PanBy(dx, dy float64) bool {
	before := c.transform
	c.transform.TranslateX += dx
	c.transform.TranslateY += dy
	c.clampTranslate()
	return c.transform != before
}

// ZoomBy multiplies the scale by factor, keeping the canvas point under
// anchor (screen space) fixed. The result is clamped to [MinScale, MaxScale].
func (c *Controller) ZoomBy(factor float64, anchor Point) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	return c.zoom(factor, anchor)
}

func (c *Controller) zoom(factor float64, anchor Point) bool {
	before := c.transform
	old := c.transform.Scale
	next := c.clampScale(old * factor)
	if next == old {
		return false
	}
	ratio := next / old
	c.transform.Scale = next
	c.transform.TranslateX = anchor.X - (anchor.X-c.transform.TranslateX)*ratio
	c.transform.TranslateY = anchor.Y - (anchor.Y-c.transform.TranslateY)*ratio
	c.clampTranslate()
	return c.transform != before
}

// Reset centers the bounding box of all placed nodes in the viewport at
// scale 1 and abandons any gesture in progress.
func (c *Controller) Reset(nodes []graph.Node) {
	c.gesture = GestureState{}
	c.transform = Identity()
	c.home = Point{}
	minX, minY, maxX, maxY, ok := graph.Bounds(nodes)
	if !ok {
		return
	}
	c.transform.TranslateX = c.width/2 - (minX+maxX)/2
	c.transform.TranslateY = c.height/2 - (minY+maxY)/2
	c.home = Point{X: c.transform.TranslateX, Y: c.transform.TranslateY}
}

func (c *Controller) clampScale(s float64) float64 {
	if s == 0 || math.IsNaN(s) {
		s = 1
	}
	return math.Max(c.cfg.MinScale, math.Min(c.cfg.MaxScale, s))
}

func (c *Controller) clampTranslate() {
	if c.width <= 0 || c.height <= 0 {
		return
	}
	k := c.cfg.PanBound * math.Max(c.transform.Scale, 1)
	limX, limY := k*c.width, k*c.height
	c.transform.TranslateX = math.Max(c.home.X-limX, math.Min(c.home.X+limX, c.transform.TranslateX))
	c.transform.TranslateY = math.Max(c.home.Y-limY, math.Min(c.home.Y+limY, c.transform.TranslateY))
}
