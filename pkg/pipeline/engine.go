package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/records"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

// TouchKind is the phase of a raw touch event.
type TouchKind int

const (
	TouchStart TouchKind = iota
	TouchMove
	TouchEnd
	TouchCancel
)

// TouchEvent is one raw pointer or touch event in screen space. Points holds
// the active touches after the event; for TouchEnd it holds the touches that
// remain down.
type TouchEvent struct {
	Kind   TouchKind
	Points []viewport.Point
	At     time.Time
}

// Engine is the interactive host component: it owns one dataset, the
// settings that shape it, the view transform and the drawing surface, and
// keeps them consistent.
//
// Every data or settings change re-runs build and layout in full and redraws.
// The view transform survives those rebuilds and only changes through
// gestures, Pan, Zoom and ResetView. The first successful layout centers
// the graph.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	opts   Options
	logger *log.Logger

	data    records.Dataset
	layouts *layout.Engine
	draw    *render.Renderer
	hits    render.HitTester
	view    *viewport.Controller
	bus     Bus

	surface render.Surface
	graph   *graph.Result
	result  layout.Result
	fitted  bool
}

// NewEngine validates opts and returns an engine without data or surface.
func NewEngine(opts Options, viewCfg viewport.Config) (*Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	viewCfg.SetDefaults()
	if err := viewCfg.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	style := render.DefaultStyle()
	view := viewport.NewController(viewCfg)
	view.SetCanvasSize(opts.Width, opts.Height)
	return &Engine{
		opts:    opts,
		logger:  logger,
		layouts: layout.NewEngine(logger),
		draw:    render.NewRenderer(style, logger),
		hits:    render.NewHitTester(style),
		view:    view,
		graph:   &graph.Result{},
	}, nil
}

// Subscribe registers h for every event the engine emits.
func (e *Engine) Subscribe(h Handler) (unsubscribe func()) { return e.bus.Subscribe(h) }

// Layouts returns the layout engine so hosts can register strategies.
func (e *Engine) Layouts() *layout.Engine { return e.layouts }

// Options returns the current options.
func (e *Engine) Options() Options { return e.opts }

// Settings returns the current user-adjustable settings.
func (e *Engine) Settings() Settings { return e.opts.Settings() }

// Graph returns the current laid-out graph. It is never nil.
func (e *Engine) Graph() *graph.Result { return e.graph }

// Nodes returns the current laid-out nodes.
func (e *Engine) Nodes() []graph.Node { return e.graph.Nodes }

// LayoutResult reports which strategy placed the current nodes.
func (e *Engine) LayoutResult() layout.Result { return e.result }

// Transform returns the current view transform.
func (e *Engine) Transform() viewport.Transform { return e.view.Transform() }

// SetTransform replaces the view transform, clamped to the viewport bounds,
// and redraws. Hosts use it to restore a view.
func (e *Engine) SetTransform(t viewport.Transform) {
	e.view.SetTransform(t)
	e.fitted = true
	e.Draw()
}

// Gesture returns the state of the touch sequence in progress.
func (e *Engine) Gesture() viewport.GestureState { return e.view.Gesture() }

// Surface returns the attached surface, or nil.
func (e *Engine) Surface() render.Surface { return e.surface }

// SetData replaces the dataset and refreshes.
func (e *Engine) SetData(ctx context.Context, ds records.Dataset) error {
	e.data = ds
	return e.Refresh(ctx)
}

// UpdateSettings applies new settings, refreshes and emits settings-changed.
// Invalid settings leave the engine unchanged.
func (e *Engine) UpdateSettings(ctx context.Context, s Settings) error {
	if err := e.opts.ApplySettings(s); err != nil {
		return err
	}
	if err := e.Refresh(ctx); err != nil {
		return err
	}
	e.bus.Emit(Event{Type: EventSettingsChanged, Settings: e.opts.Settings()})
	return nil
}

// SetCenterNode changes the focal node, refreshes and emits
// center-node-changed. An empty id clears the focus and shows the whole
// graph.
func (e *Engine) SetCenterNode(ctx context.Context, id string) error {
	if id != "" {
		if err := errors.ValidateProfileID(id); err != nil {
			return err
		}
	}
	e.opts.CenterNodeID = id
	if err := e.Refresh(ctx); err != nil {
		return err
	}
	e.bus.Emit(Event{Type: EventCenterNodeChanged, CenterNodeID: id, Settings: e.opts.Settings()})
	return nil
}

// Refresh re-runs build and layout for the current data and settings and
// redraws.
func (e *Engine) Refresh(ctx context.Context) error {
	g, err := BuildGraph(ctx, e.data, e.opts)
	if err != nil {
		return err
	}
	placed, res, err := LayoutGraph(ctx, e.layouts, g, e.opts)
	if err != nil {
		return err
	}
	e.graph, e.result = placed, res
	if !e.fitted && len(placed.Nodes) > 0 {
		e.view.Reset(placed.Nodes)
		e.fitted = true
	}
	e.logger.Debug("refreshed", "nodes", len(placed.Nodes), "links", len(placed.Links), "layout", res.Used)
	e.Draw()
	return nil
}

// Attach acquires a surface from p, retrying per policy, adopts its size as
// the canvas and refreshes. On exhaustion it returns an
// ErrCodeSurfaceUnavailable error and the engine stays detached.
func (e *Engine) Attach(ctx context.Context, p render.Provider, policy render.RetryPolicy) error {
	s, err := render.Acquire(ctx, p, policy, e.logger)
	if err != nil {
		return err
	}
	w, h := s.Size()
	if err := errors.ValidateCanvas(w, h); err != nil {
		return errors.Wrap(errors.ErrCodeSurfaceUnavailable, err, "surface")
	}
	e.surface = s
	e.opts.Width, e.opts.Height = w, h
	e.view.SetCanvasSize(w, h)
	e.fitted = false
	return e.Refresh(ctx)
}

// Resize adopts a new canvas size, re-runs layout and re-centers the view.
func (e *Engine) Resize(ctx context.Context, width, height float64) error {
	if err := errors.ValidateCanvas(width, height); err != nil {
		return err
	}
	e.opts.Width, e.opts.Height = width, height
	e.view.SetCanvasSize(width, height)
	e.fitted = false
	return e.Refresh(ctx)
}

// Draw renders the current graph onto the attached surface. Without a
// surface it does nothing.
func (e *Engine) Draw() render.Stats {
	if e.surface == nil {
		return render.Stats{}
	}
	return e.draw.Render(e.surface, e.graph.Nodes, e.graph.Links, e.view.Transform())
}

// HandleTouch feeds one touch event to the viewport. Transform changes
// redraw; a completed tap is hit tested and emits node-tapped or link-tapped.
// The returned hit is HitNone unless the event completed a tap on something.
func (e *Engine) HandleTouch(ev TouchEvent) render.Hit {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	switch ev.Kind {
	case TouchStart:
		e.view.TouchStart(ev.Points, at)
	case TouchMove:
		if e.view.TouchMove(ev.Points) {
			e.Draw()
		}
	case TouchEnd:
		tap, ok := e.view.TouchEnd(ev.Points, at)
		if ok {
			return e.Tap(tap.Screen)
		}
	case TouchCancel:
		e.view.Cancel()
	}
	return render.Hit{}
}

// Tap hit tests a screen point and emits the matching event.
func (e *Engine) Tap(screen viewport.Point) render.Hit {
	hit := e.HitTest(screen)
	switch hit.Kind {
	case render.HitNode:
		n := hit.Node
		e.bus.Emit(Event{Type: EventNodeTapped, Node: &n, Point: hit.Canvas})
	case render.HitLink:
		l := hit.Link
		e.bus.Emit(Event{Type: EventLinkTapped, Link: &l, Point: hit.Canvas})
	}
	return hit
}

// HitTest resolves a screen point against the current graph and transform.
func (e *Engine) HitTest(screen viewport.Point) render.Hit {
	return e.hits.HitTest(screen, e.graph.Nodes, e.graph.Links, e.view.Transform())
}

// Pan moves the view by a screen-space delta and redraws if it changed.
func (e *Engine) Pan(dx, dy float64) bool {
	if !e.view.PanBy(dx, dy) {
		return false
	}
	e.Draw()
	return true
}

// Zoom scales the view about a screen-space anchor and redraws if it
// changed.
func (e *Engine) Zoom(factor float64, anchor viewport.Point) bool {
	if !e.view.ZoomBy(factor, anchor) {
		return false
	}
	e.Draw()
	return true
}

// ResetView centers the graph at scale 1, redraws and emits
// view-reset-requested.
func (e *Engine) ResetView() {
	e.view.Reset(e.graph.Nodes)
	e.Draw()
	e.bus.Emit(Event{Type: EventViewResetRequested})
}

// RequestFullscreen emits fullscreen-requested. Entering fullscreen is up to
// the host, which answers with Resize.
func (e *Engine) RequestFullscreen() {
	e.bus.Emit(Event{Type: EventFullscreenRequested})
}
