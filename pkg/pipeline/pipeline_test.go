package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/relgraph/pkg/cache"
	rgerrors "github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
	"github.com/matzehuels/relgraph/pkg/layout"
	"github.com/matzehuels/relgraph/pkg/records"
	"github.com/matzehuels/relgraph/pkg/render"
	"github.com/matzehuels/relgraph/pkg/viewport"
)

func dataset() records.Dataset {
	return records.Dataset{
		Profiles: []records.Profile{
			{ID: "1", Name: "Ada", Company: "Acme"},
			{ID: "2", Name: "Bob", Company: "Acme"},
			{ID: "3", Name: "Cy"},
		},
		Relationships: []records.Relation{
			{SourceProfileID: "1", TargetProfileID: "2", RelationshipType: "colleague", ConfidenceScore: 0.9},
			{SourceProfileID: "2", TargetProfileID: "3", RelationshipType: "friend", ConfidenceScore: 0.2},
		},
	}
}

func ids(nodes []graph.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"pdf", true},
		{"", true},
		{"SVG", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil && !rgerrors.Is(err, rgerrors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %v, want INVALID_FORMAT", rgerrors.GetCode(err))
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"png", "svg"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "gif"}); err == nil {
		t.Error("expected error for gif")
	}
}

func TestValidateLayoutType(t *testing.T) {
	for _, lt := range []string{"force", "circle", "graphviz"} {
		if err := ValidateLayoutType(lt); err != nil {
			t.Errorf("ValidateLayoutType(%q) = %v", lt, err)
		}
	}
	if err := ValidateLayoutType("spiral"); !rgerrors.Is(err, rgerrors.ErrCodeInvalidLayout) {
		t.Errorf("ValidateLayoutType(spiral) = %v, want INVALID_LAYOUT", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if s := opts.Settings(); s.MaxDepth != DefaultMaxDepth || s.MinConfidence != DefaultMinConfidence {
		t.Errorf("graph defaults = %d/%v", s.MaxDepth, s.MinConfidence)
	}
	if opts.LayoutType != layout.TypeForce || opts.Width != 800 || opts.Height != 600 {
		t.Errorf("layout defaults = %s %vx%v", opts.LayoutType, opts.Width, opts.Height)
	}
	if !slices.Equal(opts.Formats, []string{FormatSVG}) || opts.Scale != 2 {
		t.Errorf("render defaults = %v scale %v", opts.Formats, opts.Scale)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("layout config = %+v", opts.Layout)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discarding logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code rgerrors.Code
	}{
		{"bad layout", Options{LayoutType: "spiral"}, rgerrors.ErrCodeInvalidLayout},
		{"bad format", Options{Formats: []string{"gif"}}, rgerrors.ErrCodeInvalidFormat},
		{"confidence above one", Options{MinConfidence: Ptr(1.5)}, rgerrors.ErrCodeInvalidInput},
		{"negative confidence", Options{MinConfidence: Ptr(-0.1)}, rgerrors.ErrCodeInvalidInput},
		{"negative width", Options{Width: -1}, rgerrors.ErrCodeInvalidInput},
		{"control char id", Options{CenterNodeID: "a\x00"}, rgerrors.ErrCodeInvalidInput},
		{"huge scale", Options{Scale: 20}, rgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !rgerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{CenterNodeID: "1", MaxDepth: Ptr(-1), MinConfidence: Ptr(0.0)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.Settings()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Settings() != first {
		t.Errorf("second call changed settings: %+v -> %+v", first, opts.Settings())
	}
	if first.MaxDepth != -1 || first.MinConfidence != 0 {
		t.Errorf("explicit values should survive defaults, got %+v", first)
	}
	if g := opts.GraphOptions(); g.MinConfidence != 0 || g.MaxDepth != -1 {
		t.Errorf("GraphOptions = %+v, want unlimited depth and no filtering", g)
	}
}

func TestApplySettings(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := opts.ApplySettings(Settings{LayoutType: "circle", MinConfidence: 0.5, MaxDepth: 1}); err != nil {
		t.Fatalf("ApplySettings: %v", err)
	}
	if got := opts.Settings(); got != (Settings{LayoutType: "circle", MinConfidence: 0.5, MaxDepth: 1}) {
		t.Errorf("settings = %+v", got)
	}

	err := opts.ApplySettings(Settings{LayoutType: "spiral"})
	if !rgerrors.Is(err, rgerrors.ErrCodeInvalidLayout) {
		t.Fatalf("ApplySettings(spiral) = %v", err)
	}
	if opts.LayoutType != "circle" {
		t.Errorf("failed ApplySettings changed layout type to %q", opts.LayoutType)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 3}
	if got := opts.ArtifactKeyOpts(FormatPNG); got.Scale != 3 {
		t.Errorf("png key scale = %v, want 3", got.Scale)
	}
	if got := opts.ArtifactKeyOpts(FormatSVG); got.Scale != 0 {
		t.Errorf("svg key should not depend on scale, got %v", got.Scale)
	}
}

func TestBuildGraph_ConfidenceFiltering(t *testing.T) {
	g, err := BuildGraph(context.Background(), dataset(), Options{CenterNodeID: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(g.Nodes); !slices.Equal(got, []string{"1", "2"}) {
		t.Errorf("nodes = %v, want [1 2]", got)
	}
	if len(g.Links) != 1 || g.Links[0].ID != "1-2" {
		t.Errorf("links = %+v", g.Links)
	}
}

func TestBuildGraph_ExplicitZeroOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{"defaults", Options{CenterNodeID: "1"}, []string{"1", "2"}},
		{"depth zero keeps the focal node", Options{CenterNodeID: "1", MaxDepth: Ptr(0)}, []string{"1"}},
		{"confidence zero keeps everything", Options{CenterNodeID: "1", MinConfidence: Ptr(0.0)}, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildGraph(context.Background(), dataset(), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got := ids(g.Nodes); !slices.Equal(got, tt.want) {
				t.Errorf("nodes = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLayoutGraph_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	g, _ := BuildGraph(ctx, dataset(), Options{CenterNodeID: "1", MinConfidence: Ptr(0.0)})
	placed, res, err := LayoutGraph(ctx, nil, g, Options{CenterNodeID: "1", LayoutType: "circle"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Used != layout.TypeCircle || res.Fallback {
		t.Errorf("layout result = %v", res)
	}
	for _, n := range g.Nodes {
		if n.Placed {
			t.Errorf("input node %s was placed", n.ID)
		}
	}
	for _, n := range placed.Nodes {
		if !n.Placed {
			t.Errorf("output node %s not placed", n.ID)
		}
	}
}

func TestRender_Formats(t *testing.T) {
	ctx := context.Background()
	opts := Options{CenterNodeID: "1", LayoutType: "circle", Width: 200, Height: 150, Scale: 1, Formats: []string{"png", "svg", "dot", "json"}}
	g, _ := BuildGraph(ctx, dataset(), opts)
	placed, _, _ := LayoutGraph(ctx, nil, g, opts)

	artifacts, stats, err := Render(ctx, placed, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Failed != 0 || stats.NodesDrawn != 4 || stats.LinksDrawn != 2 {
		t.Errorf("stats = %+v, want two frames of 2 nodes and 1 link", stats)
	}
	if !bytes.HasPrefix(artifacts["png"], []byte("\x89PNG")) {
		t.Error("png artifact is not a PNG")
	}
	if !bytes.Contains(artifacts["svg"], []byte("</svg>")) {
		t.Error("svg artifact is not closed")
	}
	if !strings.Contains(string(artifacts["dot"]), "digraph") {
		t.Error("dot artifact is not a digraph")
	}
	back, err := graph.UnmarshalResult(artifacts["json"])
	if err != nil || len(back.Nodes) != 2 {
		t.Errorf("json artifact = %v, %v", back, err)
	}
}

func TestFitTransform(t *testing.T) {
	style := render.DefaultStyle()
	nodes := []graph.Node{{ID: "a", X: 0, Y: 0, Placed: true}, {ID: "b", X: 1000, Y: 0, Placed: true}}

	tr := FitTransform(nodes, 500, 500, style)
	if tr.Scale >= 1 {
		t.Errorf("wide graph should shrink, scale = %v", tr.Scale)
	}
	mid := tr.ToScreen(viewport.Point{X: 500, Y: 0})
	if mid != (viewport.Point{X: 250, Y: 250}) {
		t.Errorf("bounds center maps to %v, want canvas center", mid)
	}

	small := []graph.Node{{ID: "a", X: 10, Y: 10, Placed: true}}
	if tr := FitTransform(small, 500, 500, style); tr.Scale != 1 {
		t.Errorf("small graph should not be enlarged, scale = %v", tr.Scale)
	}
	if tr := FitTransform(nil, 500, 500, style); tr != viewport.Identity() {
		t.Errorf("empty graph transform = %+v", tr)
	}
}

func TestRunner_CachesEveryStage(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{CenterNodeID: "1", LayoutType: "circle", Formats: []string{"svg", "json"}}

	first, err := runner.Execute(ctx, dataset(), opts)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run cache info = %+v, want all misses", first.CacheInfo)
	}
	if first.Stats.NodeCount != 2 || first.Stats.LinkCount != 1 || first.LayoutUsed != "circle" {
		t.Errorf("first run = %s", first)
	}

	second, err := runner.Execute(ctx, dataset(), opts)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.CacheInfo != (CacheInfo{BuildHit: true, LayoutHit: true, RenderHit: true}) {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}
	if first.GraphHash == "" || first.GraphHash != second.GraphHash {
		t.Errorf("graph hash %q vs %q", first.GraphHash, second.GraphHash)
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, dataset(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.BuildHit || third.CacheInfo.LayoutHit {
		t.Errorf("refresh should bypass the cache, got %+v", third.CacheInfo)
	}
}

func TestRunner_InvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), dataset(), Options{Formats: []string{"gif"}})
	if !rgerrors.Is(err, rgerrors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestBus(t *testing.T) {
	var bus Bus
	var got []string
	unsubA := bus.Subscribe(func(ev Event) { got = append(got, "a:"+string(ev.Type)) })
	bus.Subscribe(func(ev Event) { got = append(got, "b:"+string(ev.Type)) })

	bus.Emit(Event{Type: EventNodeTapped})
	unsubA()
	unsubA()
	bus.Emit(Event{Type: EventLinkTapped})

	want := []string{"a:node-tapped", "b:node-tapped", "b:link-tapped"}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

// =============================================================================
// Engine
// =============================================================================

type frameCounter struct {
	w, h   float64
	frames int
	texts  []string
}

func (f *frameCounter) Size() (float64, float64)                           { return f.w, f.h }
func (f *frameCounter) Clear(color.NRGBA)                                  { f.frames++; f.texts = nil }
func (f *frameCounter) Line(viewport.Point, viewport.Point, render.Stroke) {}
func (f *frameCounter) Polygon([]viewport.Point, render.Fill)              {}
func (f *frameCounter) Circle(viewport.Point, float64, render.Fill, render.Stroke) {
}
func (f *frameCounter) Text(_ viewport.Point, text string, _ render.TextStyle) {
	f.texts = append(f.texts, text)
}

func newEngine(t *testing.T, opts Options) (*Engine, *[]Event) {
	t.Helper()
	e, err := NewEngine(opts, viewport.Config{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })
	return e, &events
}

func attach(t *testing.T, e *Engine, s render.Surface) {
	t.Helper()
	p := render.ProviderFunc(func(context.Context) (render.Surface, error) { return s, nil })
	if err := e.Attach(context.Background(), p, render.DefaultRetryPolicy()); err != nil {
		t.Fatalf("Attach: %v", err)
	}
}

func TestEngine_RefreshAndSettings(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle"})
	surface := &frameCounter{w: 400, h: 300}
	attach(t, e, surface)

	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Nodes()); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("nodes = %v", got)
	}
	if opts := e.Options(); opts.Width != 400 || opts.Height != 300 {
		t.Errorf("canvas = %vx%v, want the surface size", opts.Width, opts.Height)
	}
	framesBefore := surface.frames

	if err := e.UpdateSettings(ctx, Settings{LayoutType: "circle", MinConfidence: 0.1, MaxDepth: 2}); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Nodes()); !slices.Equal(got, []string{"1", "2", "3"}) {
		t.Errorf("nodes after lowering min confidence = %v", got)
	}
	if surface.frames <= framesBefore {
		t.Error("settings change should redraw")
	}
	if len(*events) != 1 || (*events)[0].Type != EventSettingsChanged || (*events)[0].Settings.MinConfidence != 0.1 {
		t.Errorf("events = %+v", *events)
	}

	if err := e.UpdateSettings(ctx, Settings{LayoutType: "spiral"}); err == nil {
		t.Error("invalid settings should fail")
	}
	if len(*events) != 1 {
		t.Error("invalid settings must not emit")
	}
}

func TestEngine_SettingsDepthZero(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle"})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}

	want := Settings{LayoutType: "circle", MinConfidence: 0, MaxDepth: 0}
	if err := e.UpdateSettings(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Nodes()); !slices.Equal(got, []string{"1"}) {
		t.Errorf("nodes = %v, want only the focal node", got)
	}
	if got := e.Settings(); got != want {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
	if len(*events) != 1 || (*events)[0].Settings != want {
		t.Errorf("events = %+v", *events)
	}
}

func TestEngine_SetCenterNode(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle", MaxDepth: Ptr(1), MinConfidence: Ptr(0.0)})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}
	if got := ids(e.Nodes()); !slices.Equal(got, []string{"1", "2"}) {
		t.Fatalf("nodes = %v", got)
	}

	if err := e.SetCenterNode(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if e.Graph().CenterNodeID != "3" {
		t.Errorf("center = %q", e.Graph().CenterNodeID)
	}
	if got := ids(e.Nodes()); !slices.Equal(got, []string{"3", "2"}) && !slices.Equal(got, []string{"2", "3"}) {
		t.Errorf("nodes = %v, want 2 and 3", got)
	}
	if len(*events) != 1 || (*events)[0].Type != EventCenterNodeChanged || (*events)[0].CenterNodeID != "3" {
		t.Errorf("events = %+v", *events)
	}
}

func TestEngine_TapEmitsNodeTapped(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle"})
	attach(t, e, &frameCounter{w: 800, h: 600})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}

	var target graph.Node
	for _, n := range e.Nodes() {
		if n.ID == "2" {
			target = n
		}
	}
	screen := e.Transform().ToScreen(viewport.Point{X: target.X, Y: target.Y})
	t0 := time.Now()

	e.HandleTouch(TouchEvent{Kind: TouchStart, Points: []viewport.Point{screen}, At: t0})
	hit := e.HandleTouch(TouchEvent{Kind: TouchEnd, At: t0.Add(50 * time.Millisecond)})

	if hit.Kind != render.HitNode || hit.Node.ID != "2" {
		t.Fatalf("hit = %+v, want node 2", hit)
	}
	if len(*events) != 1 || (*events)[0].Type != EventNodeTapped || (*events)[0].Node.ID != "2" {
		t.Errorf("events = %+v", *events)
	}

	// A long press is not a tap.
	e.HandleTouch(TouchEvent{Kind: TouchStart, Points: []viewport.Point{screen}, At: t0})
	if hit := e.HandleTouch(TouchEvent{Kind: TouchEnd, At: t0.Add(time.Second)}); hit.Kind != render.HitNone {
		t.Errorf("long press hit = %v", hit.Kind)
	}
	if len(*events) != 1 {
		t.Errorf("long press emitted %d events", len(*events)-1)
	}
}

func TestEngine_TapOnLink(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle"})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}
	a, b := e.Nodes()[0], e.Nodes()[1]
	mid := e.Transform().ToScreen(viewport.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2})

	hit := e.Tap(mid)
	if hit.Kind != render.HitLink || hit.Link.ID != "1-2" {
		t.Fatalf("hit = %+v, want link 1-2", hit)
	}
	if len(*events) != 1 || (*events)[0].Type != EventLinkTapped {
		t.Errorf("events = %+v", *events)
	}
}

func TestEngine_PinchIsDamped(t *testing.T) {
	e, _ := newEngine(t, Options{})
	surface := &frameCounter{w: 800, h: 600}
	attach(t, e, surface)
	t0 := time.Now()

	pts := func(d float64) []viewport.Point {
		return []viewport.Point{{X: 400 - d, Y: 300}, {X: 400 + d, Y: 300}}
	}
	e.HandleTouch(TouchEvent{Kind: TouchStart, Points: pts(50), At: t0})
	e.HandleTouch(TouchEvent{Kind: TouchMove, Points: pts(50)})
	frames := surface.frames
	e.HandleTouch(TouchEvent{Kind: TouchMove, Points: pts(75)})

	if s := e.Transform().Scale; s <= 1 || s >= 1.05 {
		t.Errorf("scale after a 1.5x pinch = %v, want within (1, 1.05)", s)
	}
	if surface.frames != frames+1 {
		t.Errorf("pinch should redraw once, drew %d frames", surface.frames-frames)
	}
	if _, ok := e.view.TouchEnd(nil, t0.Add(10*time.Millisecond)); ok {
		t.Error("pinch resolved as a tap")
	}
}

func TestEngine_ViewSurvivesRefresh(t *testing.T) {
	ctx := context.Background()
	e, events := newEngine(t, Options{CenterNodeID: "1", LayoutType: "circle"})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}
	e.Zoom(2, viewport.Point{X: 400, Y: 300})
	zoomed := e.Transform()

	if err := e.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if e.Transform() != zoomed {
		t.Errorf("refresh changed the view: %+v -> %+v", zoomed, e.Transform())
	}

	e.ResetView()
	if e.Transform().Scale != 1 {
		t.Errorf("scale after reset = %v", e.Transform().Scale)
	}
	e.RequestFullscreen()

	var types []EventType
	for _, ev := range *events {
		types = append(types, ev.Type)
	}
	if !slices.Equal(types, []EventType{EventViewResetRequested, EventFullscreenRequested}) {
		t.Errorf("events = %v", types)
	}
}

func TestEngine_LayoutFallback(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, Options{CenterNodeID: "1"})
	e.Layouts().Register(layout.TypeForce, brokenLayout{})
	if err := e.SetData(ctx, dataset()); err != nil {
		t.Fatal(err)
	}
	res := e.LayoutResult()
	if !res.Fallback || res.Used != layout.TypeCircle {
		t.Errorf("layout result = %v, want circle fallback", res)
	}
	for _, n := range e.Nodes() {
		if !n.Placed {
			t.Errorf("node %s unplaced after fallback", n.ID)
		}
	}
}

type brokenLayout struct{}

func (brokenLayout) Layout(context.Context, []graph.Node, []graph.Link, layout.Options, layout.Config) ([]graph.Node, error) {
	return nil, errors.New("solver diverged")
}

func TestEngine_AttachExhausted(t *testing.T) {
	e, _ := newEngine(t, Options{})
	calls := 0
	p := render.ProviderFunc(func(context.Context) (render.Surface, error) {
		calls++
		return nil, errors.New("not mapped")
	})
	err := e.Attach(context.Background(), p, render.RetryPolicy{Attempts: 3, InitialDelay: time.Millisecond})
	if !rgerrors.Is(err, rgerrors.ErrCodeSurfaceUnavailable) {
		t.Fatalf("err = %v, want SURFACE_UNAVAILABLE", err)
	}
	if calls != 3 {
		t.Errorf("provider called %d times, want 3", calls)
	}
	if e.Surface() != nil {
		t.Error("engine should stay detached")
	}
	if st := e.Draw(); st.NodesDrawn != 0 || st.Failed != 0 {
		t.Errorf("Draw without surface = %+v", st)
	}
}

func TestEngine_EmptyData(t *testing.T) {
	e, _ := newEngine(t, Options{})
	attach(t, e, &frameCounter{w: 100, h: 100})
	if len(e.Nodes()) != 0 {
		t.Errorf("nodes = %v", e.Nodes())
	}
	if hit := e.Tap(viewport.Point{X: 50, Y: 50}); hit.Kind != render.HitNone {
		t.Errorf("tap on empty graph = %v", hit.Kind)
	}
}
