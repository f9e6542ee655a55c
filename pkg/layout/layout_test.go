package layout

import (
	"context"
	"math"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

var canvas = Options{Width: 800, Height: 600}

func star() ([]graph.Node, []graph.Link) {
	nodes := []graph.Node{
		{ID: "c", Size: graph.SizeLarge, Level: 0},
		{ID: "a", Size: graph.SizeMedium, Level: 1},
		{ID: "b", Size: graph.SizeMedium, Level: 1},
		{ID: "d", Size: graph.SizeMedium, Level: 2},
	}
	links := []graph.Link{
		{ID: "c-a", Source: "c", Target: "a", Confidence: 0.9},
		{ID: "c-b", Source: "c", Target: "b", Confidence: 0.5},
		{ID: "b-d", Source: "b", Target: "d", Confidence: 0.8},
	}
	return nodes, links
}

func TestCircle(t *testing.T) {
	nodes, links := star()
	out, err := Circle{}.Layout(context.Background(), nodes, links, canvas, Config{})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string][2]float64{
		"c": {400, 300},
		"a": {400 + 90, 300},
		"b": {400 - 90, 300},
		"d": {400 + 180, 300},
	}
	for _, n := range out {
		w := want[n.ID]
		if !n.Placed || math.Abs(n.X-w[0]) > 1e-9 || math.Abs(n.Y-w[1]) > 1e-9 {
			t.Errorf("%s at (%v, %v) placed=%v, want %v", n.ID, n.X, n.Y, n.Placed, w)
		}
	}
	if nodes[0].Placed {
		t.Error("input nodes must not be modified")
	}
}

func TestCircle_NoFocal(t *testing.T) {
	nodes := []graph.Node{{ID: "a"}, {ID: "b"}}
	out := circle(nodes, canvas)
	for _, n := range out {
		if d := math.Hypot(n.X-400, n.Y-300); math.Abs(d-90) > 1e-9 {
			t.Errorf("%s at distance %v from center, want 90", n.ID, d)
		}
	}
}

func TestCircle_DeterminismProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		nodes := make([]graph.Node, n)
		for i := range nodes {
			nodes[i] = graph.Node{ID: string(rune('A' + i)), Level: rapid.IntRange(0, 3).Draw(t, "level"), Size: graph.SizeMedium}
		}
		if n > 0 && rapid.Bool().Draw(t, "focal") {
			nodes[0].Size, nodes[0].Level = graph.SizeLarge, 0
		}
		opts := Options{Width: rapid.Float64Range(100, 2000).Draw(t, "w"), Height: rapid.Float64Range(100, 2000).Draw(t, "h")}

		first := circle(nodes, opts)
		second := circle(nodes, opts)
		for i := range first {
			if first[i].X != second[i].X || first[i].Y != second[i].Y || !first[i].Placed {
				t.Fatalf("node %s: (%v,%v) vs (%v,%v)", first[i].ID, first[i].X, first[i].Y, second[i].X, second[i].Y)
			}
		}
	})
}

func TestForce_Deterministic(t *testing.T) {
	nodes, links := star()
	cfg := DefaultConfig()
	a, err := Force{}.Layout(context.Background(), nodes, links, canvas, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Force{}.Layout(context.Background(), nodes, links, canvas, cfg)
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Errorf("node %s differs between runs", a[i].ID)
		}
	}
}

func TestForce_PinsFocalNode(t *testing.T) {
	nodes, links := star()
	out, err := Force{}.Layout(context.Background(), nodes, links, canvas, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if out[0].X != 400 || out[0].Y != 300 {
		t.Errorf("focal at (%v, %v), want canvas center", out[0].X, out[0].Y)
	}
}

func TestForce_ConnectedCloserThanUnconnected(t *testing.T) {
	// Two pairs, each linked internally, no link between the pairs.
	nodes := []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "x"}, {ID: "y"}}
	links := []graph.Link{
		{ID: "a-b", Source: "a", Target: "b", Confidence: 1},
		{ID: "x-y", Source: "x", Target: "y", Confidence: 1},
	}
	out, err := Force{}.Layout(context.Background(), nodes, links, canvas, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	dist := func(i, j int) float64 { return math.Hypot(out[i].X-out[j].X, out[i].Y-out[j].Y) }
	if dist(0, 1) >= dist(0, 2) || dist(2, 3) >= dist(1, 3) {
		t.Errorf("linked distances a-b=%v x-y=%v should be below a-x=%v b-y=%v", dist(0, 1), dist(2, 3), dist(0, 2), dist(1, 3))
	}
}

func TestForce_ZeroIterationsKeepsCircle(t *testing.T) {
	nodes, links := star()
	cfg := DefaultConfig()
	cfg.Iterations = 0
	out, err := Force{}.Layout(context.Background(), nodes, links, canvas, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ref := circle(nodes, canvas)
	for i := range out {
		if math.Abs(out[i].X-ref[i].X) > 1 || math.Abs(out[i].Y-ref[i].Y) > 1 {
			t.Errorf("%s moved more than the initial jitter", out[i].ID)
		}
	}
}

func TestForce_InvalidConfig(t *testing.T) {
	nodes, links := star()
	cfg := DefaultConfig()
	cfg.Damping = 2
	if _, err := (Force{}).Layout(context.Background(), nodes, links, canvas, cfg); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("err = %v, want INVALID_LAYOUT", err)
	}
}

type panicky struct{}

func (panicky) Layout(context.Context, []graph.Node, []graph.Link, Options, Config) ([]graph.Node, error) {
	panic("boom")
}

type failing struct{}

func (failing) Layout(context.Context, []graph.Node, []graph.Link, Options, Config) ([]graph.Node, error) {
	return nil, errors.New(errors.ErrCodeLayoutFailed, "engine unavailable")
}

type unplaced struct{}

func (unplaced) Layout(_ context.Context, nodes []graph.Node, _ []graph.Link, _ Options, _ Config) ([]graph.Node, error) {
	return nodes, nil
}

func TestEngine_Fallback(t *testing.T) {
	nodes, links := star()
	want := circle(nodes, canvas)

	tests := []struct {
		name     string
		strategy Strategy
	}{
		{"panic", panicky{}},
		{"error", failing{}},
		{"unplaced", unplaced{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(nil)
			e.Register("custom", tt.strategy)
			opts := canvas
			opts.Type = "custom"

			res := e.Layout(context.Background(), nodes, links, opts, Config{})
			if !res.Fallback || res.Used != TypeCircle || res.Err == nil {
				t.Fatalf("result = %+v, want circle fallback", res)
			}
			for i := range want {
				if res.Nodes[i].X != want[i].X || res.Nodes[i].Y != want[i].Y {
					t.Errorf("%s not at circle position", res.Nodes[i].ID)
				}
			}
			if !strings.Contains(res.String(), "fallback") {
				t.Errorf("String() = %q", res.String())
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		opts := canvas
		opts.Type = "spiral"
		res := NewEngine(nil).Layout(context.Background(), nodes, links, opts, Config{})
		if !res.Fallback || !errors.Is(res.Err, errors.ErrCodeInvalidLayout) {
			t.Errorf("result = %+v", res)
		}
	})
}

func TestEngine_DefaultsToForce(t *testing.T) {
	nodes, links := star()
	res := NewEngine(nil).Layout(context.Background(), nodes, links, canvas, Config{})
	if res.Used != TypeForce || res.Fallback {
		t.Errorf("result = %+v, want force", res)
	}
}

func TestLayout_Empty(t *testing.T) {
	if out := Layout(nil, nil, canvas, Config{}); len(out) != 0 {
		t.Errorf("Layout(nil) = %v", out)
	}
}

func TestParsePositions(t *testing.T) {
	dot := `digraph G {
	graph [bb="0,0,200,100"];
	node [label="\N"];
	1	[label=A, pos="27,18", width=0.5];
	"bob smith"	[label=B, pos="150.5,\
82"];
	1 -> "bob smith"	[pos="e,140,75 40,25 60,40 100,60 130,70"];
}`
	got := parsePositions(dot)
	if len(got) != 2 {
		t.Fatalf("positions = %v", got)
	}
	if p := got["1"]; p != [2]float64{27, -18} {
		t.Errorf("pos[1] = %v", p)
	}
	if p := got["bob smith"]; p != [2]float64{150.5, -82} {
		t.Errorf("pos[bob smith] = %v", p)
	}
}

func TestFit(t *testing.T) {
	nodes := []graph.Node{{ID: "a", Size: graph.SizeLarge}, {ID: "b"}, {ID: "c"}}
	positions := map[string][2]float64{"a": {0, 0}, "b": {100, 0}, "c": {-100, 0}}
	fit(nodes, positions, canvas)
	if nodes[0].X != 400 || nodes[0].Y != 300 {
		t.Errorf("focal at (%v, %v)", nodes[0].X, nodes[0].Y)
	}
	// Available width 800-2*60 = 680 over a span of 200.
	if math.Abs(nodes[1].X-(400+340)) > 1e-9 {
		t.Errorf("b.X = %v, want 740", nodes[1].X)
	}
}

func TestConfig(t *testing.T) {
	var c Config
	c.SetDefaults()
	if c != DefaultConfig() {
		t.Errorf("SetDefaults() = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate(default) = %v", err)
	}

	partial := Config{Threshold: 1e-9, Seed: 7}
	partial.SetDefaults()
	if partial.Threshold != 1e-9 || partial.Seed != 7 {
		t.Errorf("set fields overwritten: %+v", partial)
	}
	if partial.Iterations != DefaultConfig().Iterations || partial.CenterForce != DefaultConfig().CenterForce {
		t.Errorf("unset fields not defaulted: %+v", partial)
	}

	if err := ValidateType("circle"); err != nil {
		t.Errorf("ValidateType(circle) = %v", err)
	}
	if err := ValidateType("spiral"); err == nil {
		t.Error("ValidateType(spiral) = nil")
	}
	if NextType(TypeGraphviz) != TypeForce || NextType("bogus") != TypeForce {
		t.Error("NextType should wrap around")
	}
}
