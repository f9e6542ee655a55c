package layout

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/relgraph/pkg/errors"
	"github.com/matzehuels/relgraph/pkg/graph"
)

// Force is a deterministic force-directed simulation.
//
// Each iteration accumulates, per node:
//   - repulsion from every other node, Repulsion/d²
//   - attraction along every link toward IdealDistance, Attraction·(d-ideal),
//     weighted by the link's confidence
//   - a pull toward the canvas center, CenterForce·offset
//
// The sum is scaled by Damping, capped at MaxStep and applied. The focal node
// is pinned at the center. The simulation stops after Iterations steps or
// once the largest step falls below Threshold.
//
// Starting positions are the Circle layout plus a small jitter drawn from a
// PCG source seeded with Config.Seed, so identical inputs give identical
// output.
type Force struct{}

// body is the simulation state of one node.
type body struct {
	x, y   float64
	fx, fy float64
	pinned bool
}

// spring is a link between two bodies.
type spring struct {
	a, b   int
	weight float64
}

// Layout implements Strategy.
func (Force) Layout(_ context.Context, nodes []graph.Node, links []graph.Link, opts Options, cfg Config) ([]graph.Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := circle(nodes, opts)
	if len(out) == 0 {
		return out, nil
	}

	cx, cy := opts.Center()
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0xdeadbeef))
	bodies := make([]body, len(out))
	for i, n := range out {
		bodies[i] = body{x: n.X, y: n.Y, pinned: n.IsFocal()}
		if !bodies[i].pinned {
			bodies[i].x += rng.Float64()*2 - 1
			bodies[i].y += rng.Float64()*2 - 1
		}
	}

	idx := graph.NodeIndex(out)
	springs := make([]spring, 0, len(links))
	for _, l := range links {
		a, okA := idx[l.Source]
		b, okB := idx[l.Target]
		if !okA || !okB || a == b {
			continue
		}
		springs = append(springs, spring{a: a, b: b, weight: 0.5 + 0.5*l.Confidence})
	}

	for iter := 0; iter < cfg.Iterations; iter++ {
		if step := simulate(bodies, springs, cx, cy, cfg); step < cfg.Threshold {
			break
		}
	}

	for i := range out {
		x, y := bodies[i].x, bodies[i].y
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			return nil, errors.New(errors.ErrCodeLayoutFailed, "simulation diverged at node %s", out[i].ID)
		}
		out[i].X, out[i].Y, out[i].Placed = x, y, true
	}
	return out, nil
}

// simulate runs one iteration and returns the largest step taken.
func simulate(bodies []body, springs []spring, cx, cy float64, cfg Config) float64 {
	for i := range bodies {
		bodies[i].fx, bodies[i].fy = 0, 0
	}

	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			repel(&bodies[i], &bodies[j], cfg.Repulsion)
		}
	}

	for _, s := range springs {
		attract(&bodies[s.a], &bodies[s.b], cfg.Attraction*s.weight, cfg.IdealDistance)
	}

	var maxStep float64
	for i := range bodies {
		b := &bodies[i]
		if b.pinned {
			continue
		}
		b.fx += (cx - b.x) * cfg.CenterForce
		b.fy += (cy - b.y) * cfg.CenterForce

		dx, dy := b.fx*cfg.Damping, b.fy*cfg.Damping
		step := math.Hypot(dx, dy)
		if cfg.MaxStep > 0 && step > cfg.MaxStep {
			dx, dy = dx/step*cfg.MaxStep, dy/step*cfg.MaxStep
			step = cfg.MaxStep
		}
		b.x += dx
		b.y += dy
		maxStep = max(maxStep, step)
	}
	return maxStep
}

func repel(a, b *body, strength float64) {
	dx, dy := a.x-b.x, a.y-b.y
	d2 := dx*dx + dy*dy
	if d2 < 1 {
		// Coincident nodes: push apart along a fixed axis.
		dx, dy, d2 = 1, 0, 1
	}
	d := math.Sqrt(d2)
	f := strength / d2
	fx, fy := f*dx/d, f*dy/d
	a.fx += fx
	a.fy += fy
	b.fx -= fx
	b.fy -= fy
}

func attract(a, b *body, strength, ideal float64) {
	dx, dy := b.x-a.x, b.y-a.y
	d := math.Max(math.Hypot(dx, dy), 1)
	f := strength * (d - ideal)
	fx, fy := f*dx/d, f*dy/d
	a.fx += fx
	a.fy += fy
	b.fx -= fx
	b.fy -= fy
}

var _ Strategy = Force{}
