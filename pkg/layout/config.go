package layout

import (
	"github.com/matzehuels/relgraph/pkg/errors"
)

// Layout types.
const (
	TypeForce    = "force"
	TypeCircle   = "circle"
	TypeGraphviz = "graphviz"
)

// ValidTypes is the set of supported layout types.
var ValidTypes = map[string]bool{
	TypeForce:    true,
	TypeCircle:   true,
	TypeGraphviz: true,
}

// Types lists the layout types in cycling order.
var Types = []string{TypeForce, TypeCircle, TypeGraphviz}

// RingFactor is the circle layout radius per level, as a fraction of the
// shorter canvas side.
const RingFactor = 0.15

// Config holds the force simulation knobs.
//
// A zero field means unset and takes its default, so none of the knobs can
// be set to exactly zero. Use a tiny positive value instead: a Threshold of
// 1e-9 runs every iteration, a CenterForce of 1e-9 leaves the center pull
// with no practical effect.
type Config struct {
	Attraction    float64 `json:"attraction" toml:"attraction"`
	Repulsion     float64 `json:"repulsion" toml:"repulsion"`
	Damping       float64 `json:"damping" toml:"damping"`
	Iterations    int     `json:"iterations" toml:"iterations"`
	Threshold     float64 `json:"threshold" toml:"threshold"`
	CenterForce   float64 `json:"center_force" toml:"center_force"`
	IdealDistance float64 `json:"ideal_distance" toml:"ideal_distance"`
	MaxStep       float64 `json:"max_step" toml:"max_step"`
	Seed          uint64  `json:"seed" toml:"seed"`
}

// DefaultConfig returns the default simulation settings.
func DefaultConfig() Config {
	return Config{
		Attraction:    0.05,
		Repulsion:     8000,
		Damping:       0.5,
		Iterations:    300,
		Threshold:     0.1,
		CenterForce:   0.01,
		IdealDistance: 120,
		MaxStep:       50,
		Seed:          42,
	}
}

// SetDefaults fills zero fields from DefaultConfig.
func (c *Config) SetDefaults() { c.SetDefaultsFrom(DefaultConfig()) }

// SetDefaultsFrom fills zero fields from d.
func (c *Config) SetDefaultsFrom(d Config) {
	if c.Attraction == 0 {
		c.Attraction = d.Attraction
	}
	if c.Repulsion == 0 {
		c.Repulsion = d.Repulsion
	}
	if c.Damping == 0 {
		c.Damping = d.Damping
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.CenterForce == 0 {
		c.CenterForce = d.CenterForce
	}
	if c.IdealDistance == 0 {
		c.IdealDistance = d.IdealDistance
	}
	if c.MaxStep == 0 {
		c.MaxStep = d.MaxStep
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
}

// Validate checks that all knobs are usable.
func (c Config) Validate() error {
	switch {
	case c.Iterations < 0 || c.Iterations > 100000:
		return errors.New(errors.ErrCodeInvalidLayout, "iterations must be between 0 and 100000, got %d", c.Iterations)
	case c.Damping < 0 || c.Damping > 1:
		return errors.New(errors.ErrCodeInvalidLayout, "damping must be between 0 and 1, got %v", c.Damping)
	case c.Attraction < 0 || c.Repulsion < 0 || c.CenterForce < 0:
		return errors.New(errors.ErrCodeInvalidLayout, "force coefficients must not be negative")
	case c.Threshold < 0 || c.IdealDistance < 0 || c.MaxStep < 0:
		return errors.New(errors.ErrCodeInvalidLayout, "threshold, ideal distance and max step must not be negative")
	}
	return nil
}

// Options describes the canvas a layout targets.
type Options struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Type   string  `json:"layout_type"`
}

// Center returns the canvas center.
func (o Options) Center() (float64, float64) {
	return o.Width / 2, o.Height / 2
}

// ValidateType checks a layout type name.
func ValidateType(t string) error {
	if !ValidTypes[t] {
		return errors.New(errors.ErrCodeInvalidLayout, "unknown layout type %q (want force, circle or graphviz)", t)
	}
	return nil
}

// NextType returns the layout type following t in Types.
func NextType(t string) string {
	for i, v := range Types {
		if v == t {
			return Types[(i+1)%len(Types)]
		}
	}
	return Types[0]
}
