package viewport

import (
	"time"

	"github.com/matzehuels/relgraph/pkg/errors"
)

// Config bounds zooming and panning and tunes gesture recognition.
type Config struct {
	MinScale float64 `json:"min_scale" toml:"min_scale"`
	MaxScale float64 `json:"max_scale" toml:"max_scale"`

	// PinchDamping is the exponent applied to the raw pinch ratio, so only a
	// fraction of the finger movement is adopted per update.
	PinchDamping float64 `json:"pinch_damping" toml:"pinch_damping"`
	// PinchStepMin and PinchStepMax bound the scale multiplier of a single
	// pinch update.
	PinchStepMin float64 `json:"pinch_step_min" toml:"pinch_step_min"`
	PinchStepMax float64 `json:"pinch_step_max" toml:"pinch_step_max"`

	// JitterThreshold is the smallest single-touch move, in screen pixels,
	// that starts a pan.
	JitterThreshold float64 `json:"jitter_threshold" toml:"jitter_threshold"`
	// TapTimeout is the longest unmoved single touch still counted as a tap.
	TapTimeout time.Duration `json:"tap_timeout" toml:"tap_timeout"`
	// PanBound limits the translation to PanBound·canvas size·max(scale, 1)
	// in either direction of the translation Reset last fitted.
	PanBound float64 `json:"pan_bound" toml:"pan_bound"`
}

// DefaultConfig returns the default viewport settings.
func DefaultConfig() Config {
	return Config{
		MinScale:        0.3,
		MaxScale:        2.5,
		PinchDamping:    0.1,
		PinchStepMin:    0.95,
		PinchStepMax:    1.05,
		JitterThreshold: 5,
		TapTimeout:      300 * time.Millisecond,
		PanBound:        1,
	}
}

// SetDefaults fills zero fields from DefaultConfig.
func (c *Config) SetDefaults() {
	d := DefaultConfig()
	if c.MinScale == 0 {
		c.MinScale = d.MinScale
	}
	if c.MaxScale == 0 {
		c.MaxScale = d.MaxScale
	}
	if c.PinchDamping == 0 {
		c.PinchDamping = d.PinchDamping
	}
	if c.PinchStepMin == 0 {
		c.PinchStepMin = d.PinchStepMin
	}
	if c.PinchStepMax == 0 {
		c.PinchStepMax = d.PinchStepMax
	}
	if c.JitterThreshold == 0 {
		c.JitterThreshold = d.JitterThreshold
	}
	if c.TapTimeout == 0 {
		c.TapTimeout = d.TapTimeout
	}
	if c.PanBound == 0 {
		c.PanBound = d.PanBound
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	switch {
	case c.MinScale <= 0 || c.MaxScale < c.MinScale:
		return errors.New(errors.ErrCodeInvalidInput, "scale bounds must satisfy 0 < min <= max, got [%v, %v]", c.MinScale, c.MaxScale)
	case c.PinchDamping <= 0 || c.PinchDamping > 1:
		return errors.New(errors.ErrCodeInvalidInput, "pinch damping must be in (0, 1], got %v", c.PinchDamping)
	case c.PinchStepMin <= 0 || c.PinchStepMin > 1 || c.PinchStepMax < 1:
		return errors.New(errors.ErrCodeInvalidInput, "pinch step band must contain 1, got [%v, %v]", c.PinchStepMin, c.PinchStepMax)
	case c.JitterThreshold < 0 || c.TapTimeout < 0 || c.PanBound < 0:
		return errors.New(errors.ErrCodeInvalidInput, "jitter threshold, tap timeout and pan bound must not be negative")
	}
	return nil
}
