package graph

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeConfidence converts a raw confidence score into [0, 1].
//
// Sources disagree on the representation, so the raw value may be a fraction,
// a percentage (any value above 1 is divided by 100), a numeric string (with
// an optional trailing "%"), or missing. Missing, empty, NaN and unparseable
// values become DefaultConfidence. The result is always clamped into [0, 1].
func NormalizeConfidence(raw any) float64 {
	v, ok := toFloat(raw)
	if !ok || math.IsNaN(v) {
		return DefaultConfidence
	}
	if v > 1 {
		v /= 100
	}
	return clamp01(v)
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case string:
		s := strings.TrimSpace(v)
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case interface{ Float64() (float64, error) }:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// NormalizeStrength maps a raw strength onto strong, medium or weak.
// Unknown and empty values become medium.
func NormalizeStrength(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StrengthStrong:
		return StrengthStrong
	case StrengthWeak:
		return StrengthWeak
	default:
		return StrengthMedium
	}
}

// NormalizeDirection maps a raw direction onto bidirectional or one-way.
// Empty values are bidirectional; anything else that is not recognizably
// bidirectional is one-way.
func NormalizeDirection(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", DirectionBidirectional, "both", "mutual", "undirected":
		return DirectionBidirectional
	default:
		return DirectionOneWay
	}
}

// LinkStyle returns the line style for a normalized confidence.
func LinkStyle(confidence float64) string {
	if confidence > HighConfidenceThreshold {
		return StyleSolid
	}
	return StyleDashed
}
