package errors

import (
	"math"
	"testing"
)

func TestValidateProfileID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"uuid", "9b2f7c1e-5d0a-4c1b-8a55-0f4f3b1d2e77", false},
		{"unicode name", "p-zoë", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProfileID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "graph.png", false},
		{"nested", "out/graph.svg", false},
		{"absolute", "/tmp/graph.png", false},
		{"dotted name", "my..graph.png", false},

		{"empty", "", true},
		{"traversal", "../graph.png", true},
		{"traversal middle", "out/../../etc/passwd", true},
		{"windows traversal", "out\\..\\x", true},
		{"null byte", "graph\x00.png", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateCanvas(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"typical", 800, 600, false},
		{"zero width", 0, 600, true},
		{"negative", 800, -1, true},
		{"nan", math.NaN(), 600, true},
		{"inf", math.Inf(1), 600, true},
		{"huge", 100000, 600, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCanvas(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCanvas(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnitInterval(t *testing.T) {
	for _, v := range []float64{0, 0.3, 1} {
		if err := ValidateUnitInterval("min confidence", v); err != nil {
			t.Errorf("ValidateUnitInterval(%v) = %v, want nil", v, err)
		}
	}
	for _, v := range []float64{-0.1, 1.01, math.NaN()} {
		if err := ValidateUnitInterval("min confidence", v); err == nil {
			t.Errorf("ValidateUnitInterval(%v) = nil, want error", v)
		}
	}
}
