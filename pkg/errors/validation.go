package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateProfileID validates a profile identifier used as a focal node or
// hit-test target. IDs come from user input (CLI flags, API bodies), so the
// rules are conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateProfileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "profile id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "profile id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "profile id contains invalid control characters")
		}
	}

	return nil
}

// ValidatePath validates an output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateCanvas validates canvas dimensions in pixels.
func ValidateCanvas(width, height float64) error {
	if math.IsNaN(width) || math.IsNaN(height) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return New(ErrCodeInvalidInput, "canvas size must be finite")
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "canvas size must be positive, got %gx%g", width, height)
	}
	const maxSide = 16384
	if width > maxSide || height > maxSide {
		return New(ErrCodeInvalidInput, "canvas too large (max %d px per side)", maxSide)
	}
	return nil
}

// ValidateUnitInterval validates that v lies within [0, 1].
func ValidateUnitInterval(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return New(ErrCodeInvalidInput, "%s must be between 0 and 1, got %v", name, v)
	}
	return nil
}
