// Package coords maps points between the physical display and the drawing surface.
package coords

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension reports a zero, negative or non-finite size.
var ErrInvalidDimension = errors.New("invalid dimension")

// Point is a 2D position in pixels of some coordinate space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the pixel extent of a coordinate space.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Validate returns ErrInvalidDimension unless both axes are positive and finite.
func (s Size) Validate() error {
	if !(s.W > 0) || !(s.H > 0) || math.IsInf(s.W, 0) || math.IsInf(s.H, 0) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidDimension, s.W, s.H)
	}
	return nil
}

// ToSurfaceSpace rescales a display point into the drawing surface grid.
func ToSurfaceSpace(p Point, screen, surface Size) (Point, error) {
	if err := validatePair(screen, surface); err != nil {
		return Point{}, err
	}
	return rescale(p, screen, surface), nil
}

// ToScreenSpace rescales a drawing surface point into the display grid.
func ToScreenSpace(p Point, screen, surface Size) (Point, error) {
	if err := validatePair(screen, surface); err != nil {
		return Point{}, err
	}
	return rescale(p, surface, screen), nil
}

// validatePair checks both sides of a mapping.
func validatePair(screen, surface Size) error {
	if err := screen.Validate(); err != nil {
		return fmt.Errorf("screen: %w", err)
	}
	if err := surface.Validate(); err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	return nil
}

// NormToScreen converts a normalized [0,1] coordinate into a whole display pixel.
// Values outside [0,1] are kept so off-screen gaze stays off-screen.
func NormToScreen(xn, yn float64, screen Size) Point {
	return Point{X: math.Round(xn * screen.W), Y: math.Round(yn * screen.H)}
}

// rescale applies the per-axis linear mapping from one size to another.
func rescale(p Point, from, to Size) Point {
	return Point{X: p.X * to.W / from.W, Y: p.Y * to.H / from.H}
}
