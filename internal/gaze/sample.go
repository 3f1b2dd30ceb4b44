// Package gaze smooths the raw gaze stream into a stable screen position.
package gaze

import (
	"math"
	"time"
)

// Sample is one raw gaze reading normalized to [0,1] display coordinates.
// NaN, infinite or far out of range components mark a tracker dropout.
type Sample struct {
	X  float64
	Y  float64
	At time.Time
}

// MaxOffscreen bounds how far outside [0,1] a normalized component may lie
// and still count as real off-screen gaze.
const MaxOffscreen = 10.0

// Invalid returns a dropout sample.
func Invalid() Sample {
	return Sample{X: math.NaN(), Y: math.NaN()}
}

// Valid reports whether both components are finite and within MaxOffscreen of the display.
func (s Sample) Valid() bool {
	return inRange(s.X) && inRange(s.Y)
}

// inRange reports whether v is a finite value in [-MaxOffscreen, 1+MaxOffscreen].
func inRange(v float64) bool {
	return !math.IsNaN(v) && v >= -MaxOffscreen && v <= 1+MaxOffscreen
}
