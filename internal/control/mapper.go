package control

import "github.com/frudas24/gazewaldo/internal/coords"

// NormToSurface maps normalized renderer coordinates onto the drawing surface.
// Renderer input is clamped to the display.
func NormToSurface(xn, yn float64, m coords.Mapper) coords.Point {
	return m.NormToSurface(clamp01(xn), clamp01(yn))
}

// clamp01 bounds a float to the [0..1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
