// Package display describes display geometry, density and enumeration.
package display

import (
	"errors"

	"github.com/frudas24/gazewaldo/internal/coords"
)

// ErrUnsupported reports that displays cannot be enumerated on this platform.
var ErrUnsupported = errors.New("display enumeration is only supported on Windows")

// Display describes a monitor's bounds and pixel density.
type Display struct {
	Index   int     `json:"index"`
	X       int     `json:"x"`
	Y       int     `json:"y"`
	W       int     `json:"w"`
	H       int     `json:"h"`
	DPIX    float64 `json:"dpiX"`
	DPIY    float64 `json:"dpiY"`
	Primary bool    `json:"primary"`
}

// Size returns the display extent in pixels.
func (d Display) Size() coords.Size {
	return coords.Size{W: float64(d.W), H: float64(d.H)}
}

// Origin returns the top-left corner in virtual-desktop coordinates.
func (d Display) Origin() coords.Point {
	return coords.Point{X: float64(d.X), Y: float64(d.Y)}
}

// ByIndex returns the display matching the 1-based index.
func ByIndex(list []Display, idx int) (Display, bool) {
	for _, d := range list {
		if d.Index == idx {
			return d, true
		}
	}
	return Display{}, false
}

// Primary returns the primary display, or the first one when none is flagged.
func Primary(list []Display) (Display, bool) {
	for _, d := range list {
		if d.Primary {
			return d, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return Display{}, false
}
