package control

import (
	"math"

	"github.com/frudas24/gazewaldo/internal/display"
)

// ClampPointToDisplay clamps (x,y) to stay inside the display bounds.
func ClampPointToDisplay(d display.Display, x, y int) (int, int) {
	if d.W <= 0 || d.H <= 0 {
		return x, y
	}
	minX := d.X
	minY := d.Y
	maxX := d.X + d.W - 1
	maxY := d.Y + d.H - 1
	if x < minX {
		x = minX
	}
	if x > maxX {
		x = maxX
	}
	if y < minY {
		y = minY
	}
	if y > maxY {
		y = maxY
	}
	return x, y
}

// ScreenToDesktop converts a display-local pixel into virtual-desktop coordinates.
func ScreenToDesktop(d display.Display, px, py float64) (int, int) {
	return d.X + int(math.Round(px)), d.Y + int(math.Round(py))
}
