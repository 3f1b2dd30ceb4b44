package gaze

import "github.com/frudas24/gazewaldo/internal/coords"

// WindowSize is the number of accepted samples averaged into the position.
// At ~125 Hz this is roughly 80ms of smoothing latency.
const WindowSize = 10

// window is a fixed ring of the most recent points plus their running sums.
type window struct {
	points [WindowSize]coords.Point
	head   int
	n      int
	sumX   float64
	sumY   float64
}

// push appends p, evicting the oldest point once the ring is full. Sums are
// rebuilt from the ring on eviction so they always equal the window contents.
func (w *window) push(p coords.Point) {
	if w.n < WindowSize {
		w.points[(w.head+w.n)%WindowSize] = p
		w.n++
		w.sumX += p.X
		w.sumY += p.Y
		return
	}
	w.points[w.head] = p
	w.head = (w.head + 1) % WindowSize
	w.sumX, w.sumY = 0, 0
	for _, q := range w.points {
		w.sumX += q.X
		w.sumY += q.Y
	}
}

// mean returns the arithmetic mean of the window; ok is false when empty.
func (w *window) mean() (coords.Point, bool) {
	if w.n == 0 {
		return coords.Point{}, false
	}
	n := float64(w.n)
	return coords.Point{X: w.sumX / n, Y: w.sumY / n}, true
}

// reset empties the window.
func (w *window) reset() {
	*w = window{}
}
