package control

import (
	"errors"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/display"
	"github.com/frudas24/gazewaldo/internal/wininput"
)

const (
	minMoveInterval = 16 * time.Millisecond
	minMoveDelta    = 2
)

// Follower moves the OS cursor to the smoothed gaze position.
type Follower struct {
	mu         sync.Mutex
	injector   wininput.Injector
	display    display.Display
	lastMoveAt time.Time
	lastX      int
	lastY      int
	now        func() time.Time
}

// NewFollower returns a follower that keeps the cursor on d.
func NewFollower(injector wininput.Injector, d display.Display) (*Follower, error) {
	if injector == nil {
		return nil, errors.New("injector is required")
	}
	return &Follower{injector: injector, display: d, now: time.Now}, nil
}

// SetNowFunc overrides the clock used for throttling.
func (f *Follower) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = fn
}

// Follow moves the cursor to the display pixel p. Moves are throttled and
// skipped when the cursor is already there.
func (f *Follower) Follow(p coords.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	x, y := ScreenToDesktop(f.display, p.X, p.Y)
	x, y = ClampPointToDisplay(f.display, x, y)

	now := f.now()
	if !f.lastMoveAt.IsZero() {
		if now.Sub(f.lastMoveAt) < minMoveInterval {
			return nil
		}
		if abs(x-f.lastX) < minMoveDelta && abs(y-f.lastY) < minMoveDelta {
			return nil
		}
	}
	if cx, cy, ok := f.injector.CursorPos(); ok && cx == x && cy == y {
		return nil
	}

	if err := applyActions(f.injector, []Action{{Type: ActMove, X: x, Y: y}}); err != nil {
		return err
	}
	f.lastMoveAt = now
	f.lastX = x
	f.lastY = y
	return nil
}

// abs returns the absolute value of an integer.
func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
