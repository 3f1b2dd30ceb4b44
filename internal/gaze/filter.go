package gaze

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
)

// Snapshot is an immutable view of the filter published after each ingest.
type Snapshot struct {
	Position  coords.Point `json:"position"`
	Len       int          `json:"len"`
	Accepted  uint64       `json:"accepted"`
	Dropped   uint64       `json:"dropped"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Filter keeps a sliding-window average of the gaze stream in display pixels.
// Ingest is called from the tracker goroutine; readers use the published snapshot.
type Filter struct {
	screen coords.Size

	mu       sync.Mutex
	win      window
	accepted uint64
	dropped  uint64

	snap atomic.Pointer[Snapshot]
	now  func() time.Time
}

// NewFilter returns a filter for a display of the given pixel size.
func NewFilter(screen coords.Size) (*Filter, error) {
	if err := screen.Validate(); err != nil {
		return nil, err
	}
	f := &Filter{screen: screen, now: time.Now}
	f.snap.Store(&Snapshot{})
	return f, nil
}

// SetNowFunc overrides the clock used for snapshot timestamps.
func (f *Filter) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		f.mu.Lock()
		f.now = fn
		f.mu.Unlock()
	}
}

// Screen returns the display size samples are scaled to.
func (f *Filter) Screen() coords.Size {
	return f.screen
}

// Ingest adds a sample to the window and reports whether it was accepted.
// Invalid samples leave the position and window untouched.
func (f *Filter) Ingest(s Sample) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !s.Valid() {
		f.dropped++
		prev := *f.snap.Load()
		prev.Dropped = f.dropped
		f.snap.Store(&prev)
		return false
	}

	f.win.push(coords.NormToScreen(s.X, s.Y, f.screen))
	f.accepted++
	pos, _ := f.win.mean()
	at := s.At
	if at.IsZero() {
		at = f.now()
	}
	f.snap.Store(&Snapshot{
		Position:  pos,
		Len:       f.win.n,
		Accepted:  f.accepted,
		Dropped:   f.dropped,
		UpdatedAt: at,
	})
	return true
}

// Position returns the current smoothed position, or (0,0) before any valid sample.
func (f *Filter) Position() coords.Point {
	return f.snap.Load().Position
}

// Snapshot returns the latest published state.
func (f *Filter) Snapshot() Snapshot {
	return *f.snap.Load()
}

// Reset clears the window and counters, returning the position to (0,0).
func (f *Filter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.win.reset()
	f.accepted = 0
	f.dropped = 0
	f.snap.Store(&Snapshot{})
}
