// Package testutil holds test doubles shared across packages.
package testutil

import (
	"sync"

	"github.com/frudas24/gazewaldo/internal/wininput"
)

// Call records a single injected action.
type Call struct {
	Name string
	X    int
	Y    int
}

// FakeInjector implements wininput.Injector and records calls for tests.
type FakeInjector struct {
	mu    sync.Mutex
	Calls []Call
	// X, Y and HasXY are reported by CursorPos and follow MoveAbs.
	X     int
	Y     int
	HasXY bool
	Err   error
}

// Ensure FakeInjector implements the interface.
var _ wininput.Injector = (*FakeInjector)(nil)

// MoveAbs records an absolute move.
func (f *FakeInjector) MoveAbs(x, y int) error {
	return f.record(Call{Name: "MoveAbs", X: x, Y: y}, func() {
		f.X, f.Y, f.HasXY = x, y, true
	})
}

// CursorPos returns the configured cursor position.
func (f *FakeInjector) CursorPos() (int, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.X, f.Y, f.HasXY
}

// Snapshot returns a copy of the recorded calls.
func (f *FakeInjector) Snapshot() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.Calls))
	copy(out, f.Calls)
	return out
}

// record appends c and applies effect unless Err is set.
func (f *FakeInjector) record(c Call, effect func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Calls = append(f.Calls, c)
	if effect != nil {
		effect()
	}
	return nil
}
