package ui

import (
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
)

// PointerKind is the type of a pointer event.
type PointerKind string

const (
	// PointerMove moves the pointer without pressing.
	PointerMove PointerKind = "move"
	// PointerDown presses the pointer.
	PointerDown PointerKind = "down"
	// PointerUp releases the pointer.
	PointerUp PointerKind = "up"
)

// PointerEvent is a mouse or touch event in surface coordinates.
type PointerEvent struct {
	Kind PointerKind
	Pos  coords.Point
}

// Layer owns the buttons of one screen.
type Layer struct {
	cfg     dwell.Config
	buttons []*Button
	pointer coords.Point
}

// NewLayer creates an empty layer whose buttons use cfg.
func NewLayer(cfg dwell.Config) *Layer {
	return &Layer{cfg: cfg}
}

// Add creates a visible button of size centred at center.
func (l *Layer) Add(id, label string, center coords.Point, size coords.Size) *Button {
	rect := coords.RectAround(center, size)
	b := &Button{
		Label:  label,
		rect:   rect,
		target: dwell.NewTarget(id, rect, l.cfg),
	}
	l.buttons = append(l.buttons, b)
	return b
}

// Buttons returns the layer's buttons in creation order.
func (l *Layer) Buttons() []*Button {
	return l.buttons
}

// SetConfig retunes every button's detector.
func (l *Layer) SetConfig(cfg dwell.Config) {
	l.cfg = cfg
	for _, b := range l.buttons {
		b.target.Detector().SetConfig(cfg)
	}
}

// Reset clears dwell and click state of every button.
func (l *Layer) Reset() {
	for _, b := range l.buttons {
		b.reset()
	}
}

// Update advances every button by one frame with the gaze at pos.
func (l *Layer) Update(pos coords.Point, elapsed time.Duration) []dwell.Activation {
	var out []dwell.Activation
	for _, b := range l.buttons {
		if act, _, ok := b.target.Update(pos, elapsed); ok {
			out = append(out, act)
		}
	}
	return out
}

// HandlePointer applies click-in/click-out semantics: a button activates when
// the press and release both land inside it.
func (l *Layer) HandlePointer(ev PointerEvent) []dwell.Activation {
	l.pointer = ev.Pos
	var out []dwell.Activation
	for _, b := range l.buttons {
		if !b.Visible() {
			continue
		}
		inside := b.rect.Contains(ev.Pos)
		switch ev.Kind {
		case PointerDown:
			b.clickIn = inside
		case PointerUp:
			if b.clickIn && inside {
				out = append(out, dwell.Activation{TargetID: b.ID(), Position: ev.Pos})
			}
			b.clickIn = false
		}
	}
	return out
}

// Pointer returns the last pointer position seen.
func (l *Layer) Pointer() coords.Point {
	return l.pointer
}

// Views returns render state for the visible buttons.
// Hover follows the gaze when useTracker is set, otherwise the pointer.
func (l *Layer) Views(useTracker bool) []View {
	out := make([]View, 0, len(l.buttons))
	for _, b := range l.buttons {
		if !b.Visible() {
			continue
		}
		state := b.State()
		hover := state != dwell.Outside
		if !useTracker {
			hover = b.rect.Contains(l.pointer)
		}
		out = append(out, View{
			ID:       b.ID(),
			Label:    b.Label,
			Image:    b.Image,
			Rect:     b.rect,
			State:    state.String(),
			Progress: b.Progress(),
			Hover:    hover,
		})
	}
	return out
}

// Cursor returns the position the cursor is drawn at.
func Cursor(useTracker bool, gaze, pointer coords.Point) coords.Point {
	if useTracker {
		return gaze
	}
	return pointer
}
