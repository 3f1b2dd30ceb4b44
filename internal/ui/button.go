// Package ui holds dwell-activated buttons and their pointer fallback.
package ui

import (
	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
)

// Button is a rectangular dwell target on the drawing surface.
type Button struct {
	Label string
	// Image is an optional scene image shown inside the button.
	Image string

	rect    coords.Rect
	target  *dwell.Target
	clickIn bool
}

// ID returns the button identifier used in activations.
func (b *Button) ID() string {
	return b.target.ID
}

// Rect returns the button bounds in surface coordinates.
func (b *Button) Rect() coords.Rect {
	return b.rect
}

// Visible reports whether the button is drawn and hit-tested.
func (b *Button) Visible() bool {
	return b.target.Visible
}

// SetVisible shows or hides the button.
func (b *Button) SetVisible(v bool) {
	b.target.SetVisible(v)
	if !v {
		b.clickIn = false
	}
}

// State returns the dwell state.
func (b *Button) State() dwell.State {
	return b.target.Detector().State()
}

// Progress returns dwell progress in [0,1].
func (b *Button) Progress() float64 {
	return b.target.Detector().Progress()
}

// reset clears dwell and click state.
func (b *Button) reset() {
	b.target.Detector().Reset()
	b.clickIn = false
}

// View is the render state of a button.
type View struct {
	ID       string      `json:"id"`
	Label    string      `json:"label,omitempty"`
	Image    string      `json:"image,omitempty"`
	Rect     coords.Rect `json:"rect"`
	State    string      `json:"state"`
	Progress float64     `json:"progress"`
	Hover    bool        `json:"hover"`
}
