package dwell

import (
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
)

// Region is a hit-test predicate supplied by the caller.
type Region interface {
	Contains(p coords.Point) bool
}

// Activation is emitted when a target's dwell passes the threshold.
type Activation struct {
	TargetID string        `json:"target"`
	Position coords.Point  `json:"position"`
	Dwell    time.Duration `json:"dwell"`
}

// Target binds a detector to an identified region.
type Target struct {
	ID      string
	Region  Region
	Visible bool

	det *Detector
}

// NewTarget returns a visible target with its own detector.
func NewTarget(id string, region Region, cfg Config) *Target {
	return &Target{ID: id, Region: region, Visible: true, det: NewDetector(cfg)}
}

// Detector exposes the target's state machine for rendering and stats.
func (t *Target) Detector() *Detector {
	return t.det
}

// SetVisible shows or hides the target; hiding resets its dwell state.
func (t *Target) SetVisible(v bool) {
	if !v {
		t.det.Reset()
	}
	t.Visible = v
}

// Update advances the target by one frame for position pos.
// The returned activation is valid only when ok is true.
func (t *Target) Update(pos coords.Point, elapsed time.Duration) (Activation, Result, bool) {
	if !t.Visible || t.Region == nil {
		t.det.Reset()
		return Activation{}, Result{State: Outside}, false
	}
	res := t.det.Step(t.Region.Contains(pos), elapsed)
	if !res.Fired {
		return Activation{}, res, false
	}
	return Activation{TargetID: t.ID, Position: pos, Dwell: res.Dwell}, res, true
}
