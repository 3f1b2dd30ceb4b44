// Package dwell turns sustained presence inside a region into activation events.
package dwell

import "time"

// State is the hysteresis state of a single target.
type State int

const (
	// Outside means the position is not engaging the target.
	Outside State = iota
	// Inside means the position is in the region and dwell is accruing.
	Inside
	// LeavingGrace means the position left the region but the exit is still forgiven.
	LeavingGrace
)

// String returns a lowercase state name.
func (s State) String() string {
	switch s {
	case Inside:
		return "inside"
	case LeavingGrace:
		return "leaving_grace"
	default:
		return "outside"
	}
}

// Config holds the activation threshold and grace period.
type Config struct {
	Activation time.Duration
	Grace      time.Duration
	// SingleFire latches after the first activation until the target is left.
	SingleFire bool
}

// DefaultConfig returns a 1s activation with a 250ms grace period that fires
// on every frame past the threshold.
func DefaultConfig() Config {
	return Config{
		Activation: 1000 * time.Millisecond,
		Grace:      250 * time.Millisecond,
	}
}

// Result reports what a single Step did.
type Result struct {
	State   State
	Entered bool
	Fired   bool
	Dwell   time.Duration
	Grace   time.Duration
}

// Detector is the per-target dwell state machine. It is driven by the frame loop only.
type Detector struct {
	cfg   Config
	state State
	dwell time.Duration
	grace time.Duration
	fired bool
}

// NewDetector returns a detector in the Outside state.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Config returns the active thresholds.
func (d *Detector) Config() Config {
	return d.cfg
}

// SetConfig replaces the thresholds without touching accumulated state.
func (d *Detector) SetConfig(cfg Config) {
	d.cfg = cfg
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}

// Dwell returns the accumulated dwell time.
func (d *Detector) Dwell() time.Duration {
	return d.dwell
}

// Grace returns the time spent outside during the current grace window.
func (d *Detector) Grace() time.Duration {
	return d.grace
}

// Progress returns dwell relative to the activation threshold, clamped to [0,1].
func (d *Detector) Progress() float64 {
	if d.cfg.Activation <= 0 {
		if d.state == Outside {
			return 0
		}
		return 1
	}
	p := float64(d.dwell) / float64(d.cfg.Activation)
	if p > 1 {
		return 1
	}
	return p
}

// Reset returns the detector to Outside with no accumulated time.
func (d *Detector) Reset() {
	d.state = Outside
	d.dwell = 0
	d.grace = 0
	d.fired = false
}

// Step advances the state machine by one frame.
func (d *Detector) Step(inside bool, elapsed time.Duration) Result {
	if elapsed < 0 {
		elapsed = 0
	}
	res := Result{}

	switch d.state {
	case Outside:
		if inside {
			d.state = Inside
			d.dwell = 0
			d.grace = 0
			res.Entered = true
		}
	case Inside, LeavingGrace:
		d.dwell += elapsed
		if inside {
			d.state = Inside
			d.grace = 0
			if d.dwell > d.cfg.Activation && !(d.cfg.SingleFire && d.fired) {
				d.fired = true
				res.Fired = true
			}
			break
		}
		d.state = LeavingGrace
		d.grace += elapsed
		if d.grace > d.cfg.Grace {
			d.Reset()
		}
	}

	res.State = d.state
	res.Dwell = d.dwell
	res.Grace = d.grace
	return res
}
