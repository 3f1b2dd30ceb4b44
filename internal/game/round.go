package game

import (
	"math"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
	"github.com/frudas24/gazewaldo/internal/level"
)

// Result summarises a finished or running round.
type Result struct {
	ID          string        `json:"id"`
	Scene       level.Scene   `json:"scene"`
	Won         bool          `json:"won"`
	Finished    bool          `json:"finished"`
	Looks       int           `json:"looks"`
	LookTime    time.Duration `json:"-"`
	LookSeconds float64       `json:"lookSeconds"`
	Remaining   int           `json:"remaining"`
}

// Round tracks one attempt at finding the hidden target.
type Round struct {
	id        string
	scene     level.Scene
	det       *dwell.Detector
	win       time.Duration
	remaining time.Duration
	looking   time.Duration
	lookTime  time.Duration
	looks     int
	done      bool
	won       bool
}

// NewRound starts a round on scene. The target must be looked at for longer
// than win before length runs out; grace bridges short glances away.
func NewRound(id string, scene level.Scene, win, length, grace time.Duration) *Round {
	return &Round{
		id:        id,
		scene:     scene,
		det:       dwell.NewDetector(dwell.Config{Activation: win, Grace: grace}),
		win:       win,
		remaining: length,
	}
}

// Step advances the round by one frame with the cursor at pos and reports whether it ended.
func (r *Round) Step(pos coords.Point, elapsed time.Duration) bool {
	if r.done {
		return true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	r.remaining -= elapsed

	prev := r.det.State()
	res := r.det.Step(r.scene.Target.Contains(pos), elapsed)
	if prev != dwell.Outside {
		r.looking += elapsed
		r.lookTime += elapsed
	}
	if res.Entered {
		r.looking = 0
		r.looks++
	}

	if r.looking > r.win {
		r.done, r.won = true, true
	}
	// Running out of time on the same frame still loses.
	if r.remaining <= 0 {
		r.remaining = 0
		r.done, r.won = true, false
	}
	return r.done
}

// Looking returns the uninterrupted look time at the target.
func (r *Round) Looking() time.Duration {
	return r.looking
}

// Countdown returns the whole seconds left, rounded up.
func (r *Round) Countdown() int {
	return int(math.Ceil(r.remaining.Seconds()))
}

// Result returns the round summary.
func (r *Round) Result() Result {
	return Result{
		ID:          r.id,
		Scene:       r.scene,
		Won:         r.won,
		Finished:    r.done,
		Looks:       r.looks,
		LookTime:    r.lookTime,
		LookSeconds: r.lookTime.Seconds(),
		Remaining:   r.Countdown(),
	}
}
