// Package frame drives the fixed-rate update loop.
package frame

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Clock reports the time elapsed between consecutive ticks.
type Clock struct {
	mu   sync.Mutex
	now  func() time.Time
	last time.Time
}

// NewClock returns a clock using now, or time.Now when nil.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now}
}

// Tick returns the time since the previous tick. The first tick returns zero.
func (c *Clock) Tick() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	if c.last.IsZero() {
		c.last = t
		return 0
	}
	d := t.Sub(c.last)
	c.last = t
	if d < 0 {
		return 0
	}
	return d
}

// MaxFPS is the highest supported frame rate.
const MaxFPS = 240

// Loop calls a step function at a fixed rate.
type Loop struct {
	interval time.Duration
	clock    *Clock
}

// NewLoop creates a loop ticking fps times per second.
func NewLoop(fps int, clock *Clock) (*Loop, error) {
	if fps <= 0 || fps > MaxFPS {
		return nil, fmt.Errorf("fps must be 1-%d", MaxFPS)
	}
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Loop{interval: time.Second / time.Duration(fps), clock: clock}, nil
}

// Interval returns the tick period.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run calls step with the elapsed frame time until ctx is cancelled or step returns false.
func (l *Loop) Run(ctx context.Context, step func(elapsed time.Duration) bool) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.clock.Tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !step(l.clock.Tick()) {
				return nil
			}
		}
	}
}
