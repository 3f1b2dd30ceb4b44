package dwell

import (
	"testing"
	"time"
)

const frame = 10 * time.Millisecond

// run steps the detector for total time in frame-sized ticks and counts activations.
func run(d *Detector, inside bool, total time.Duration) int {
	fired := 0
	for elapsed := time.Duration(0); elapsed < total; elapsed += frame {
		if d.Step(inside, frame).Fired {
			fired++
		}
	}
	return fired
}

// TestStep_InitialStateOutside verifies a new detector starts Outside with no time.
func TestStep_InitialStateOutside(t *testing.T) {
	d := NewDetector(DefaultConfig())
	if d.State() != Outside || d.Dwell() != 0 || d.Grace() != 0 {
		t.Fatalf("unexpected initial state %v dwell=%v grace=%v", d.State(), d.Dwell(), d.Grace())
	}
}

// TestStep_EntryResetsCounters verifies entering starts a fresh dwell.
func TestStep_EntryResetsCounters(t *testing.T) {
	d := NewDetector(DefaultConfig())
	res := d.Step(true, 500*time.Millisecond)
	if !res.Entered || res.State != Inside || res.Dwell != 0 {
		t.Fatalf("unexpected entry result %+v", res)
	}
}

// TestStep_DwellMonotonicBeforeThreshold verifies dwell grows each frame without firing.
func TestStep_DwellMonotonicBeforeThreshold(t *testing.T) {
	d := NewDetector(DefaultConfig())
	d.Step(true, frame)
	last := d.Dwell()
	for i := 0; i < 90; i++ {
		res := d.Step(true, frame)
		if res.Fired {
			t.Fatalf("unexpected activation at dwell %v", res.Dwell)
		}
		if res.Dwell <= last {
			t.Fatalf("dwell did not increase: %v <= %v", res.Dwell, last)
		}
		last = res.Dwell
	}
}

// TestStep_FiresAfterThreshold verifies holding past the threshold fires.
func TestStep_FiresAfterThreshold(t *testing.T) {
	d := NewDetector(DefaultConfig())
	if fired := run(d, true, 1100*time.Millisecond); fired < 1 {
		t.Fatalf("expected at least one activation, got %d", fired)
	}
}

// TestStep_ThresholdIsStrict verifies dwell equal to the threshold does not fire.
func TestStep_ThresholdIsStrict(t *testing.T) {
	d := NewDetector(DefaultConfig())
	d.Step(true, 0)
	if res := d.Step(true, time.Second); res.Fired {
		t.Fatalf("expected no activation at exactly the threshold")
	}
	if res := d.Step(true, time.Millisecond); !res.Fired {
		t.Fatalf("expected activation just past the threshold")
	}
}

// TestStep_RepeatsWhileHeld verifies the default config fires on every frame past the threshold.
func TestStep_RepeatsWhileHeld(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, true, 1010*time.Millisecond)
	if fired := run(d, true, 100*time.Millisecond); fired != 10 {
		t.Fatalf("expected 10 repeated activations, got %d", fired)
	}
}

// TestStep_SingleFireLatches verifies single-fire fires once per continuous dwell.
func TestStep_SingleFireLatches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SingleFire = true
	d := NewDetector(cfg)
	if fired := run(d, true, 2*time.Second); fired != 1 {
		t.Fatalf("expected exactly one activation, got %d", fired)
	}

	// A forgiven exit keeps the latch.
	run(d, false, 100*time.Millisecond)
	if fired := run(d, true, 500*time.Millisecond); fired != 0 {
		t.Fatalf("expected latch to hold across a forgiven exit, got %d", fired)
	}

	// Leaving for good re-arms it.
	run(d, false, 300*time.Millisecond)
	if d.State() != Outside {
		t.Fatalf("expected Outside after grace expiry, got %v", d.State())
	}
	if fired := run(d, true, 1100*time.Millisecond); fired != 1 {
		t.Fatalf("expected one activation after re-entry, got %d", fired)
	}
}

// TestStep_GraceForgivesShortExit verifies 600ms in, 100ms out, 500ms in still fires.
func TestStep_GraceForgivesShortExit(t *testing.T) {
	d := NewDetector(DefaultConfig())
	if fired := run(d, true, 600*time.Millisecond); fired != 0 {
		t.Fatalf("unexpected early activation")
	}
	run(d, false, 100*time.Millisecond)
	if d.State() != LeavingGrace {
		t.Fatalf("expected LeavingGrace, got %v", d.State())
	}
	if d.Dwell() < 600*time.Millisecond {
		t.Fatalf("expected dwell to keep accruing during grace, got %v", d.Dwell())
	}
	if fired := run(d, true, 500*time.Millisecond); fired < 1 {
		t.Fatalf("expected activation after forgiven exit, dwell=%v", d.Dwell())
	}
	if d.Dwell() < time.Second {
		t.Fatalf("expected dwell >= 1s, got %v", d.Dwell())
	}
}

// TestStep_GraceExpiryResets verifies 600ms in, 300ms out discards the earlier dwell.
func TestStep_GraceExpiryResets(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, true, 600*time.Millisecond)
	run(d, false, 300*time.Millisecond)
	if d.State() != Outside || d.Dwell() != 0 || d.Grace() != 0 {
		t.Fatalf("expected reset after grace expiry, got %v dwell=%v grace=%v", d.State(), d.Dwell(), d.Grace())
	}
	if fired := run(d, true, 600*time.Millisecond); fired != 0 {
		t.Fatalf("expected no activation from pre-gap dwell")
	}
	if fired := run(d, true, 400*time.Millisecond); fired != 0 {
		t.Fatalf("expected no activation before 1s of post-reset dwell, dwell=%v", d.Dwell())
	}
	if fired := run(d, true, 20*time.Millisecond); fired != 1 {
		t.Fatalf("expected activation once post-reset dwell passes 1s, dwell=%v", d.Dwell())
	}
}

// TestStep_GraceOnlyWhileOutside verifies re-entry clears the grace counter.
func TestStep_GraceOnlyWhileOutside(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, true, 100*time.Millisecond)
	run(d, false, 50*time.Millisecond)
	if d.Grace() == 0 {
		t.Fatalf("expected grace to accrue while outside")
	}
	res := d.Step(true, frame)
	if res.State != Inside || res.Grace != 0 {
		t.Fatalf("expected Inside with zero grace, got %+v", res)
	}
}

// TestStep_FiresOnReentryFrame verifies dwell gathered during grace can fire on re-entry.
func TestStep_FiresOnReentryFrame(t *testing.T) {
	d := NewDetector(DefaultConfig())
	d.Step(true, 0)
	d.Step(true, 995*time.Millisecond)
	if res := d.Step(false, 10*time.Millisecond); res.Fired {
		t.Fatalf("expected no activation while leaving")
	}
	if res := d.Step(true, 0); !res.Fired {
		t.Fatalf("expected activation on re-entry, got %+v", res)
	}
}

// TestStep_OutsideStaysIdle verifies an untouched detector accumulates nothing.
func TestStep_OutsideStaysIdle(t *testing.T) {
	d := NewDetector(DefaultConfig())
	run(d, false, time.Second)
	if d.State() != Outside || d.Dwell() != 0 {
		t.Fatalf("expected idle Outside, got %v dwell=%v", d.State(), d.Dwell())
	}
}

// TestProgress_Clamped verifies progress tracks dwell and clamps at 1.
func TestProgress_Clamped(t *testing.T) {
	d := NewDetector(DefaultConfig())
	d.Step(true, 0)
	d.Step(true, 250*time.Millisecond)
	if p := d.Progress(); p != 0.25 {
		t.Fatalf("expected progress 0.25, got %v", p)
	}
	d.Step(true, 5*time.Second)
	if p := d.Progress(); p != 1 {
		t.Fatalf("expected clamped progress 1, got %v", p)
	}
}

// TestStateString verifies state names.
func TestStateString(t *testing.T) {
	if Outside.String() != "outside" || Inside.String() != "inside" || LeavingGrace.String() != "leaving_grace" {
		t.Fatalf("unexpected state names")
	}
}
