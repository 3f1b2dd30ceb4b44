package display

import (
	"testing"

	"github.com/frudas24/gazewaldo/internal/coords"
)

// TestByIndex_Found verifies a display is found by index.
func TestByIndex_Found(t *testing.T) {
	list := []Display{{Index: 1, W: 100, H: 100}, {Index: 2, W: 200, H: 200}}
	d, ok := ByIndex(list, 2)
	if !ok || d.Index != 2 {
		t.Fatalf("expected index 2, got ok=%v display=%+v", ok, d)
	}
}

// TestByIndex_NotFound verifies missing indexes return false.
func TestByIndex_NotFound(t *testing.T) {
	if _, ok := ByIndex([]Display{{Index: 1}}, 3); ok {
		t.Fatalf("expected not found")
	}
}

// TestPrimary_PrefersFlag verifies the flagged display wins over list order.
func TestPrimary_PrefersFlag(t *testing.T) {
	list := []Display{{Index: 1}, {Index: 2, Primary: true}}
	d, ok := Primary(list)
	if !ok || d.Index != 2 {
		t.Fatalf("expected primary index 2, got %+v", d)
	}
	d, ok = Primary([]Display{{Index: 7}})
	if !ok || d.Index != 7 {
		t.Fatalf("expected fallback to first display, got %+v", d)
	}
	if _, ok := Primary(nil); ok {
		t.Fatalf("expected no primary in empty list")
	}
}

// TestSize_ReturnsPixels verifies the pixel size conversion.
func TestSize_ReturnsPixels(t *testing.T) {
	d := Display{X: 1920, Y: 0, W: 2560, H: 1440}
	if d.Size() != (coords.Size{W: 2560, H: 1440}) {
		t.Fatalf("unexpected size %+v", d.Size())
	}
	if d.Origin() != (coords.Point{X: 1920, Y: 0}) {
		t.Fatalf("unexpected origin %+v", d.Origin())
	}
}
