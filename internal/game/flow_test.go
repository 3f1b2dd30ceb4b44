package game

import (
	"testing"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
	"github.com/frudas24/gazewaldo/internal/level"
	"github.com/frudas24/gazewaldo/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	titlePlay    = coords.Point{X: 750, Y: 400}
	titleQuit    = coords.Point{X: 750, Y: 525}
	selectorNext = coords.Point{X: 950, Y: 360}
	selectorPrev = coords.Point{X: 350, Y: 360}
	selectorCard = coords.Point{X: 640, Y: 350}
	selectorBack = coords.Point{X: 640, Y: 640}
	nowhere      = coords.Point{X: 50, Y: 50}
)

// activationFrames is the number of 10ms frames needed to fire a 1s dwell.
const activationFrames = 102

// newTestFlow returns a flow over n identical scenes with a fixed round id.
func newTestFlow(n int) *Flow {
	cfg := Config{
		Dwell: dwell.Config{Activation: time.Second, Grace: 250 * time.Millisecond, SingleFire: true},
		Win:   3 * time.Second,
		Round: 2 * time.Minute,
	}
	var catalog []level.Scene
	for i := 0; i < n; i++ {
		catalog = append(catalog, level.Scene{
			Filename: "scene.png",
			Target:   coords.Rect{X: 100, Y: 100, W: 50, H: 50},
		})
	}
	f := NewFlow(cfg, catalog)
	f.newID = func() string { return "round-1" }
	return f
}

// gazeAt feeds frames of tracker input at pos and collects the events.
func gazeAt(f *Flow, pos coords.Point, frames int) []Event {
	var out []Event
	for i := 0; i < frames; i++ {
		out = append(out, f.Update(Input{Elapsed: frame, UseTracker: true, Gaze: pos})...)
	}
	return out
}

// kinds returns the kind of each event.
func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, e := range events {
		out = append(out, e.Kind)
	}
	return out
}

// TestFlow_TitleToSelector verifies dwelling on Play opens the level selector.
func TestFlow_TitleToSelector(t *testing.T) {
	f := newTestFlow(3)
	assert.Equal(t, SceneTitle, f.Scene())

	assert.Empty(t, gazeAt(f, titlePlay, activationFrames-1))
	events := gazeAt(f, titlePlay, 1)
	require.Equal(t, []EventKind{EventActivated, EventSceneChanged}, kinds(events))
	assert.Equal(t, ButtonPlay, events[0].Activation.TargetID)
	assert.Equal(t, SceneSelector, events[1].Scene)
	assert.Equal(t, SceneSelector, f.Scene())
}

// TestFlow_SelectorWraps verifies Next and Previous wrap around the catalog.
func TestFlow_SelectorWraps(t *testing.T) {
	f := newTestFlow(3)
	gazeAt(f, titlePlay, activationFrames)
	require.Equal(t, SceneSelector, f.Scene())

	for _, want := range []int{1, 2, 0} {
		gazeAt(f, selectorNext, activationFrames)
		assert.Equal(t, want, f.Index())
		gazeAt(f, nowhere, 30)
	}
	gazeAt(f, selectorPrev, activationFrames)
	assert.Equal(t, 2, f.Index())

	visible := 0
	for _, v := range f.View().Buttons {
		if v.Image != "" {
			visible++
			assert.Equal(t, "level-2", v.ID)
		}
	}
	assert.Equal(t, 1, visible)
}

// TestFlow_LatchNeedsLeaving verifies a held gaze does not repeat Next.
func TestFlow_LatchNeedsLeaving(t *testing.T) {
	f := newTestFlow(3)
	gazeAt(f, titlePlay, activationFrames)
	gazeAt(f, selectorNext, activationFrames*3)
	assert.Equal(t, 1, f.Index())
}

// TestFlow_PlayWinAndBack verifies a full round from card to result and back.
func TestFlow_PlayWinAndBack(t *testing.T) {
	f := newTestFlow(2)
	gazeAt(f, titlePlay, activationFrames)

	events := gazeAt(f, selectorCard, activationFrames)
	require.Equal(t, []EventKind{EventActivated, EventSceneChanged, EventRoundStarted}, kinds(events))
	assert.Equal(t, ScenePlay, f.Scene())
	require.NotNil(t, f.Round())
	assert.Equal(t, "round-1", events[2].Round.ID)

	view := f.View()
	assert.Equal(t, "scene.png", view.Background)
	assert.Equal(t, 120, view.Countdown)
	assert.Empty(t, view.Buttons)

	assert.Empty(t, gazeAt(f, coords.Point{X: 125, Y: 125}, 301))
	events = gazeAt(f, coords.Point{X: 125, Y: 125}, 1)
	require.Equal(t, []EventKind{EventRoundEnded, EventSceneChanged}, kinds(events))
	assert.True(t, events[0].Round.Won)
	assert.Equal(t, SceneResult, f.Scene())
	assert.Nil(t, f.Round())

	res, ok := f.LastResult()
	require.True(t, ok)
	assert.Equal(t, 1, res.Looks)

	view = f.View()
	assert.Equal(t, "You Win!", view.Headline)
	assert.Equal(t, []string{
		"Total time looking at Waldo: 3.01s",
		"Number of times looked at Waldo: 1",
	}, view.Stats)

	gazeAt(f, selectorBack, activationFrames)
	assert.Equal(t, SceneSelector, f.Scene())
}

// TestFlow_PlayLost verifies the result headline for a lost round.
func TestFlow_PlayLost(t *testing.T) {
	f := newTestFlow(1)
	f.SetConfig(Config{
		Dwell: dwell.Config{Activation: time.Second, Grace: 250 * time.Millisecond, SingleFire: true},
		Win:   3 * time.Second,
		Round: 100 * time.Millisecond,
	})
	gazeAt(f, titlePlay, activationFrames)
	gazeAt(f, selectorCard, activationFrames)
	require.Equal(t, ScenePlay, f.Scene())

	gazeAt(f, nowhere, 10)
	assert.Equal(t, SceneResult, f.Scene())
	assert.Equal(t, "You Lost!", f.View().Headline)
}

// TestFlow_Quit verifies Quit ends the flow.
func TestFlow_Quit(t *testing.T) {
	f := newTestFlow(1)
	events := gazeAt(f, titleQuit, activationFrames)
	assert.Equal(t, []EventKind{EventActivated, EventSceneChanged, EventQuit}, kinds(events))
	assert.Equal(t, SceneQuit, f.Scene())
	assert.Empty(t, gazeAt(f, titlePlay, activationFrames))
}

// TestFlow_PointerClick verifies the mouse fallback activates buttons.
func TestFlow_PointerClick(t *testing.T) {
	f := newTestFlow(1)
	events := f.Update(Input{
		Elapsed: frame,
		Pointer: []ui.PointerEvent{
			{Kind: ui.PointerDown, Pos: titlePlay},
			{Kind: ui.PointerUp, Pos: titlePlay},
		},
	})
	assert.Equal(t, []EventKind{EventActivated, EventSceneChanged}, kinds(events))
	assert.Equal(t, SceneSelector, f.Scene())
}

// TestFlow_PointerIgnoredWhileTracking verifies clicks do nothing in gaze mode.
func TestFlow_PointerIgnoredWhileTracking(t *testing.T) {
	f := newTestFlow(1)
	events := f.Update(Input{
		Elapsed:    frame,
		UseTracker: true,
		Gaze:       nowhere,
		Pointer: []ui.PointerEvent{
			{Kind: ui.PointerDown, Pos: titlePlay},
			{Kind: ui.PointerUp, Pos: titlePlay},
		},
	})
	assert.Empty(t, events)
	assert.Equal(t, SceneTitle, f.Scene())
}

// TestFlow_ToggleResetsDwell verifies switching input clears partial dwell.
func TestFlow_ToggleResetsDwell(t *testing.T) {
	f := newTestFlow(1)
	gazeAt(f, titlePlay, 60)
	require.Greater(t, f.View().Buttons[0].Progress, 0.5)

	f.Update(Input{Elapsed: frame})
	assert.Zero(t, f.View().Buttons[0].Progress)
}

// TestFlow_EmptyCatalog verifies navigation without scenes.
func TestFlow_EmptyCatalog(t *testing.T) {
	f := newTestFlow(0)
	gazeAt(f, titlePlay, activationFrames)
	gazeAt(f, selectorNext, activationFrames)
	assert.Equal(t, 0, f.Index())
	assert.Equal(t, SceneSelector, f.Scene())
}

// TestFlow_CursorFollowsInputMode verifies the cursor tracks gaze or pointer by input mode.
func TestFlow_CursorFollowsInputMode(t *testing.T) {
	f := newTestFlow(1)
	f.Update(Input{Elapsed: frame, UseTracker: true, Gaze: titlePlay})
	assert.Equal(t, titlePlay, f.Cursor())

	f.Update(Input{Elapsed: frame, UseTracker: false, Gaze: titlePlay, Pointer: []ui.PointerEvent{{Kind: ui.PointerMove, Pos: nowhere}}})
	assert.Equal(t, nowhere, f.Cursor())
}
