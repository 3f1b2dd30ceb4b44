// Package game runs the find-the-target game screens on top of dwell buttons.
package game

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/dwell"
	"github.com/frudas24/gazewaldo/internal/level"
	"github.com/frudas24/gazewaldo/internal/ui"
	"github.com/google/uuid"
)

// Scene names a game screen.
type Scene string

const (
	// SceneTitle is the main menu with Play and Quit.
	SceneTitle Scene = "title"
	// SceneSelector browses the level catalog.
	SceneSelector Scene = "selector"
	// ScenePlay runs a round on the selected level.
	ScenePlay Scene = "play"
	// SceneResult shows the finished round's stats.
	SceneResult Scene = "result"
	// SceneQuit is terminal; the app stops.
	SceneQuit Scene = "quit"
)

// Button ids.
const (
	ButtonPlay     = "play"
	ButtonQuit     = "quit"
	ButtonPrevious = "previous"
	ButtonNext     = "next"
	ButtonBack     = "back"
	cardPrefix     = "level-"
)

// EventKind is the type of a flow event.
type EventKind string

const (
	// EventActivated reports a button activation.
	EventActivated EventKind = "activated"
	// EventSceneChanged reports entering a new screen.
	EventSceneChanged EventKind = "scene"
	// EventRoundStarted reports a new round.
	EventRoundStarted EventKind = "round_started"
	// EventRoundEnded reports a finished round with its result.
	EventRoundEnded EventKind = "round_ended"
	// EventQuit asks the app to stop.
	EventQuit EventKind = "quit"
)

// Event is emitted by Update.
type Event struct {
	Kind       EventKind         `json:"kind"`
	Scene      Scene             `json:"scene,omitempty"`
	Activation *dwell.Activation `json:"activation,omitempty"`
	Round      *Result           `json:"round,omitempty"`
}

// Config tunes buttons and rounds.
type Config struct {
	Dwell dwell.Config
	Win   time.Duration
	Round time.Duration
}

// Input is one frame of user input in surface coordinates.
type Input struct {
	Elapsed    time.Duration
	UseTracker bool
	Gaze       coords.Point
	Pointer    []ui.PointerEvent
}

// View is the render state of the current screen.
type View struct {
	Scene      Scene     `json:"scene"`
	Headline   string    `json:"headline,omitempty"`
	Background string    `json:"background,omitempty"`
	Countdown  int       `json:"countdown,omitempty"`
	Buttons    []ui.View `json:"buttons"`
	Result     *Result   `json:"result,omitempty"`
	Stats      []string  `json:"stats,omitempty"`
}

// Flow is the screen state machine. It is driven by the frame loop only.
type Flow struct {
	cfg     Config
	catalog []level.Scene

	scene    Scene
	title    *ui.Layer
	selector *ui.Layer
	result   *ui.Layer
	cards    []*ui.Button
	index    int

	round      *Round
	last       *Result
	pointer    coords.Point
	gaze       coords.Point
	useTracker bool
	newID      func() string
}

// NewFlow builds the screens for a surface laid out at 1280x720.
func NewFlow(cfg Config, catalog []level.Scene) *Flow {
	f := &Flow{
		cfg:        cfg,
		catalog:    catalog,
		scene:      SceneTitle,
		useTracker: true,
		newID:      uuid.NewString,
	}

	f.title = ui.NewLayer(cfg.Dwell)
	f.title.Add(ButtonPlay, "Play", coords.Point{X: 750, Y: 400}, coords.Size{W: 300, H: 100})
	f.title.Add(ButtonQuit, "Quit", coords.Point{X: 750, Y: 525}, coords.Size{W: 300, H: 100})

	f.selector = ui.NewLayer(cfg.Dwell)
	for i, s := range catalog {
		card := f.selector.Add(cardPrefix+strconv.Itoa(i), "", coords.Point{X: 640, Y: 350}, coords.Size{W: 350, H: 350})
		card.Image = s.Filename
		card.SetVisible(i == 0)
		f.cards = append(f.cards, card)
	}
	f.selector.Add(ButtonPrevious, "Previous", coords.Point{X: 350, Y: 360}, coords.Size{W: 150, H: 150})
	f.selector.Add(ButtonNext, "Next", coords.Point{X: 950, Y: 360}, coords.Size{W: 150, H: 150})
	f.selector.Add(ButtonBack, "Back To Main", coords.Point{X: 640, Y: 640}, coords.Size{W: 500, H: 100})

	f.result = ui.NewLayer(cfg.Dwell)
	f.result.Add(ButtonBack, "Back", coords.Point{X: 640, Y: 640}, coords.Size{W: 200, H: 100})

	return f
}

// Scene returns the current screen.
func (f *Flow) Scene() Scene {
	return f.scene
}

// Index returns the selected catalog entry.
func (f *Flow) Index() int {
	return f.index
}

// Round returns the running round, or nil outside play.
func (f *Flow) Round() *Round {
	if f.scene != ScenePlay {
		return nil
	}
	return f.round
}

// LastResult returns the most recent finished round.
func (f *Flow) LastResult() (Result, bool) {
	if f.last == nil {
		return Result{}, false
	}
	return *f.last, true
}

// SetConfig retunes dwell timing. Round timing applies from the next round.
func (f *Flow) SetConfig(cfg Config) {
	f.cfg = cfg
	for _, l := range []*ui.Layer{f.title, f.selector, f.result} {
		l.SetConfig(cfg.Dwell)
	}
}

// Update advances the current screen by one frame.
func (f *Flow) Update(in Input) []Event {
	f.gaze = in.Gaze
	for _, ev := range in.Pointer {
		f.pointer = ev.Pos
	}
	if in.UseTracker != f.useTracker {
		f.useTracker = in.UseTracker
		if l := f.layer(); l != nil {
			l.Reset()
		}
	}

	switch f.scene {
	case SceneQuit:
		return nil
	case ScenePlay:
		return f.updatePlay(in)
	}

	layer := f.layer()
	var acts []dwell.Activation
	if in.UseTracker {
		acts = layer.Update(in.Gaze, in.Elapsed)
	} else {
		for _, ev := range in.Pointer {
			acts = append(acts, layer.HandlePointer(ev)...)
		}
	}

	var events []Event
	for i := range acts {
		act := acts[i]
		events = append(events, Event{Kind: EventActivated, Scene: f.scene, Activation: &act})
		before := f.scene
		events = append(events, f.activate(act.TargetID)...)
		if f.scene != before {
			break
		}
	}
	return events
}

// Cursor returns the position that drove the last frame.
func (f *Flow) Cursor() coords.Point {
	return ui.Cursor(f.useTracker, f.gaze, f.pointer)
}

// View returns the render state of the current screen.
func (f *Flow) View() View {
	v := View{Scene: f.scene, Buttons: []ui.View{}}
	switch f.scene {
	case SceneTitle:
		v.Buttons = f.title.Views(f.useTracker)
	case SceneSelector:
		v.Headline = "Select a level"
		v.Buttons = f.selector.Views(f.useTracker)
	case ScenePlay:
		if f.round != nil {
			v.Background = f.round.scene.Filename
			v.Countdown = f.round.Countdown()
			v.Headline = fmt.Sprintf("%2d", v.Countdown)
		}
	case SceneResult:
		v.Buttons = f.result.Views(f.useTracker)
		if f.last != nil {
			res := *f.last
			v.Result = &res
			v.Headline = "You Lost!"
			if res.Won {
				v.Headline = "You Win!"
			}
			v.Stats = []string{
				fmt.Sprintf("Total time looking at Waldo: %gs", res.LookSeconds),
				fmt.Sprintf("Number of times looked at Waldo: %d", res.Looks),
			}
		}
	}
	return v
}

// updatePlay steps the running round.
func (f *Flow) updatePlay(in Input) []Event {
	pos := ui.Cursor(in.UseTracker, in.Gaze, f.pointer)
	if !f.round.Step(pos, in.Elapsed) {
		return nil
	}
	res := f.round.Result()
	f.last = &res
	events := []Event{{Kind: EventRoundEnded, Scene: ScenePlay, Round: &res}}
	return append(events, f.enter(SceneResult))
}

// activate applies a button activation on the current screen.
func (f *Flow) activate(id string) []Event {
	switch f.scene {
	case SceneTitle:
		switch id {
		case ButtonPlay:
			return []Event{f.enter(SceneSelector)}
		case ButtonQuit:
			return []Event{f.enter(SceneQuit), {Kind: EventQuit}}
		}
	case SceneSelector:
		switch id {
		case ButtonPrevious:
			f.selectLevel(f.index - 1)
		case ButtonNext:
			f.selectLevel(f.index + 1)
		case ButtonBack:
			return []Event{f.enter(SceneTitle)}
		default:
			if strings.HasPrefix(id, cardPrefix) {
				i, err := strconv.Atoi(strings.TrimPrefix(id, cardPrefix))
				if err == nil && i >= 0 && i < len(f.catalog) {
					return f.startRound(i)
				}
			}
		}
	case SceneResult:
		if id == ButtonBack {
			return []Event{f.enter(SceneSelector)}
		}
	}
	return nil
}

// selectLevel shows the card at i, wrapping around the catalog.
func (f *Flow) selectLevel(i int) {
	n := len(f.cards)
	if n == 0 {
		return
	}
	f.cards[f.index].SetVisible(false)
	f.index = ((i % n) + n) % n
	f.cards[f.index].SetVisible(true)
}

// startRound begins a round on catalog entry i.
func (f *Flow) startRound(i int) []Event {
	f.round = NewRound(f.newID(), f.catalog[i], f.cfg.Win, f.cfg.Round, f.cfg.Dwell.Grace)
	res := f.round.Result()
	return []Event{f.enter(ScenePlay), {Kind: EventRoundStarted, Scene: ScenePlay, Round: &res}}
}

// enter switches screens and clears the new screen's dwell state.
func (f *Flow) enter(scene Scene) Event {
	f.scene = scene
	if l := f.layer(); l != nil {
		l.Reset()
	}
	return Event{Kind: EventSceneChanged, Scene: scene}
}

// layer returns the button layer of the current screen.
func (f *Flow) layer() *ui.Layer {
	switch f.scene {
	case SceneTitle:
		return f.title
	case SceneSelector:
		return f.selector
	case SceneResult:
		return f.result
	}
	return nil
}
