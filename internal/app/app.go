// Package app wires the tracker, game loop, renderer channels and HTTP routes together.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/calib"
	"github.com/frudas24/gazewaldo/internal/config"
	"github.com/frudas24/gazewaldo/internal/control"
	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/display"
	"github.com/frudas24/gazewaldo/internal/dwell"
	"github.com/frudas24/gazewaldo/internal/frame"
	"github.com/frudas24/gazewaldo/internal/game"
	"github.com/frudas24/gazewaldo/internal/gaze"
	"github.com/frudas24/gazewaldo/internal/level"
	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/frudas24/gazewaldo/internal/preview"
	"github.com/frudas24/gazewaldo/internal/rtc"
	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/frudas24/gazewaldo/internal/signaling"
	"github.com/frudas24/gazewaldo/internal/tracker"
	"github.com/frudas24/gazewaldo/internal/wininput"
	"go.uber.org/zap"
)

// Frame is the per-frame state published to the renderer.
type Frame struct {
	Seq        uint64       `json:"seq"`
	Cursor     coords.Point `json:"cursor"`
	Tracking   bool         `json:"tracking"`
	UseTracker bool         `json:"useTracker"`
	View       game.View    `json:"view"`
}

// cursorUpdate is the lossy per-frame message sent on the data channel.
type cursorUpdate struct {
	Seq uint64  `json:"seq"`
	X   float64 `json:"x"`
	Y   float64 `json:"y"`
}

// App coordinates the tracker bridge, the frame loop and the renderer channels.
type App struct {
	mu        sync.Mutex
	cfg       config.Config
	defaults  config.PreviewConfig
	log       *zap.Logger
	session   *session.Session
	display   display.Display
	mapper    coords.Mapper
	filter    *gaze.Filter
	tracker   *tracker.Controller
	bridge    *tracker.Bridge
	control   *control.Server
	publisher *rtc.Publisher
	signaling *signaling.Server
	follower  *control.Follower
	stream    *preview.Stream
	renderer  *preview.Renderer
	catalog   []level.Scene
	flow      *game.Flow
	frame     Frame
	quit      chan struct{}
	quitOnce  sync.Once
}

// New creates a new application with its dependencies wired.
func New(cfg config.Config, d display.Display, sess *session.Session, publisher *rtc.Publisher, injector wininput.Injector, log *zap.Logger) (*App, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if publisher == nil {
		return nil, errors.New("webrtc publisher is required")
	}
	if injector == nil {
		return nil, errors.New("injector is required")
	}
	log = logging.OrNop(log)

	screen := coords.Size{W: float64(cfg.Display.Width), H: float64(cfg.Display.Height)}
	surface := coords.Size{W: float64(cfg.Surface.Width), H: float64(cfg.Surface.Height)}
	mapper, err := coords.NewMapper(screen, surface)
	if err != nil {
		return nil, err
	}
	filter, err := gaze.NewFilter(screen)
	if err != nil {
		return nil, err
	}
	sizeMM, err := calib.ScreenSizeMM(screen, cfg.Display.DPIX, cfg.Display.DPIY)
	if err != nil {
		return nil, err
	}
	board, err := calib.NewBoard(sizeMM)
	if err != nil {
		return nil, err
	}
	ctrl, err := tracker.NewController(sess, board, cfg.Tracker.RateHz, filter, log.Named("tracker"))
	if err != nil {
		return nil, err
	}
	follower, err := control.NewFollower(injector, d)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:       cfg,
		defaults:  cfg.Preview,
		log:       log,
		session:   sess,
		display:   d,
		mapper:    mapper,
		filter:    filter,
		tracker:   ctrl,
		bridge:    tracker.NewBridge(ctrl, tracker.ParsePolicy(cfg.Tracker.Policy), log.Named("bridge")),
		control:   control.NewServer(sess, mapper, ctrl, log.Named("control")),
		publisher: publisher,
		signaling: signaling.NewServer(publisher, signaling.ViewerReplace, log.Named("signaling")),
		follower:  follower,
		stream:    preview.NewStream(cfg.Preview.Interval()),
		renderer:  preview.NewRenderer(surface, cfg.Preview.Quality),
		catalog:   catalog,
		flow:      game.NewFlow(gameConfig(cfg), catalog),
		quit:      make(chan struct{}),
	}
	a.frame = Frame{View: a.flow.View(), UseTracker: sess.UseTracker()}

	log.Info("app ready",
		zap.Float64("board_width_m", board.WidthM),
		zap.Float64("board_height_m", board.HeightM),
		zap.Int("scenes", len(catalog)),
	)
	return a, nil
}

// ResolveDisplay picks the configured display from the OS list and updates the
// display size and density in cfg. It falls back to cfg when enumeration fails.
func ResolveDisplay(cfg config.Config, list func() ([]display.Display, error), log *zap.Logger) (display.Display, config.Config) {
	log = logging.OrNop(log)
	fallback := display.Display{
		Index:   cfg.Display.Index,
		W:       cfg.Display.Width,
		H:       cfg.Display.Height,
		DPIX:    cfg.Display.DPIX,
		DPIY:    cfg.Display.DPIY,
		Primary: true,
	}
	if list == nil {
		return fallback, cfg
	}
	displays, err := list()
	if err != nil {
		if !errors.Is(err, display.ErrUnsupported) {
			log.Warn("list displays", zap.Error(err))
		}
		return fallback, cfg
	}
	d, ok := display.ByIndex(displays, cfg.Display.Index)
	if !ok {
		if d, ok = display.Primary(displays); !ok {
			return fallback, cfg
		}
		log.Warn("display not found, using primary", zap.Int("index", cfg.Display.Index), zap.Int("primary", d.Index))
	}
	cfg.Display.Width = d.W
	cfg.Display.Height = d.H
	if d.DPIX > 0 && d.DPIY > 0 {
		cfg.Display.DPIX = d.DPIX
		cfg.Display.DPIY = d.DPIY
	}
	return d, cfg
}

// loadCatalog reads the scene catalog, generating one from the scenes folder when absent.
func loadCatalog(cfg config.Config, log *zap.Logger) ([]level.Scene, error) {
	catalog, err := level.Load(cfg.ScenesPath)
	if err != nil {
		return nil, fmt.Errorf("load scenes: %w", err)
	}
	if len(catalog) > 0 {
		return catalog, nil
	}
	catalog, err = level.Generate(filepath.Dir(cfg.ScenesPath))
	if err != nil {
		log.Warn("no scene catalog", zap.String("path", cfg.ScenesPath), zap.Error(err))
		return nil, nil
	}
	if len(catalog) == 0 {
		log.Warn("no scene catalog", zap.String("path", cfg.ScenesPath))
		return nil, nil
	}
	if err := level.Save(cfg.ScenesPath, catalog); err != nil {
		log.Warn("save generated scenes", zap.Error(err))
	}
	log.Info("generated scene catalog", zap.String("path", cfg.ScenesPath), zap.Int("scenes", len(catalog)))
	return catalog, nil
}

// gameConfig maps config values onto game timing.
func gameConfig(cfg config.Config) game.Config {
	return game.Config{
		Dwell: dwell.Config{
			Activation: cfg.Dwell.Activation(),
			Grace:      cfg.Dwell.Grace(),
			SingleFire: cfg.Dwell.SingleFire,
		},
		Win:   cfg.Game.Win(),
		Round: cfg.Game.Round(),
	}
}

// Run drives the frame loop until ctx is cancelled or the player quits.
func (a *App) Run(ctx context.Context) error {
	loop, err := frame.NewLoop(a.cfg.Frame.FPS, frame.NewClock(time.Now))
	if err != nil {
		return err
	}
	a.log.Info("frame loop started", zap.Duration("interval", loop.Interval()))
	return loop.Run(ctx, a.Step)
}

// Done is closed when the player chooses Quit.
func (a *App) Done() <-chan struct{} {
	return a.quit
}

// Step advances the game by one frame and publishes the result. It returns
// false once the player has quit.
func (a *App) Step(elapsed time.Duration) bool {
	snap := a.filter.Snapshot()
	useTracker := a.session.UseTracker()
	tracking := a.session.Tracking()

	a.mu.Lock()
	events := a.flow.Update(game.Input{
		Elapsed:    elapsed,
		UseTracker: useTracker,
		Gaze:       a.mapper.ToSurface(snap.Position),
		Pointer:    a.control.Drain(),
	})
	a.frame = Frame{
		Seq:        a.frame.Seq + 1,
		Cursor:     a.flow.Cursor(),
		Tracking:   tracking,
		UseTracker: useTracker,
		View:       a.flow.View(),
	}
	current := a.frame
	follow := a.cfg.Cursor.Follow
	renderer := a.renderer
	a.mu.Unlock()

	a.publish(current, events)
	if follow && useTracker && tracking {
		if err := a.follower.Follow(snap.Position); err != nil {
			a.log.Debug("follow cursor", zap.Error(err))
		}
	}
	a.renderPreview(renderer, current)

	for _, ev := range events {
		if ev.Kind == game.EventQuit {
			a.quitOnce.Do(func() { close(a.quit) })
			return false
		}
	}
	return true
}

// publish sends the frame and its events to the renderer channels.
func (a *App) publish(f Frame, events []game.Event) {
	if err := a.publisher.Send(cursorUpdate{Seq: f.Seq, X: f.Cursor.X, Y: f.Cursor.Y}); err != nil && !errors.Is(err, rtc.ErrNotReady) {
		a.log.Debug("send cursor", zap.Error(err))
	}
	if !a.control.Connected() {
		return
	}
	if err := a.control.Publish(control.MsgFrame, f); err != nil {
		a.log.Debug("publish frame", zap.Error(err))
	}
	for _, ev := range events {
		t := control.MsgEvent
		var data any = ev
		if ev.Kind == game.EventActivated && ev.Activation != nil {
			t = control.MsgActivation
			data = ev.Activation
		}
		if err := a.control.Publish(t, data); err != nil {
			a.log.Debug("publish event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		}
	}
	for _, ev := range events {
		switch ev.Kind {
		case game.EventSceneChanged:
			a.log.Info("scene changed", zap.String("scene", string(ev.Scene)))
		case game.EventRoundEnded:
			a.log.Info("round ended",
				zap.String("round", ev.Round.ID),
				zap.Bool("won", ev.Round.Won),
				zap.Int("looks", ev.Round.Looks),
				zap.Float64("look_seconds", ev.Round.LookSeconds),
			)
		}
	}
}

// renderPreview encodes a preview frame when a viewer is due one.
func (a *App) renderPreview(r *preview.Renderer, f Frame) {
	if a.stream.Subscribers() == 0 || !a.stream.Due() {
		return
	}
	jpg, err := r.Render(f.View, f.Cursor)
	if err != nil {
		a.log.Debug("render preview", zap.Error(err))
		return
	}
	a.stream.Publish(jpg)
}

// Apply hot-reloads timing, preview and cursor settings. Display and surface
// changes need a restart.
func (a *App) Apply(cfg config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cfg.Display != a.cfg.Display || cfg.Surface != a.cfg.Surface || cfg.ListenAddr != a.cfg.ListenAddr {
		a.log.Warn("display, surface and listen changes apply after restart")
	}
	a.flow.SetConfig(gameConfig(cfg))
	a.stream.SetMinInterval(cfg.Preview.Interval())
	a.renderer = preview.NewRenderer(a.mapper.Surface(), cfg.Preview.Quality)
	a.cfg.Dwell = cfg.Dwell
	a.cfg.Game = cfg.Game
	a.cfg.Cursor = cfg.Cursor
	a.cfg.Preview = cfg.Preview
	a.log.Info("configuration applied",
		zap.Int("activation_ms", cfg.Dwell.ActivationMs),
		zap.Int("grace_ms", cfg.Dwell.GraceMs),
		zap.Bool("cursor_follow", cfg.Cursor.Follow),
	)
}

// Stop shuts the tracker down and closes the renderer peer.
func (a *App) Stop() error {
	err := a.tracker.Shutdown()
	a.publisher.ClosePeer()
	return err
}

// Tracker returns the tracker controller.
func (a *App) Tracker() *tracker.Controller {
	return a.tracker
}

// Frame returns the last published frame.
func (a *App) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame
}
