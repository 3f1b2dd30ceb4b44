package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frudas24/gazewaldo/internal/config"
	"github.com/frudas24/gazewaldo/internal/display"
	"github.com/frudas24/gazewaldo/internal/game"
	"github.com/frudas24/gazewaldo/internal/gaze"
	"github.com/frudas24/gazewaldo/internal/rtc"
	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/frudas24/gazewaldo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenesJSON = `[{"filename":"beach.png","waldo_location":{"x":100,"y":200,"width":40,"height":60}}]`

// newTestApp returns an App over default config with a one-scene catalog.
func newTestApp(t *testing.T) (*App, *session.Session, *testutil.FakeInjector) {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.NewLoader(dir).Load()
	require.NoError(t, err)
	cfg.ScenesPath = filepath.Join(dir, "scenes.json")
	require.NoError(t, os.WriteFile(cfg.ScenesPath, []byte(scenesJSON), 0o644))

	pub, err := rtc.NewPublisher(false, nil)
	require.NoError(t, err)
	sess := session.New()
	inj := &testutil.FakeInjector{}
	d, cfg := ResolveDisplay(cfg, nil, nil)

	a, err := New(cfg, d, sess, pub, inj, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Stop() })
	return a, sess, inj
}

// lookAtQuit feeds the filter a gaze sample over the title screen's Quit button.
func lookAtQuit(t *testing.T, a *App) {
	t.Helper()
	for i := 0; i < 10; i++ {
		require.True(t, a.filter.Ingest(gaze.Sample{X: 0.5859375, Y: 0.75, At: time.Now()}))
	}
}

// TestNew_Validation verifies required dependencies are checked.
func TestNew_Validation(t *testing.T) {
	pub, err := rtc.NewPublisher(false, nil)
	require.NoError(t, err)
	_, err = New(config.Config{}, display.Display{}, nil, pub, &testutil.FakeInjector{}, nil)
	assert.Error(t, err)
	_, err = New(config.Config{}, display.Display{}, session.New(), nil, &testutil.FakeInjector{}, nil)
	assert.Error(t, err)
	_, err = New(config.Config{}, display.Display{}, session.New(), pub, nil, nil)
	assert.Error(t, err)
}

// TestHandleState_ReportsSessionAndScene verifies /api/state.
func TestHandleState_ReportsSessionAndScene(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.handleState(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, string(session.StageDisconnected), resp.Stage)
	assert.True(t, resp.UseTracker)
	assert.Equal(t, string(game.SceneTitle), resp.Scene)
	assert.False(t, resp.BridgeConnected)
	assert.False(t, resp.RendererConnected)
}

// TestHandleScenes_ReturnsCatalog verifies /api/scenes.
func TestHandleScenes_ReturnsCatalog(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.handleScenes(rec, httptest.NewRequest(http.MethodGet, "/api/scenes", nil))

	assert.JSONEq(t, scenesJSON, rec.Body.String())
}

// TestHandleConfig_UpdatesAndResets verifies preview settings can be changed and restored.
func TestHandleConfig_UpdatesAndResets(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.handleConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBufferString(`{"previewIntervalMs":80,"previewQuality":90}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp configResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, configResponse{Applied: true, PreviewIntervalMs: 80, PreviewQuality: 90}, resp)
	assert.Equal(t, 80, a.cfg.Preview.IntervalMs)

	rec = httptest.NewRecorder()
	a.handleConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBufferString(`{"reset":true}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100, resp.PreviewIntervalMs)
	assert.Equal(t, 60, resp.PreviewQuality)
}

// TestHandleConfig_ValidatesInput verifies out-of-range values are rejected.
func TestHandleConfig_ValidatesInput(t *testing.T) {
	a, _, _ := newTestApp(t)

	rec := httptest.NewRecorder()
	a.handleConfig(rec, httptest.NewRequest(http.MethodPost, "/api/config", bytes.NewBufferString(`{"previewIntervalMs":1,"previewQuality":500}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	a.handleConfig(rec, httptest.NewRequest(http.MethodDelete, "/api/config", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// TestRegisterRoutes_ServesAPIAndEmbeddedAssets verifies the mux wiring.
func TestRegisterRoutes_ServesAPIAndEmbeddedAssets(t *testing.T) {
	a, _, _ := newTestApp(t)
	mux := http.NewServeMux()
	a.RegisterRoutes(mux, filepath.Join(t.TempDir(), "missing"))
	ts := httptest.NewServer(mux)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res, err = http.Get(ts.URL + "/favicon.ico")
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)

	res, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "<canvas")
}

// TestStep_DwellOnQuitStopsLoop verifies a tracker dwell on Quit ends the loop.
func TestStep_DwellOnQuitStopsLoop(t *testing.T) {
	a, _, _ := newTestApp(t)
	lookAtQuit(t, a)

	running := true
	steps := 0
	for running && steps < 20 {
		running = a.Step(100 * time.Millisecond)
		steps++
	}
	require.False(t, running)
	assert.Equal(t, 12, steps)

	select {
	case <-a.Done():
	default:
		t.Fatal("expected done to be closed")
	}
	f := a.Frame()
	assert.Equal(t, uint64(12), f.Seq)
	assert.Equal(t, game.SceneQuit, f.View.Scene)
	assert.InDelta(t, 750, f.Cursor.X, 1)
	assert.InDelta(t, 540, f.Cursor.Y, 1)
}

// TestStep_FollowsCursorWhileTracking verifies OS cursor following is gated on config and stage.
func TestStep_FollowsCursorWhileTracking(t *testing.T) {
	a, sess, inj := newTestApp(t)
	lookAtQuit(t, a)

	a.Step(10 * time.Millisecond)
	assert.Empty(t, inj.Snapshot())

	cfg := a.cfg
	cfg.Cursor.Follow = true
	a.Apply(cfg)
	a.Step(10 * time.Millisecond)
	assert.Empty(t, inj.Snapshot())

	sess.SetStage(session.StageTracking)
	a.Step(10 * time.Millisecond)
	calls := inj.Snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, 1125, calls[0].X)
	assert.Equal(t, 810, calls[0].Y)
}

// TestApply_RetunesDwell verifies a hot reload reaches the game flow.
func TestApply_RetunesDwell(t *testing.T) {
	a, _, _ := newTestApp(t)
	lookAtQuit(t, a)

	cfg := a.cfg
	cfg.Dwell.ActivationMs = 100
	a.Apply(cfg)

	assert.True(t, a.Step(50*time.Millisecond))
	assert.True(t, a.Step(50*time.Millisecond))
	assert.False(t, a.Step(60*time.Millisecond))
}

// TestResolveDisplay verifies OS display lookup and fallbacks.
func TestResolveDisplay(t *testing.T) {
	cfg := config.Config{Display: config.DisplayConfig{Width: 1920, Height: 1080, DPIX: 96, DPIY: 96, Index: 2}}

	d, out := ResolveDisplay(cfg, func() ([]display.Display, error) {
		return nil, display.ErrUnsupported
	}, nil)
	assert.Equal(t, 1920, d.W)
	assert.Equal(t, cfg, out)

	list := []display.Display{
		{Index: 1, W: 2560, H: 1440, DPIX: 110, DPIY: 110, Primary: true},
		{Index: 2, X: 2560, W: 1280, H: 1024, DPIX: 96, DPIY: 96},
	}
	d, out = ResolveDisplay(cfg, func() ([]display.Display, error) { return list, nil }, nil)
	assert.Equal(t, 2560, d.X)
	assert.Equal(t, 1280, out.Display.Width)
	assert.Equal(t, 1024, out.Display.Height)

	cfg.Display.Index = 9
	d, out = ResolveDisplay(cfg, func() ([]display.Display, error) { return list, nil }, nil)
	assert.Equal(t, 1, d.Index)
	assert.Equal(t, 110.0, out.Display.DPIX)
}
