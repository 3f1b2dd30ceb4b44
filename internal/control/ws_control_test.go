package control

import (
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/frudas24/gazewaldo/internal/ui"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommands counts tracker procedure requests.
type fakeCommands struct {
	mu          sync.Mutex
	quickstarts int
	calibrates  int
	err         error
}

// Quickstart records a quickstart request.
func (f *fakeCommands) Quickstart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quickstarts++
	return f.err
}

// Calibrate records a calibration request.
func (f *fakeCommands) Calibrate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calibrates++
	return f.err
}

// counts returns the quickstart and calibrate call counts.
func (f *fakeCommands) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quickstarts, f.calibrates
}

// newControlServer starts a control server behind httptest.
func newControlServer(t *testing.T, cmds Commands) (*Server, *session.Session, string) {
	t.Helper()
	sess := session.New()
	srv := NewServer(sess, testMapper(t), cmds, nil)
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)
	return srv, sess, "ws" + strings.TrimPrefix(hs.URL, "http")
}

// dial opens a websocket client to url.
func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// TestServer_QueuesPointerEvents verifies pointer messages are mapped and drained.
func TestServer_QueuesPointerEvents(t *testing.T) {
	srv, _, url := newControlServer(t, nil)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Message{T: MsgDown, X: 0.5, Y: 0.5}))
	require.NoError(t, conn.WriteJSON(Message{T: MsgUp, X: 0.5, Y: 0.5}))

	var got []ui.PointerEvent
	require.Eventually(t, func() bool {
		got = append(got, srv.Drain()...)
		return len(got) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, ui.PointerDown, got[0].Kind)
	assert.Equal(t, ui.PointerUp, got[1].Kind)
	assert.Equal(t, 640.0, got[0].Pos.X)
	assert.Equal(t, 360.0, got[0].Pos.Y)
	assert.Empty(t, srv.Drain())
}

// TestServer_UseTrackerToggle verifies the input source message updates the session.
func TestServer_UseTrackerToggle(t *testing.T) {
	_, sess, url := newControlServer(t, nil)
	conn := dial(t, url)

	off := false
	require.NoError(t, conn.WriteJSON(Message{T: MsgUseTracker, Enabled: &off}))
	require.Eventually(t, func() bool { return !sess.UseTracker() }, 2*time.Second, 10*time.Millisecond)
}

// TestServer_Commands verifies tracker procedures are triggered.
func TestServer_Commands(t *testing.T) {
	cmds := &fakeCommands{}
	_, _, url := newControlServer(t, cmds)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Message{T: MsgQuickstart}))
	require.NoError(t, conn.WriteJSON(Message{T: MsgCalibrate}))
	require.Eventually(t, func() bool {
		q, c := cmds.counts()
		return q == 1 && c == 1
	}, 2*time.Second, 10*time.Millisecond)
}

// TestServer_CommandErrorPublished verifies failures are reported to the renderer.
func TestServer_CommandErrorPublished(t *testing.T) {
	cmds := &fakeCommands{err: errors.New("tracker not connected")}
	_, _, url := newControlServer(t, cmds)
	conn := dial(t, url)

	require.NoError(t, conn.WriteJSON(Message{T: MsgCalibrate}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env struct {
		T    string            `json:"t"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, MsgError, env.T)
	assert.Equal(t, "calibrate", env.Data["command"])
	assert.Equal(t, "tracker not connected", env.Data["error"])
}

// TestServer_Publish verifies outbound envelopes reach the renderer.
func TestServer_Publish(t *testing.T) {
	srv, _, url := newControlServer(t, nil)
	assert.NoError(t, srv.Publish(MsgFrame, nil))

	conn := dial(t, url)
	require.Eventually(t, srv.Connected, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Publish(MsgActivation, map[string]string{"target": "play"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env struct {
		T    string            `json:"t"`
		ID   string            `json:"id"`
		Data map[string]string `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&env))
	assert.Equal(t, MsgActivation, env.T)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, "play", env.Data["target"])
}

// TestServer_RejectsSecondRenderer verifies only one renderer can attach.
func TestServer_RejectsSecondRenderer(t *testing.T) {
	srv, _, url := newControlServer(t, nil)
	_ = dial(t, url)
	require.Eventually(t, srv.Connected, 2*time.Second, 10*time.Millisecond)

	second := dial(t, url)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := second.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
