package control

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/coords"
	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/frudas24/gazewaldo/internal/ui"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrControlBusy is returned when a second renderer connects.
var ErrControlBusy = errors.New("control connection already active")

// maxPending bounds queued pointer events between frames.
const maxPending = 256

const writeTimeout = 2 * time.Second

// Commands are tracker procedures the renderer can trigger.
type Commands interface {
	Quickstart() error
	Calibrate() error
}

// Server handles the renderer websocket.
type Server struct {
	mu       sync.Mutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	session  *session.Session
	mapper   coords.Mapper
	commands Commands
	log      *zap.Logger
	conn     *websocket.Conn
	pending  []ui.PointerEvent
	newID    func() string
	now      func() time.Time
}

// NewServer creates a control websocket server.
func NewServer(sess *session.Session, mapper coords.Mapper, commands Commands, log *zap.Logger) *Server {
	return &Server{
		session:  sess,
		mapper:   mapper,
		commands: commands,
		log:      logging.OrNop(log),
		newID:    uuid.NewString,
		now:      time.Now,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and processes control messages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.acceptConn(conn); err != nil {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())
		_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(1*time.Second))
		_ = conn.Close()
		return
	}
	defer s.cleanupConn(conn)
	s.log.Info("renderer connected", zap.String("remote", r.RemoteAddr))

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleMessage(msg)
	}
}

// Connected reports whether a renderer is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Drain returns and clears the pointer events received since the last call.
func (s *Server) Drain() []ui.PointerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Publish sends an envelope of type t to the renderer. It is a no-op without a renderer.
func (s *Server) Publish(t string, data any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	env := Envelope{T: t, ID: s.newID(), At: s.now(), Data: data}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(env)
}

// acceptConn ensures only one active control connection exists.
func (s *Server) acceptConn(conn *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return ErrControlBusy
	}
	s.conn = conn
	s.pending = nil
	return nil
}

// cleanupConn clears the active connection when closed.
func (s *Server) cleanupConn(conn *websocket.Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.pending = nil
	}
	s.mu.Unlock()
	_ = conn.Close()
	s.log.Info("renderer disconnected")
}

// handleMessage dispatches a single control message.
func (s *Server) handleMessage(msg Message) {
	switch msg.T {
	case MsgMove:
		s.queue(ui.PointerMove, msg)
	case MsgDown:
		s.queue(ui.PointerDown, msg)
	case MsgUp:
		s.queue(ui.PointerUp, msg)
	case MsgUseTracker:
		if msg.Enabled != nil {
			s.session.SetUseTracker(*msg.Enabled)
		}
	case MsgQuickstart, MsgCalibrate:
		s.runCommand(msg.T)
	default:
		s.log.Debug("ignoring control message", zap.String("t", msg.T))
	}
}

// queue records a pointer event for the next frame.
func (s *Server) queue(kind ui.PointerKind, msg Message) {
	ev := ui.PointerEvent{Kind: kind, Pos: NormToSurface(msg.X, msg.Y, s.mapper)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) >= maxPending {
		s.pending = s.pending[1:]
	}
	s.pending = append(s.pending, ev)
}

// runCommand starts a tracker procedure and reports failures to the renderer.
func (s *Server) runCommand(name string) {
	if s.commands == nil {
		return
	}
	var err error
	if name == MsgQuickstart {
		err = s.commands.Quickstart()
	} else {
		err = s.commands.Calibrate()
	}
	if err != nil {
		s.log.Warn("control command failed", zap.String("command", name), zap.Error(err))
		_ = s.Publish(MsgError, map[string]string{"command": name, "error": fmt.Sprint(err)})
	}
}
