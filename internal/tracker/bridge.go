package tracker

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ErrBridgeBusy is returned when a second bridge connects under the reject policy.
var ErrBridgeBusy = errors.New("tracker bridge already connected")

// Policy controls how a second bridge connection is handled.
type Policy int

const (
	// PolicyReject refuses new connections while one is active.
	PolicyReject Policy = iota
	// PolicyReplace closes the active connection when a new one arrives.
	PolicyReplace
)

// ParsePolicy maps a config value onto a Policy.
func ParsePolicy(value string) Policy {
	if value == "reject" {
		return PolicyReject
	}
	return PolicyReplace
}

const writeTimeout = 2 * time.Second

// Bridge accepts the tracker websocket and feeds it to a Controller.
type Bridge struct {
	mu       sync.Mutex
	upgrader websocket.Upgrader
	policy   Policy
	ctrl     *Controller
	log      *zap.Logger
	active   *bridgeConn
}

// bridgeConn is a single tracker websocket.
type bridgeConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// Send writes a command to the websocket.
func (b *bridgeConn) Send(cmd Command) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	_ = b.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return b.conn.WriteJSON(cmd)
}

// NewBridge creates a tracker websocket endpoint.
func NewBridge(ctrl *Controller, policy Policy, log *zap.Logger) *Bridge {
	return &Bridge{
		ctrl:   ctrl,
		policy: policy,
		log:    logging.OrNop(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and reads tracker messages until close.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	bc := &bridgeConn{id: uuid.NewString(), conn: conn}
	if err := b.acceptConn(bc); err != nil {
		b.log.Warn("tracker bridge rejected", zap.String("remote", r.RemoteAddr), zap.Error(err))
		rejectConn(conn, err.Error())
		return
	}
	defer b.cleanupConn(bc)

	b.ctrl.Attach(bc.id, bc)
	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				b.log.Debug("tracker bridge read", zap.String("bridge", bc.id), zap.Error(err))
			}
			return
		}
		if err := b.ctrl.Handle(msg); err != nil {
			b.log.Error("tracker bridge handle", zap.String("bridge", bc.id), zap.Error(err))
			return
		}
	}
}

// Connected reports whether a bridge is attached.
func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active != nil
}

// acceptConn registers a new bridge or returns ErrBridgeBusy.
func (b *Bridge) acceptConn(bc *bridgeConn) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active != nil {
		if b.policy != PolicyReplace {
			return ErrBridgeBusy
		}
		b.log.Info("replacing tracker bridge", zap.String("old", b.active.id), zap.String("new", bc.id))
		b.ctrl.Detach(b.active)
		_ = b.active.conn.Close()
	}
	b.active = bc
	return nil
}

// cleanupConn clears state if the connection is still the active one.
func (b *Bridge) cleanupConn(bc *bridgeConn) {
	b.mu.Lock()
	if b.active == bc {
		b.active = nil
		b.ctrl.Detach(bc)
	}
	b.mu.Unlock()
	_ = bc.conn.Close()
}

// rejectConn sends a policy violation close and closes the socket.
func rejectConn(conn *websocket.Conn, reason string) {
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(1*time.Second))
	_ = conn.Close()
}
