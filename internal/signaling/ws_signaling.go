package signaling

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/frudas24/gazewaldo/internal/rtc"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// Message kinds.
const (
	kindOffer  = "offer"
	kindAnswer = "answer"
	kindICE    = "ice"
)

var (
	// ErrViewerBusy is returned when a second viewer connects under ViewerReject.
	ErrViewerBusy = errors.New("viewer already connected")

	errEmptyOffer    = errors.New("empty offer")
	errNoLocalSDP    = errors.New("missing local description")
	errViewerRetired = errors.New("viewer replaced")
)

// ViewerPolicy decides what happens when a preview client connects while another is live.
type ViewerPolicy int

const (
	// ViewerReject turns the newcomer away with a policy-violation close.
	ViewerReject ViewerPolicy = iota
	// ViewerReplace drops the live viewer in favour of the newcomer.
	ViewerReplace
)

// Server pairs one browser viewer at a time with the cursor data channel peer.
type Server struct {
	upgrader  websocket.Upgrader
	publisher *rtc.Publisher
	policy    ViewerPolicy
	log       *zap.Logger

	mu     sync.Mutex
	active *viewer
}

// viewer is one websocket client and the peer negotiated for it.
type viewer struct {
	srv  *Server
	conn *websocket.Conn
	peer *webrtc.PeerConnection

	writeMu sync.Mutex
	retired bool
}

// NewServer creates a signaling server with the chosen viewer policy.
func NewServer(publisher *rtc.Publisher, policy ViewerPolicy, log *zap.Logger) *Server {
	return &Server{
		publisher: publisher,
		policy:    policy,
		log:       logging.OrNop(log),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the viewer until it disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", zap.Error(err))
		return
	}
	v := &viewer{srv: s, conn: conn}
	if err := s.claim(v); err != nil {
		v.refuse(err)
		return
	}
	defer s.release(v)

	if v.peer, err = s.publisher.NewPeer(); err != nil {
		s.log.Error("create peer", zap.Error(err))
		return
	}
	v.peer.OnICECandidate(v.trickle)
	v.serve()
}

// claim makes v the active viewer according to the policy.
func (s *Server) claim(v *viewer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.active
	if prev != nil && s.policy == ViewerReject {
		return ErrViewerBusy
	}
	s.active = v
	if prev != nil {
		prev.retire()
		s.log.Info("viewer replaced")
	}
	return nil
}

// release drops v and its peer if it is still the active viewer.
func (s *Server) release(v *viewer) {
	s.mu.Lock()
	if s.active == v {
		s.active = nil
		s.publisher.ClosePeer()
	}
	s.mu.Unlock()
	_ = v.conn.Close()
}

// serve reads signaling messages until the socket fails.
func (v *viewer) serve() {
	for {
		var msg Message
		if err := v.conn.ReadJSON(&msg); err != nil {
			return
		}
		var err error
		switch msg.T {
		case kindOffer:
			err = v.answer(msg.SDP)
		case kindICE:
			if msg.Candidate != nil {
				err = v.peer.AddICECandidate(*msg.Candidate)
			}
		}
		if err != nil {
			v.srv.log.Warn("signaling message failed", zap.String("t", msg.T), zap.Error(err))
			return
		}
	}
}

// answer applies the remote offer and replies once ICE gathering completes.
func (v *viewer) answer(sdp string) error {
	if sdp == "" {
		return errEmptyOffer
	}
	offer := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: sdp}
	if err := v.peer.SetRemoteDescription(offer); err != nil {
		return err
	}
	ans, err := v.peer.CreateAnswer(nil)
	if err != nil {
		return err
	}
	gathered := webrtc.GatheringCompletePromise(v.peer)
	if err := v.peer.SetLocalDescription(ans); err != nil {
		return err
	}
	<-gathered
	local := v.peer.LocalDescription()
	if local == nil {
		return errNoLocalSDP
	}
	return v.send(Message{T: kindAnswer, SDP: local.SDP})
}

// trickle forwards a local ICE candidate to the browser.
func (v *viewer) trickle(c *webrtc.ICECandidate) {
	if c == nil {
		return
	}
	init := c.ToJSON()
	if err := v.send(Message{T: kindICE, Candidate: &init}); err != nil {
		v.srv.log.Debug("drop ice candidate", zap.Error(err))
	}
}

// send writes msg unless the viewer has been replaced.
func (v *viewer) send(msg Message) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	if v.retired {
		return errViewerRetired
	}
	return v.conn.WriteJSON(msg)
}

// retire stops writes and closes the socket so serve returns.
func (v *viewer) retire() {
	v.writeMu.Lock()
	v.retired = true
	v.writeMu.Unlock()
	_ = v.conn.Close()
}

// refuse closes the socket with a policy-violation reason.
func (v *viewer) refuse(reason error) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason.Error())
	_ = v.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = v.conn.Close()
}
