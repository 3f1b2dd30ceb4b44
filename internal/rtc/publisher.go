// Package rtc publishes cursor frames to the renderer over a WebRTC data channel.
package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"
)

// ErrNotReady is returned by Send while no data channel is open.
var ErrNotReady = errors.New("cursor channel not open")

// Data channel parameters shared with the renderer, which must create the
// same negotiated channel.
const (
	ChannelLabel = "cursor"
	ChannelID    = 0
)

// Publisher manages the peer connection and its cursor data channel.
type Publisher struct {
	mu      sync.Mutex
	api     *webrtc.API
	log     *zap.Logger
	peer    *webrtc.PeerConnection
	channel *webrtc.DataChannel
}

// NewPublisher initializes a publisher with default codecs and interceptors.
func NewPublisher(debug bool, log *zap.Logger) (*Publisher, error) {
	log = logging.OrNop(log)

	media := &webrtc.MediaEngine{}
	if err := media.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register codecs: %w", err)
	}

	interceptors := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(media, interceptors); err != nil {
		return nil, fmt.Errorf("register interceptors: %w", err)
	}

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(media),
		webrtc.WithInterceptorRegistry(interceptors),
		webrtc.WithSettingEngine(settingEngine(debug, log)),
	)

	return &Publisher{api: api, log: log}, nil
}

// NewPeer replaces the current peer with a new one carrying the cursor channel.
func (p *Publisher) NewPeer() (*webrtc.PeerConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()

	peer, err := p.api.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		return nil, err
	}

	ordered := false
	retransmits := uint16(0)
	negotiated := uint16(ChannelID)
	channel, err := peer.CreateDataChannel(ChannelLabel, &webrtc.DataChannelInit{
		Ordered:        &ordered,
		MaxRetransmits: &retransmits,
		Negotiated:     &negotiated,
	})
	if err != nil {
		_ = peer.Close()
		return nil, err
	}
	channel.OnOpen(func() {
		p.log.Info("cursor channel open")
	})
	peer.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		p.log.Debug("peer connection state", zap.String("state", state.String()))
	})

	p.peer = peer
	p.channel = channel
	return peer, nil
}

// ClosePeer closes the current peer connection.
func (p *Publisher) ClosePeer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

// Ready reports whether the cursor channel is open.
func (p *Publisher) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel != nil && p.channel.ReadyState() == webrtc.DataChannelStateOpen
}

// Send writes v as JSON on the cursor channel.
func (p *Publisher) Send(v any) error {
	p.mu.Lock()
	channel := p.channel
	p.mu.Unlock()
	if channel == nil || channel.ReadyState() != webrtc.DataChannelStateOpen {
		return ErrNotReady
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return channel.SendText(string(data))
}

// closeLocked closes the peer; p.mu must be held.
func (p *Publisher) closeLocked() {
	if p.peer != nil {
		_ = p.peer.Close()
	}
	p.peer = nil
	p.channel = nil
}
