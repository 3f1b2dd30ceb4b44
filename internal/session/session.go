// Package session holds runtime state for the tracker session and input source.
package session

import (
	"sync"
	"time"
)

// Stage is the lifecycle position of the tracker session.
type Stage string

const (
	// StageDisconnected means no tracker bridge is attached.
	StageDisconnected Stage = "disconnected"
	// StageConnected means the vendor API answered the connect request.
	StageConnected Stage = "connected"
	// StageCameraStarted means the scene camera is capturing.
	StageCameraStarted Stage = "camera_started"
	// StageScreenRegistered means the marker board was accepted.
	StageScreenRegistered Stage = "screen_registered"
	// StageTracking means gaze-in-screen samples are flowing.
	StageTracking Stage = "tracking"
	// StageProcedure means a calibration or quickstart GUI is running.
	StageProcedure Stage = "procedure"
)

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	Stage      Stage     `json:"stage"`
	UseTracker bool      `json:"useTracker"`
	BridgeID   string    `json:"bridgeId,omitempty"`
	LastError  string    `json:"lastError,omitempty"`
	ChangedAt  time.Time `json:"changedAt"`
}

// Session holds runtime state shared by the bridge, control and frame goroutines.
type Session struct {
	mu         sync.RWMutex
	stage      Stage
	useTracker bool
	bridgeID   string
	lastError  string
	changedAt  time.Time
	now        func() time.Time
}

// New returns a disconnected session that prefers the tracker as input.
func New() *Session {
	return &Session{
		stage:      StageDisconnected,
		useTracker: true,
		now:        time.Now,
	}
}

// SetNowFunc overrides the clock used for change timestamps.
func (s *Session) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = fn
}

// SetStage records a lifecycle transition and reports whether it changed.
func (s *Session) SetStage(stage Stage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage == stage {
		return false
	}
	s.stage = stage
	s.changedAt = s.now()
	if stage == StageDisconnected {
		s.bridgeID = ""
	}
	return true
}

// Stage returns the current lifecycle stage.
func (s *Session) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Tracking reports whether gaze samples should be ingested.
func (s *Session) Tracking() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage == StageTracking
}

// SetBridge records the id of the attached tracker bridge.
func (s *Session) SetBridge(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bridgeID = id
}

// SetError stores the last tracker error message.
func (s *Session) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = msg
}

// SetUseTracker selects gaze (true) or pointer (false) as the active input.
func (s *Session) SetUseTracker(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useTracker = enabled
}

// UseTracker reports whether gaze drives the cursor.
func (s *Session) UseTracker() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useTracker
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Stage:      s.stage,
		UseTracker: s.useTracker,
		BridgeID:   s.bridgeID,
		LastError:  s.lastError,
		ChangedAt:  s.changedAt,
	}
}
