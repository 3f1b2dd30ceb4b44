// Package tracker drives the eye tracker session over a websocket bridge.
package tracker

import (
	"time"

	"github.com/frudas24/gazewaldo/internal/calib"
	"github.com/frudas24/gazewaldo/internal/gaze"
)

// Op names a command sent to the tracker bridge.
type Op string

const (
	// OpStreamControl enables or disables a data stream at a rate.
	OpStreamControl Op = "streamControl"
	// OpEventControl enables or disables tracker events.
	OpEventControl Op = "eventControl"
	// OpStartCamera opens the tracker camera.
	OpStartCamera Op = "startCamera"
	// OpStopCamera closes the tracker camera.
	OpStopCamera Op = "stopCamera"
	// OpRegisterScreen registers the display marker board.
	OpRegisterScreen Op = "registerScreen"
	// OpStartScreenTracking starts mapping gaze onto the registered screen.
	OpStartScreenTracking Op = "startScreenTracking"
	// OpStopScreenTracking stops screen tracking.
	OpStopScreenTracking Op = "stopScreenTracking"
	// OpQuickstart runs the fixed-gaze quickstart GUI.
	OpQuickstart Op = "quickstart"
	// OpCalibrate runs the fixed-head calibration GUI.
	OpCalibrate Op = "calibrate"
	// OpShutdown shuts the tracker API down.
	OpShutdown Op = "shutdown"
)

// Inbound message kinds.
const (
	KindHello    = "hello"
	KindResponse = "response"
	KindEvent    = "event"
	KindGaze     = "gaze"
)

// Event names reported by the tracker.
const (
	EventProcedureStarted = "procedure_started"
	EventProcedureEnded   = "procedure_ended"
)

const (
	// StreamGazeInScreen is the normalized gaze-in-screen stream.
	StreamGazeInScreen = "gaze_in_screen"
	// EventProcedureStartEnd enables procedure start/end events.
	EventProcedureStartEnd = "procedure_start_end"
)

// Marker sequence modes for the GUI procedures.
const (
	ModeFixedGaze = "fixed_gaze"
	ModeFixedHead = "fixed_head"
)

// Camera resolution presets.
const (
	ResolutionMedium = "medium"
)

// Camera selects the capture device.
type Camera struct {
	Index             int    `json:"index"`
	Resolution        string `json:"resolution"`
	CorrectDistortion bool   `json:"correctDistortion"`
}

// Procedure configures a quickstart or calibration GUI run.
type Procedure struct {
	Mode         string  `json:"mode"`
	Points       int     `json:"points,omitempty"`
	MarkerSizeMM float64 `json:"markerSizeMm"`
	Randomize    bool    `json:"randomize"`
}

// Command is sent from the server to the tracker bridge.
type Command struct {
	T         string       `json:"t"`
	ID        string       `json:"id"`
	Op        Op           `json:"op"`
	Stream    string       `json:"stream,omitempty"`
	RateHz    float64      `json:"rateHz,omitempty"`
	Event     string       `json:"event,omitempty"`
	Enable    *bool        `json:"enable,omitempty"`
	Camera    *Camera      `json:"camera,omitempty"`
	Board     *calib.Board `json:"board,omitempty"`
	Procedure *Procedure   `json:"procedure,omitempty"`
}

// Message is sent from the tracker bridge to the server.
type Message struct {
	T     string   `json:"t"`
	ID    string   `json:"id,omitempty"`
	Op    Op       `json:"op,omitempty"`
	Error string   `json:"error,omitempty"`
	Event string   `json:"event,omitempty"`
	TS    float64  `json:"ts,omitempty"`
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
}

// Sample converts a gaze message into a sample. Missing coordinates become NaN.
func (m Message) Sample(at time.Time) gaze.Sample {
	if m.X == nil || m.Y == nil {
		s := gaze.Invalid()
		s.At = at
		return s
	}
	return gaze.Sample{X: *m.X, Y: *m.Y, At: at}
}
