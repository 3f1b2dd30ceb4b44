// Package control handles the renderer websocket and OS cursor following.
package control

import "time"

// Message is an inbound renderer payload. Coordinates are normalized to the display.
type Message struct {
	T       string  `json:"t"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Enabled *bool   `json:"enabled,omitempty"`
}

// Inbound message types.
const (
	MsgMove       = "move"
	MsgDown       = "down"
	MsgUp         = "up"
	MsgUseTracker = "useTracker"
	MsgQuickstart = "quickstart"
	MsgCalibrate  = "calibrate"
)

// Outbound message types.
const (
	MsgFrame      = "frame"
	MsgActivation = "activation"
	MsgEvent      = "event"
	MsgError      = "error"
)

// Envelope is an outbound renderer payload.
type Envelope struct {
	T    string    `json:"t"`
	ID   string    `json:"id"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}
