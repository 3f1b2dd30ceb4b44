package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/frudas24/gazewaldo/internal/calib"
	"github.com/frudas24/gazewaldo/internal/gaze"
	"github.com/frudas24/gazewaldo/internal/logging"
	"github.com/frudas24/gazewaldo/internal/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotConnected is returned when no tracker bridge is attached.
var ErrNotConnected = errors.New("tracker not connected")

// Commander sends commands to the attached tracker bridge.
type Commander interface {
	Send(Command) error
}

// Sink receives gaze samples while screen tracking is active. It is reset
// whenever a new bridge attaches.
type Sink interface {
	Ingest(gaze.Sample) bool
	Reset()
}

// Procedure marker size used by the quickstart and calibration GUIs.
const procedureMarkerSizeMM = 35

// calibrationPoints is the number of targets in a calibration run.
const calibrationPoints = 9

// Controller runs the tracker session choreography for one bridge at a time.
type Controller struct {
	mu      sync.Mutex
	session *session.Session
	board   calib.Board
	rateHz  float64
	sink    Sink
	log     *zap.Logger
	cmd     Commander
	pending map[string]Op
	newID   func() string
	now     func() time.Time
}

// NewController creates a controller that registers board and streams gaze into sink.
func NewController(sess *session.Session, board calib.Board, rateHz float64, sink Sink, log *zap.Logger) (*Controller, error) {
	if sess == nil {
		return nil, errors.New("session is required")
	}
	if sink == nil {
		return nil, errors.New("gaze sink is required")
	}
	if rateHz <= 0 {
		return nil, fmt.Errorf("stream rate must be > 0")
	}
	return &Controller{
		session: sess,
		board:   board,
		rateHz:  rateHz,
		sink:    sink,
		log:     logging.OrNop(log),
		pending: make(map[string]Op),
		newID:   uuid.NewString,
		now:     time.Now,
	}, nil
}

// SetNowFunc overrides the clock used to stamp gaze samples.
func (c *Controller) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = fn
}

// Attach makes cmd the active bridge. The session waits for the hello message.
func (c *Controller) Attach(id string, cmd Commander) {
	c.mu.Lock()
	c.cmd = cmd
	c.pending = make(map[string]Op)
	c.mu.Unlock()
	c.sink.Reset()
	c.session.SetBridge(id)
	c.session.SetError("")
	c.log.Info("tracker bridge attached", zap.String("bridge", id))
}

// Detach clears cmd if it is still the active bridge.
func (c *Controller) Detach(cmd Commander) {
	c.mu.Lock()
	if c.cmd != cmd {
		c.mu.Unlock()
		return
	}
	c.cmd = nil
	c.pending = make(map[string]Op)
	c.mu.Unlock()
	c.session.SetStage(session.StageDisconnected)
	c.session.SetBridge("")
	c.log.Info("tracker bridge detached")
}

// Handle processes one message from the active bridge.
func (c *Controller) Handle(msg Message) error {
	switch msg.T {
	case KindHello:
		return c.handleHello(msg)
	case KindResponse:
		return c.handleResponse(msg)
	case KindEvent:
		return c.handleEvent(msg)
	case KindGaze:
		c.handleGaze(msg)
		return nil
	default:
		c.log.Debug("ignoring tracker message", zap.String("t", msg.T))
		return nil
	}
}

// Quickstart launches the fixed-gaze quickstart procedure.
func (c *Controller) Quickstart() error {
	return c.send(Command{Op: OpQuickstart, Procedure: &Procedure{
		Mode:         ModeFixedGaze,
		MarkerSizeMM: procedureMarkerSizeMM,
	}})
}

// Calibrate launches the fixed-head calibration procedure.
func (c *Controller) Calibrate() error {
	return c.send(Command{Op: OpCalibrate, Procedure: &Procedure{
		Mode:         ModeFixedHead,
		Points:       calibrationPoints,
		MarkerSizeMM: procedureMarkerSizeMM,
	}})
}

// Shutdown stops screen tracking, the camera, and the vendor API.
func (c *Controller) Shutdown() error {
	var errs []error
	for _, op := range []Op{OpStopScreenTracking, OpStopCamera, OpShutdown} {
		if err := c.send(Command{Op: op}); err != nil {
			if errors.Is(err, ErrNotConnected) {
				return nil
			}
			errs = append(errs, err)
		}
	}
	c.session.SetStage(session.StageDisconnected)
	return errors.Join(errs...)
}

// handleHello starts streaming and the camera once the vendor API is connected.
func (c *Controller) handleHello(msg Message) error {
	if msg.Error != "" {
		c.fail("connect", msg.Error)
		return nil
	}
	c.session.SetStage(session.StageConnected)
	if err := c.send(Command{Op: OpStreamControl, Stream: StreamGazeInScreen, RateHz: c.rateHz}); err != nil {
		return err
	}
	if err := c.send(Command{Op: OpEventControl, Event: EventProcedureStartEnd, Enable: boolPtr(true)}); err != nil {
		return err
	}
	return c.send(Command{Op: OpStartCamera, Camera: &Camera{Resolution: ResolutionMedium}})
}

// handleResponse advances the choreography on successful replies.
func (c *Controller) handleResponse(msg Message) error {
	op := c.resolveOp(msg)
	if msg.Error != "" {
		c.fail(string(op), msg.Error)
		return nil
	}

	switch op {
	case OpStartCamera:
		c.session.SetStage(session.StageCameraStarted)
		board := c.board
		return c.send(Command{Op: OpRegisterScreen, Board: &board})
	case OpRegisterScreen:
		c.session.SetStage(session.StageScreenRegistered)
		return c.send(Command{Op: OpStartScreenTracking})
	case OpStartScreenTracking:
		c.session.SetStage(session.StageTracking)
	case OpStopScreenTracking:
		if c.session.Stage() == session.StageTracking {
			c.session.SetStage(session.StageScreenRegistered)
		}
	}
	return nil
}

// handleEvent reacts to procedure start and end.
func (c *Controller) handleEvent(msg Message) error {
	switch msg.Event {
	case EventProcedureStarted:
		c.session.SetStage(session.StageProcedure)
	case EventProcedureEnded:
		return c.send(Command{Op: OpStartScreenTracking})
	}
	return nil
}

// handleGaze forwards samples while tracking.
func (c *Controller) handleGaze(msg Message) {
	if !c.session.Tracking() {
		return
	}
	c.mu.Lock()
	now := c.now
	c.mu.Unlock()
	c.sink.Ingest(msg.Sample(now()))
}

// resolveOp returns the op of a response, falling back to the pending command id.
func (c *Controller) resolveOp(msg Message) Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	op, ok := c.pending[msg.ID]
	if ok {
		delete(c.pending, msg.ID)
	}
	if msg.Op != "" {
		return msg.Op
	}
	return op
}

// send stamps and writes a command to the active bridge.
func (c *Controller) send(cmd Command) error {
	c.mu.Lock()
	active := c.cmd
	if active == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	cmd.T = "cmd"
	cmd.ID = c.newID()
	c.pending[cmd.ID] = cmd.Op
	c.mu.Unlock()

	c.log.Debug("tracker command", zap.String("op", string(cmd.Op)), zap.String("id", cmd.ID))
	if err := active.Send(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Op, err)
	}
	return nil
}

// fail records a tracker error and stops the chain.
func (c *Controller) fail(step, reason string) {
	c.session.SetError(fmt.Sprintf("%s: %s", step, reason))
	c.log.Error("tracker step failed", zap.String("step", step), zap.String("error", reason))
}

// boolPtr returns a pointer to v.
func boolPtr(v bool) *bool {
	return &v
}
