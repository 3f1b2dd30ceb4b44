// Package preview serves an MJPEG debug view of targets, dwell progress and the cursor.
package preview

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	boundary  = "frame"
	keepAlive = time.Second
)

// Stream fans JPEG frames out to MJPEG clients. Clients wait on a wake
// channel that Publish closes and replaces, then read the newest frame.
type Stream struct {
	viewers atomic.Int32
	now     func() time.Time

	mu       sync.Mutex
	latest   []byte
	shown    []byte
	gen      uint64
	wake     chan struct{}
	gap      time.Duration
	lastShow time.Time
}

// NewStream creates a stream that broadcasts at most once per minInterval.
func NewStream(minInterval time.Duration) *Stream {
	return &Stream{
		gap:  minInterval,
		wake: make(chan struct{}),
		now:  time.Now,
	}
}

// SetMinInterval changes the broadcast throttle.
func (s *Stream) SetMinInterval(d time.Duration) {
	s.mu.Lock()
	s.gap = d
	s.mu.Unlock()
}

// Due reports whether a frame published now would be broadcast.
func (s *Stream) Due() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dueLocked(s.now())
}

// dueLocked reports whether the throttle has elapsed at t.
func (s *Stream) dueLocked(t time.Time) bool {
	return s.gap <= 0 || t.Sub(s.lastShow) >= s.gap
}

// Subscribers returns the number of connected clients.
func (s *Stream) Subscribers() int {
	return int(s.viewers.Load())
}

// Publish stores jpg as the newest frame and wakes clients unless throttled.
// Throttled frames still replace the keep-alive frame.
func (s *Stream) Publish(jpg []byte) {
	frame := append([]byte(nil), jpg...)
	t := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = frame
	if !s.dueLocked(t) {
		return
	}
	s.lastShow = t
	s.shown = frame
	s.gen++
	close(s.wake)
	s.wake = make(chan struct{})
}

// current returns the last broadcast frame, its generation and the channel
// closed by the next broadcast.
func (s *Stream) current() ([]byte, uint64, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shown, s.gen, s.wake
}

// newest returns the most recent frame, throttled or not.
func (s *Stream) newest() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// ServeHTTP writes multipart JPEG parts until the client goes away.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Connection", "keep-alive")

	s.viewers.Add(1)
	defer s.viewers.Add(-1)

	send := func(jpg []byte) bool {
		if len(jpg) == 0 {
			return true
		}
		if err := writePart(w, jpg); err != nil {
			return false
		}
		fl.Flush()
		return true
	}

	// Prime the client so it shows something before the next broadcast.
	_, seen, wake := s.current()
	if !send(s.newest()) {
		return
	}

	tick := time.NewTicker(keepAlive)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-wake:
			var jpg []byte
			var gen uint64
			jpg, gen, wake = s.current()
			if gen == seen {
				continue
			}
			seen = gen
			if !send(jpg) {
				return
			}
		case <-tick.C:
			if !send(s.newest()) {
				return
			}
		}
	}
}

// writePart writes one multipart section holding jpg.
func writePart(w http.ResponseWriter, jpg []byte) error {
	head := "\r\n--" + boundary + "\r\nContent-Type: image/jpeg\r\nContent-Length: " + strconv.Itoa(len(jpg)) + "\r\n\r\n"
	if _, err := w.Write([]byte(head)); err != nil {
		return err
	}
	_, err := w.Write(jpg)
	return err
}
