package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type CaptureState int

const (
	Idle CaptureState = iota
	Recording
	Captured
)

func (s CaptureState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Captured:
		return "captured"
	default:
		return "unknown"
	}
}

var ErrNoMicrophone = errors.New("conversation: no microphone available")

// Microphone grants access to a capture device. Open may block while the
// user is asked for permission.
type Microphone interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open recording. Stop finishes it and returns the clip; Close
// discards it. Either one releases the device.
type Stream interface {
	Stop() (Clip, error)
	Close() error
}

// Clip is a finished recording, referenced for local playback only.
type Clip struct {
	Ref      string
	MIMEType string
	Size     int64
	Duration time.Duration

	seq uint64
}

// Capture is the Idle → Recording → Captured → Idle state machine around a
// Microphone. The stream is held only while Recording.
type Capture struct {
	mu     sync.Mutex
	mic    Microphone
	logger *slog.Logger

	state  CaptureState
	stream Stream
	clip   Clip
	seq    uint64

	// opening is set while mic.Open runs without the lock held. Delete bumps
	// epoch so a stream that arrives afterwards is closed, not kept.
	opening bool
	epoch   uint64
}

func NewCapture(mic Microphone, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{mic: mic, logger: logger}
}

func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle starts a recording when Idle and stops it when Recording. A capture
// that is waiting to be sent or deleted is left alone. Device failures are
// logged and leave the capture Idle.
//
// The lock is not held while the microphone opens, so other callers (a text
// send in particular) never wait on a permission prompt.
func (c *Capture) Toggle(ctx context.Context) CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Idle:
		if c.mic == nil {
			c.logger.Warn("cannot start recording", "err", ErrNoMicrophone)
			return c.state
		}
		if c.opening {
			return c.state
		}
		c.opening = true
		epoch := c.epoch

		c.mu.Unlock()
		stream, err := c.mic.Open(ctx)
		c.mu.Lock()

		c.opening = false
		if err != nil {
			c.logger.Warn("cannot start recording", "err", err)
			return c.state
		}
		if epoch != c.epoch || c.state != Idle {
			if err := stream.Close(); err != nil {
				c.logger.Warn("failed to close recording", "err", err)
			}
			c.logger.Debug("recording discarded before it started")
			return c.state
		}
		c.stream = stream
		c.state = Recording
	case Recording:
		clip, err := c.stream.Stop()
		c.stream = nil
		if err != nil {
			c.logger.Warn("failed to stop recording", "err", err)
			c.state = Idle
			return c.state
		}
		c.seq++
		clip.seq = c.seq
		c.clip = clip
		c.state = Captured
	}
	return c.state
}

// Delete discards an active recording or a captured clip.
func (c *Capture) Delete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Recording && c.stream != nil {
		if err := c.stream.Close(); err != nil {
			c.logger.Warn("failed to close recording", "err", err)
		}
	}
	c.epoch++
	c.reset()
}

// Captured returns the clip waiting to be sent.
func (c *Capture) Captured() (Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Captured {
		return Clip{}, false
	}
	return c.clip, true
}

// release returns to Idle if clip is still the captured one. A newer
// recording started after a delete is not touched.
func (c *Capture) release(clip Clip) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Captured && c.clip.seq == clip.seq {
		c.reset()
	}
}

func (c *Capture) reset() {
	c.stream = nil
	c.clip = Clip{}
	c.state = Idle
}
