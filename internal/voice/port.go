package voice

import (
	"context"

	"guardian-angel-api/internal/audio"
)

// StreamingSession is an open bidirectional live session with the voice vendor.
// Receive blocks for the next message and returns io.EOF once the vendor
// closes the session.
type StreamingSession interface {
	Send(frame Frame) error
	Receive() (Message, error)
	Close() error
}

type Connector interface {
	Connect(ctx context.Context, cfg LiveConfig) (StreamingSession, error)
}

type Microphone interface {
	Acquire(ctx context.Context) (CaptureStream, error)
}

// CaptureStream yields mono 16 kHz chunks of CaptureFrames samples.
type CaptureStream interface {
	Read(ctx context.Context) ([]float32, error)
	Close() error
}

// AudioOutput plays 24 kHz buffers against its own clock, in seconds.
// onEnded runs asynchronously after natural completion and never after Stop.
// Implementations must not call back into the Bridge from Schedule or Stop.
type AudioOutput interface {
	CurrentTime() float64
	Schedule(buf *audio.Buffer, at float64, onEnded func()) (PlaybackSource, error)
}

type PlaybackSource interface {
	Stop()
}
