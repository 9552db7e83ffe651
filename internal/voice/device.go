package voice

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"guardian-angel-api/internal/audio"
)

const captureBacklog = 8

// Messages exchanged with the browser over the live websocket.
type controlMessage struct {
	Type       string `json:"type"`
	MicGranted bool   `json:"mic_granted"`
}

type statusMessage struct {
	Type string `json:"type"`
	Snapshot
}

type audioMessage struct {
	Type     string  `json:"type"`
	ID       uint64  `json:"id"`
	Data     string  `json:"data"`
	StartAt  float64 `json:"start_at"`
	Duration float64 `json:"duration"`
}

type stopAudioMessage struct {
	Type string `json:"type"`
	ID   uint64 `json:"id"`
}

// wsDevice is the browser on the other end of a live websocket, acting as
// both microphone and speaker for one Bridge.
type wsDevice struct {
	out     *outboundWriter
	created time.Time
	now     func() time.Time

	mu         sync.Mutex
	micGranted bool
	stream     *wsCapture
	nextID     uint64
}

func newWSDevice(out *outboundWriter) *wsDevice {
	return &wsDevice{out: out, created: time.Now(), now: time.Now}
}

func (d *wsDevice) setMicGranted(granted bool) {
	d.mu.Lock()
	d.micGranted = granted
	d.mu.Unlock()
}

func (d *wsDevice) Acquire(ctx context.Context) (CaptureStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, &UnavailableError{Device: "microphone", Err: err}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.micGranted {
		return nil, &PermissionError{Device: "microphone"}
	}
	if d.stream != nil {
		return nil, &UnavailableError{Device: "microphone", Err: errMicrophoneBusy}
	}
	s := &wsCapture{dev: d, frames: make(chan []float32, captureBacklog), closed: make(chan struct{})}
	d.stream = s
	return s, nil
}

// pushCapture hands one microphone chunk to the open capture stream. Chunks
// arriving with no stream, or faster than the stream is read, are dropped.
func (d *wsDevice) pushCapture(samples []float32) {
	d.mu.Lock()
	s := d.stream
	d.mu.Unlock()
	if s == nil {
		return
	}
	select {
	case s.frames <- samples:
	default:
	}
}

func (d *wsDevice) release(s *wsCapture) {
	d.mu.Lock()
	if d.stream == s {
		d.stream = nil
	}
	d.mu.Unlock()
}

// CurrentTime is seconds since the device was created.
func (d *wsDevice) CurrentTime() float64 {
	return d.now().Sub(d.created).Seconds()
}

func (d *wsDevice) Schedule(buf *audio.Buffer, at float64, onEnded func()) (PlaybackSource, error) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.mu.Unlock()

	var samples []float32
	if buf.NumberOfChannels() > 0 {
		samples = buf.Data[0]
	}
	duration := buf.Duration()

	payload, err := json.Marshal(audioMessage{
		Type:     "audio",
		ID:       id,
		Data:     audio.EncodeBytesToText(audio.EncodeFloatToPCM(samples)),
		StartAt:  at,
		Duration: duration,
	})
	if err != nil {
		return nil, err
	}
	if err := d.out.send(payload); err != nil {
		return nil, err
	}

	src := &wsSource{id: id, dev: d}
	wait := time.Duration((at + duration - d.CurrentTime()) * float64(time.Second))
	if wait < 0 {
		wait = 0
	}
	src.timer = time.AfterFunc(wait, func() {
		if src.done.CompareAndSwap(false, true) && onEnded != nil {
			onEnded()
		}
	})
	return src, nil
}

func (d *wsDevice) sendStatus(s Snapshot) {
	payload, err := json.Marshal(statusMessage{Type: "status", Snapshot: s})
	if err != nil {
		return
	}
	_ = d.out.send(payload)
}

type wsSource struct {
	id    uint64
	dev   *wsDevice
	timer *time.Timer
	done  atomic.Bool
}

func (s *wsSource) Stop() {
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.timer.Stop()
	payload, err := json.Marshal(stopAudioMessage{Type: "stop_audio", ID: s.id})
	if err != nil {
		return
	}
	_ = s.dev.out.send(payload)
}

type wsCapture struct {
	dev       *wsDevice
	frames    chan []float32
	closed    chan struct{}
	closeOnce sync.Once
}

func (c *wsCapture) Read(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errMicrophoneClosed
	case <-c.dev.out.done:
		return nil, errDeviceClosed
	case samples := <-c.frames:
		return samples, nil
	}
}

func (c *wsCapture) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.dev.release(c)
	})
	return nil
}
