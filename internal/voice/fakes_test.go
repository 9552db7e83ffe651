package voice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guardian-angel-api/internal/audio"
	"guardian-angel-api/internal/logs"
)

type recvItem struct {
	msg Message
	err error
}

type fakeSession struct {
	sent      chan Frame
	recv      chan recvItem
	closed    chan struct{}
	closeOnce sync.Once
	sendErr   error
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		sent:   make(chan Frame, 64),
		recv:   make(chan recvItem, 16),
		closed: make(chan struct{}),
	}
}

func (s *fakeSession) Send(f Frame) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	select {
	case s.sent <- f:
	default:
	}
	return nil
}

func (s *fakeSession) Receive() (Message, error) {
	select {
	case item := <-s.recv:
		return item.msg, item.err
	case <-s.closed:
		return Message{}, errors.New("use of closed session")
	}
}

func (s *fakeSession) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSession) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeConnector struct {
	mu      sync.Mutex
	session *fakeSession
	err     error
	gate    chan struct{}
	calls   int
	got     LiveConfig
}

func (c *fakeConnector) Connect(ctx context.Context, cfg LiveConfig) (StreamingSession, error) {
	c.mu.Lock()
	c.calls++
	c.got = cfg
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

func (c *fakeConnector) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type fakeMic struct {
	denied  bool
	stream  *fakeCapture
	acquire int
}

func (m *fakeMic) Acquire(ctx context.Context) (CaptureStream, error) {
	m.acquire++
	if m.denied {
		return nil, &PermissionError{Device: "microphone"}
	}
	m.stream = &fakeCapture{frames: make(chan []float32, 16), closed: make(chan struct{})}
	return m.stream, nil
}

type fakeCapture struct {
	frames    chan []float32
	closed    chan struct{}
	closeOnce sync.Once
}

func (c *fakeCapture) Read(ctx context.Context) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, errors.New("capture closed")
	case f := <-c.frames:
		return f, nil
	}
}

func (c *fakeCapture) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeCapture) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

type scheduled struct {
	at       float64
	duration float64
	onEnded  func()
	src      *fakeSource
}

type fakeOutput struct {
	mu    sync.Mutex
	now   float64
	items []scheduled

	// gate, when set, holds Schedule until closed; entered is signalled first.
	gate    chan struct{}
	entered chan struct{}
	// endNow fires onEnded before Schedule returns.
	endNow bool
}

func (o *fakeOutput) setNow(t float64) {
	o.mu.Lock()
	o.now = t
	o.mu.Unlock()
}

func (o *fakeOutput) CurrentTime() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

func (o *fakeOutput) Schedule(buf *audio.Buffer, at float64, onEnded func()) (PlaybackSource, error) {
	if o.gate != nil {
		o.entered <- struct{}{}
		<-o.gate
	}
	o.mu.Lock()
	src := &fakeSource{}
	o.items = append(o.items, scheduled{at: at, duration: buf.Duration(), onEnded: onEnded, src: src})
	endNow := o.endNow
	o.mu.Unlock()
	if endNow {
		onEnded()
	}
	return src, nil
}

func (o *fakeOutput) all() []scheduled {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]scheduled(nil), o.items...)
}

type fakeSource struct {
	stopped atomic.Bool
}

func (s *fakeSource) Stop() { s.stopped.Store(true) }

type recordingEvents struct {
	mu      sync.Mutex
	entries []logs.SystemLog
}

func (r *recordingEvents) Log(log logs.SystemLog, _ interface{}) error {
	r.mu.Lock()
	r.entries = append(r.entries, log)
	r.mu.Unlock()
	return nil
}

func (r *recordingEvents) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// pcmChunk returns base64 PCM for n mono samples at 24 kHz.
func pcmChunk(n int) string {
	return audio.EncodeBytesToText(make([]byte, n*2))
}
