package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"guardian-angel-api/internal/audio"
	"guardian-angel-api/internal/logs"
)

type Options struct {
	Live      LiveConfig
	QueueSize int
	Events    logs.LogServiceAPI
}

// Bridge runs one live voice conversation at a time between a microphone, an
// audio output and a vendor streaming session.
type Bridge struct {
	connector Connector
	mic       Microphone
	output    AudioOutput
	opts      Options

	mu         sync.Mutex
	state      State
	status     string
	lastErr    error
	epoch      uint64
	session    StreamingSession
	capture    CaptureStream
	queue      *frameQueue
	cancel     context.CancelFunc
	sources    map[uint64]PlaybackSource
	nextID     uint64
	nextStart  float64
	transcript *transcript
	onChange   func(Snapshot)

	// pendingID is the chunk whose Schedule call is in flight.
	pendingID    uint64
	pendingEnded bool

	notifyMu sync.Mutex
	wg       sync.WaitGroup
}

func NewBridge(connector Connector, mic Microphone, output AudioOutput, opts Options) *Bridge {
	return &Bridge{
		connector:  connector,
		mic:        mic,
		output:     output,
		opts:       opts,
		state:      StateStandby,
		status:     StatusStandby,
		sources:    make(map[uint64]PlaybackSource),
		transcript: newTranscript(maxTranscriptLines),
	}
}

// OnChange registers an observer called after every status or transcript change.
func (b *Bridge) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Bridge) snapshotLocked() Snapshot {
	return Snapshot{State: b.state, Status: b.status, TranscriptLines: b.transcript.snapshot()}
}

// Err returns the error that moved the bridge into StateError, if any.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Start acquires the microphone, opens the vendor session and begins streaming.
// It returns once the session is active or has failed.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateConnecting || b.state == StateActive {
		b.mu.Unlock()
		return ErrSessionActive
	}
	b.epoch++
	epoch := b.epoch
	b.state = StateConnecting
	b.status = StatusConnecting
	b.lastErr = nil
	b.nextStart = 0
	b.transcript.reset()
	b.mu.Unlock()
	b.notify()

	stream, err := b.mic.Acquire(ctx)
	if err != nil {
		var pe *PermissionError
		var ue *UnavailableError
		if !errors.As(err, &pe) && !errors.As(err, &ue) {
			err = &UnavailableError{Device: "microphone", Err: err}
		}
		b.failStart(epoch, err)
		return err
	}
	if !b.isConnecting(epoch) {
		_ = stream.Close()
		return ErrSessionStopped
	}

	sess, err := b.connector.Connect(ctx, b.opts.Live)
	if err != nil {
		_ = stream.Close()
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Op: "connect", Err: err}
		}
		b.failStart(epoch, err)
		return err
	}

	b.mu.Lock()
	if b.epoch != epoch || b.state != StateConnecting {
		b.mu.Unlock()
		_ = sess.Close()
		_ = stream.Close()
		return ErrSessionStopped
	}
	pumpCtx, cancel := context.WithCancel(context.Background())
	q := newFrameQueue(b.opts.QueueSize)
	b.session = sess
	b.capture = stream
	b.queue = q
	b.cancel = cancel
	b.state = StateActive
	b.status = StatusActive
	b.wg.Add(3)
	b.mu.Unlock()

	go b.captureLoop(pumpCtx, sess, stream, q)
	go b.sendLoop(pumpCtx, sess, q)
	go b.receiveLoop(sess)

	b.notify()
	b.event(logs.LevelInfo, "start", "live session active", map[string]interface{}{
		"model": b.opts.Live.Model,
		"voice": b.opts.Live.VoiceName,
	})
	return nil
}

// Stop tears the session down. It is a no-op unless connecting or active.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.state != StateConnecting && b.state != StateActive {
		b.mu.Unlock()
		return
	}
	b.teardownLocked(StateFinished, StatusFinished, nil)
}

// Wait blocks until the capture, send and receive tasks of past sessions exit.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

func (b *Bridge) isConnecting(epoch uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch == epoch && b.state == StateConnecting
}

func (b *Bridge) failStart(epoch uint64, err error) {
	b.mu.Lock()
	if b.epoch != epoch || b.state != StateConnecting {
		b.mu.Unlock()
		return
	}
	b.state = StateError
	b.status = StatusFailedToStart
	b.lastErr = err
	b.mu.Unlock()

	log.Printf("voice: start failed: %v", err)
	b.notify()
	b.event(logs.LevelError, "start_failed", err.Error(), nil)
}

// fail moves an active session to StateError. Errors from a session that has
// already been replaced or stopped are ignored.
func (b *Bridge) fail(sess StreamingSession, err error) {
	b.mu.Lock()
	if b.session != sess || b.state != StateActive {
		b.mu.Unlock()
		return
	}
	b.teardownLocked(StateError, StatusConnectionError, err)
}

// closeFrom handles a vendor initiated close.
func (b *Bridge) closeFrom(sess StreamingSession) {
	b.mu.Lock()
	if b.session != sess || b.state != StateActive {
		b.mu.Unlock()
		return
	}
	b.teardownLocked(StateFinished, StatusFinished, nil)
}

// teardownLocked must be called with b.mu held and releases it.
func (b *Bridge) teardownLocked(state State, status string, cause error) {
	b.epoch++
	sess, stream, q, cancel := b.session, b.capture, b.queue, b.cancel
	srcs := b.drainSourcesLocked()
	b.session, b.capture, b.queue, b.cancel = nil, nil, nil, nil
	b.nextStart = 0
	b.state = state
	b.status = status
	b.lastErr = cause
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sess != nil {
		_ = sess.Close()
	}
	for _, src := range srcs {
		src.Stop()
	}
	if stream != nil {
		_ = stream.Close()
	}

	b.notify()

	meta := map[string]interface{}{}
	if q != nil {
		meta["dropped_frames"] = q.Dropped()
	}
	if cause != nil {
		log.Printf("voice: session error: %v", cause)
		b.event(logs.LevelError, "error", cause.Error(), meta)
		return
	}
	b.event(logs.LevelInfo, "finish", "live session finished", meta)
}

func (b *Bridge) drainSourcesLocked() []PlaybackSource {
	srcs := make([]PlaybackSource, 0, len(b.sources))
	for id, src := range b.sources {
		srcs = append(srcs, src)
		delete(b.sources, id)
	}
	return srcs
}

func (b *Bridge) captureLoop(ctx context.Context, sess StreamingSession, stream CaptureStream, q *frameQueue) {
	defer b.wg.Done()
	for {
		samples, err := stream.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.fail(sess, &UnavailableError{Device: "microphone", Err: err})
			return
		}
		pcm := audio.EncodeFloatToPCM(samples)
		q.push(Frame{Data: audio.EncodeBytesToText(pcm), MIMEType: audio.PCMMimeType})
	}
}

func (b *Bridge) sendLoop(ctx context.Context, sess StreamingSession, q *frameQueue) {
	defer b.wg.Done()
	for {
		f, ok := q.pop(ctx)
		if !ok {
			return
		}
		if err := sess.Send(f); err != nil {
			b.fail(sess, &TransportError{Op: "send", Err: err})
			return
		}
	}
}

func (b *Bridge) receiveLoop(sess StreamingSession) {
	defer b.wg.Done()
	for {
		msg, err := sess.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				b.closeFrom(sess)
				return
			}
			b.fail(sess, &TransportError{Op: "receive", Err: err})
			return
		}
		if !b.handle(sess, msg) {
			return
		}
	}
}

// handle applies one inbound message. It reports false once sess is no longer
// the current session.
func (b *Bridge) handle(sess StreamingSession, msg Message) bool {
	b.mu.Lock()
	if b.session != sess {
		b.mu.Unlock()
		return false
	}

	var chunk *reservedChunk
	if msg.Audio != "" && !msg.Interrupted {
		c, err := b.reserveLocked(msg.Audio)
		if err != nil {
			log.Printf("voice: dropping audio chunk: %v", err)
		}
		chunk = c
	}
	changed := false
	if msg.Transcript != "" {
		b.transcript.add(msg.Transcript)
		changed = true
	}
	var interrupted []PlaybackSource
	if msg.Interrupted {
		interrupted = b.drainSourcesLocked()
		b.nextStart = 0
	}
	b.mu.Unlock()

	if chunk != nil {
		b.play(sess, chunk)
	}
	for _, src := range interrupted {
		src.Stop()
	}
	if changed {
		b.notify()
	}
	return true
}

type reservedChunk struct {
	id    uint64
	buf   *audio.Buffer
	start float64
	prev  float64
}

// reserveLocked decodes a chunk and claims its slot on the playback timeline.
func (b *Bridge) reserveLocked(data string) (*reservedChunk, error) {
	raw, err := audio.DecodeTextToBytes(data)
	if err != nil {
		return nil, err
	}
	buf, err := audio.DecodePCMToAudioBuffer(raw, audio.OutputSampleRate, 1)
	if err != nil {
		return nil, err
	}

	start := b.nextStart
	if now := b.output.CurrentTime(); now > start {
		start = now
	}

	b.nextID++
	c := &reservedChunk{id: b.nextID, buf: buf, start: start, prev: b.nextStart}
	b.nextStart = start + buf.Duration()
	b.pendingID = c.id
	b.pendingEnded = false
	return c, nil
}

// play hands a reserved chunk to the output without holding b.mu, so a slow
// output cannot block Stop. A source that comes back after the session ended
// is stopped immediately.
func (b *Bridge) play(sess StreamingSession, c *reservedChunk) {
	src, err := b.output.Schedule(c.buf, c.start, func() { b.sourceEnded(c.id) })

	b.mu.Lock()
	current := b.session == sess
	ended := b.pendingEnded
	b.pendingID, b.pendingEnded = 0, false
	if err != nil {
		if current && b.nextStart == c.start+c.buf.Duration() {
			b.nextStart = c.prev
		}
		b.mu.Unlock()
		log.Printf("voice: dropping audio chunk: %v", fmt.Errorf("schedule playback: %w", err))
		return
	}
	if current && !ended {
		b.sources[c.id] = src
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	if !current {
		src.Stop()
	}
}

func (b *Bridge) sourceEnded(id uint64) {
	b.mu.Lock()
	if _, ok := b.sources[id]; !ok && id == b.pendingID {
		b.pendingEnded = true
	}
	delete(b.sources, id)
	b.mu.Unlock()
}

// ActiveSources reports how many playback sources are scheduled or playing.
func (b *Bridge) ActiveSources() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sources)
}

// NextStartTime is the output clock time the next chunk would be queued behind.
func (b *Bridge) NextStartTime() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextStart
}

func (b *Bridge) notify() {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	fn := b.onChange
	snap := b.snapshotLocked()
	b.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (b *Bridge) event(level, action, message string, meta map[string]interface{}) {
	if b.opts.Events == nil {
		return
	}
	if err := b.opts.Events.Log(logs.SystemLog{
		Level:   level,
		Service: "voice",
		Action:  action,
		Message: message,
	}, meta); err != nil {
		log.Printf("voice: event log: %v", err)
	}
}
