package voice

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 20 * time.Second
)

var errDeviceClosed = errors.New("device closed")

type wsWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// outboundWriter owns every write to the websocket connection.
type outboundWriter struct {
	ws     wsWriter
	frames chan []byte
	done   chan struct{}
}

func newOutboundWriter(ws wsWriter, size int) *outboundWriter {
	return &outboundWriter{
		ws:     ws,
		frames: make(chan []byte, size),
		done:   make(chan struct{}),
	}
}

// send queues a text frame, blocking while the queue is full.
func (w *outboundWriter) send(payload []byte) error {
	select {
	case <-w.done:
		return errDeviceClosed
	default:
	}
	select {
	case w.frames <- payload:
		return nil
	case <-w.done:
		return errDeviceClosed
	}
}

func (w *outboundWriter) Run(ctx context.Context) error {
	defer close(w.done)

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.flush()
			_ = w.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
			_ = w.ws.Close()
			return nil
		case <-pingTicker.C:
			if err := w.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout)); err != nil {
				_ = w.ws.Close()
				return err
			}
		case payload := <-w.frames:
			if err := w.write(payload); err != nil {
				_ = w.ws.Close()
				return err
			}
		}
	}
}

// flush writes whatever is already queued, typically the final status frame.
func (w *outboundWriter) flush() {
	for i := 0; i < cap(w.frames); i++ {
		select {
		case payload := <-w.frames:
			if err := w.write(payload); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (w *outboundWriter) write(payload []byte) error {
	if err := w.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return w.ws.WriteMessage(websocket.TextMessage, payload)
}
