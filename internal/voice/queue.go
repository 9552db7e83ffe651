package voice

import (
	"context"
	"sync/atomic"
)

// frameQueue sits between the capture task and the send task. When full, the
// oldest frame is discarded so capture never blocks.
type frameQueue struct {
	ch      chan Frame
	dropped atomic.Int64
}

func newFrameQueue(size int) *frameQueue {
	if size <= 0 {
		size = 1
	}
	return &frameQueue{ch: make(chan Frame, size)}
}

func (q *frameQueue) push(f Frame) {
	for {
		select {
		case q.ch <- f:
			return
		default:
		}
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

func (q *frameQueue) pop(ctx context.Context) (Frame, bool) {
	if ctx.Err() != nil {
		return Frame{}, false
	}
	select {
	case <-ctx.Done():
		return Frame{}, false
	case f := <-q.ch:
		return f, true
	}
}

func (q *frameQueue) Dropped() int64 {
	return q.dropped.Load()
}
