package voice

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrTooManySessions  = errors.New("too many live sessions")
	ErrDuplicateSession = errors.New("live session already registered")
)

// Tracker caps and tracks concurrent live sessions so they can be cancelled
// together on shutdown.
type Tracker struct {
	mu       sync.Mutex
	max      int
	sessions map[string]*trackedSession
	wg       sync.WaitGroup
}

type trackedSession struct {
	cancel func()
	once   sync.Once
}

// NewTracker returns a tracker admitting at most max sessions; max <= 0 means
// no limit.
func NewTracker(max int) *Tracker {
	return &Tracker{
		max:      max,
		sessions: make(map[string]*trackedSession),
	}
}

func (t *Tracker) Register(sessionID string, cancel func()) (unregister func(), err error) {
	entry := &trackedSession{cancel: cancel}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.sessions[sessionID]; ok {
		return func() {}, ErrDuplicateSession
	}
	if t.max > 0 && len(t.sessions) >= t.max {
		return func() {}, ErrTooManySessions
	}
	t.sessions[sessionID] = entry
	t.wg.Add(1)

	return func() { t.unregister(sessionID, entry) }, nil
}

func (t *Tracker) unregister(sessionID string, entry *trackedSession) {
	entry.once.Do(func() {
		t.mu.Lock()
		delete(t.sessions, sessionID)
		t.mu.Unlock()
		t.wg.Done()
	})
}

func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

func (t *Tracker) CancelAll() (canceled int) {
	var cancels []func()
	t.mu.Lock()
	for _, entry := range t.sessions {
		if entry.cancel != nil {
			cancels = append(cancels, entry.cancel)
		}
	}
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
		canceled++
	}
	return canceled
}

// Wait blocks until every registered session has unregistered or ctx is done.
func (t *Tracker) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		t.wg.Wait()
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
