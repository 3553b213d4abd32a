// Package hook registers the process-wide low-level keyboard listener and
// adapts raw key events into gesture transitions. The listener only observes:
// events are never consumed, so key delivery to other applications is
// unaffected.
package hook

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	hook "github.com/robotn/gohook"

	"github.com/TM2611/air-keys/gesture"
)

// ErrRunning is returned when Start is called on an active listener.
var ErrRunning = errors.New("keyboard listener already running")

// ErrUnavailable is returned when the platform cannot deliver low-level key
// events. Dictation gestures are disabled but the host process keeps running.
var ErrUnavailable = errors.New("low-level keyboard hook unavailable")

// Listener owns the single process-wide keyboard hook. Events are drained on
// a dedicated goroutine; the per-event work is a rawcode lookup and one
// detector transition, so the hook pipeline is never held up.
type Listener struct {
	mu       sync.Mutex
	running  bool
	detector *gesture.Detector
	done     chan struct{}
}

// NewListener creates a listener feeding the given detector.
func NewListener(d *gesture.Detector) *Listener {
	return &Listener{detector: d}
}

// Start registers the hook and begins dispatching events. There is at most
// one hook per process; a second Start returns ErrRunning.
func (l *Listener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrRunning
	}

	events := hook.Start()
	if events == nil {
		slog.Warn("keyboard hook not supported on this platform; dictation gestures disabled")
		return ErrUnavailable
	}

	l.running = true
	l.done = make(chan struct{})
	go l.drain(events, l.done)

	slog.Info("keyboard listener started")
	return nil
}

// Stop unregisters the hook. Safe to call when never started.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return
	}
	l.running = false
	hook.End()

	// Wait for the dispatch goroutine to observe the closed event channel.
	select {
	case <-l.done:
	case <-time.After(time.Second):
		slog.Warn("keyboard listener did not stop in time")
	}
	slog.Info("keyboard listener stopped")
}

func (l *Listener) drain(events <-chan hook.Event, done chan struct{}) {
	defer close(done)
	for ev := range events {
		l.dispatch(ev)
	}
}

func (l *Listener) dispatch(ev hook.Event) {
	var edge gesture.Edge
	switch ev.Kind {
	case hook.KeyDown:
		edge = gesture.EdgeDown
	case hook.KeyUp:
		edge = gesture.EdgeUp
	case hook.KeyHold:
		// OS auto-repeat while a key stays held; the detector must only
		// ever see real transitions.
		return
	default:
		// Mouse and hook lifecycle events carry no gesture information.
		return
	}

	role := gesture.RoleOther
	if altRawcodes[ev.Rawcode] {
		role = gesture.RoleAlt
	}

	when := ev.When
	if when.IsZero() {
		when = time.Now()
	}

	l.detector.Process(gesture.KeyTransition{Role: role, Edge: edge, Time: when})
}
