// Package gesture turns raw modifier-key transitions into high-level
// dictation gestures: a double tap confirms start/stop, a long hold cancels.
package gesture

import (
	"sync"
	"time"
)

const (
	// DoubleTapWindow is the maximum gap between two Alt releases that
	// still counts as a double tap.
	DoubleTapWindow = 400 * time.Millisecond

	// HoldCancelDelay is the minimum continuous hold that triggers
	// "hold Alt to cancel".
	HoldCancelDelay = 400 * time.Millisecond
)

// Role classifies the key a transition belongs to.
type Role int

const (
	// RoleOther is any key that is not the dictation modifier.
	RoleOther Role = iota
	// RoleAlt covers left, right and generic Alt.
	RoleAlt
)

// Edge is the direction of a key transition.
type Edge int

const (
	EdgeDown Edge = iota
	EdgeUp
)

// KeyTransition is one physical key state change as observed by the input
// hook. The producer must filter OS auto-repeat Down events; Process
// additionally ignores a Down for a key it already considers held.
type KeyTransition struct {
	Role Role
	Edge Edge
	Time time.Time
}

// Detector is the tap/hold state machine. It owns the only mutable gesture
// state in the process and is safe to call from the hook callback: Process
// does no I/O and hands gesture callbacks off to their own goroutines.
type Detector struct {
	mu sync.Mutex

	altDown      bool
	lastAltDown  time.Time
	lastAltUp    time.Time
	holdSeq      uint64
	holdConsumed bool
	sawOtherKey  bool

	tapWindow time.Duration
	holdDelay time.Duration

	onTap        func()
	onHoldCancel func()

	// afterFunc schedules the hold-cancel timer. Replaced in tests so the
	// timer can be fired deterministically.
	afterFunc func(d time.Duration, fn func()) *time.Timer
}

// NewDetector creates a detector that invokes onTap when an Alt double tap
// completes and onHoldCancel when Alt has been held past HoldCancelDelay.
func NewDetector(onTap, onHoldCancel func()) *Detector {
	return &Detector{
		tapWindow:    DoubleTapWindow,
		holdDelay:    HoldCancelDelay,
		onTap:        onTap,
		onHoldCancel: onHoldCancel,
		afterFunc:    time.AfterFunc,
	}
}

// Process feeds one key transition into the state machine. It must return
// quickly: the caller is the low-level hook dispatch path.
func (d *Detector) Process(tr KeyTransition) {
	d.mu.Lock()

	if tr.Role != RoleAlt {
		// Any other key invalidates a pending double-tap window.
		d.sawOtherKey = true
		d.mu.Unlock()
		return
	}

	switch tr.Edge {
	case EdgeDown:
		d.altPressedLocked(tr.Time)
		d.mu.Unlock()
	case EdgeUp:
		fire := d.altReleasedLocked(tr.Time)
		d.mu.Unlock()
		if fire != nil {
			go fire()
		}
	default:
		d.mu.Unlock()
	}
}

func (d *Detector) altPressedLocked(now time.Time) {
	if d.altDown {
		// Auto-repeat while Alt is held: the press was already recorded.
		return
	}
	d.altDown = true
	d.lastAltDown = now
	d.holdConsumed = false
	d.holdSeq++

	// Arm the one-shot hold timer for this press. The timer always fires;
	// holdExpired discards it when the sequence token no longer matches.
	seq := d.holdSeq
	d.afterFunc(d.holdDelay, func() { d.holdExpired(seq) })
}

// altReleasedLocked updates state for an Alt release and returns the gesture
// callback to run, if the release completed a double tap.
func (d *Detector) altReleasedLocked(now time.Time) func() {
	d.altDown = false
	d.lastAltDown = time.Time{}

	if d.holdConsumed {
		// Tail of a hold that already cancelled; produces no gesture.
		d.holdConsumed = false
		d.lastAltUp = time.Time{}
		d.sawOtherKey = false
		return nil
	}

	if d.sawOtherKey {
		// The pending pair is poisoned; this release opens a fresh window.
		d.lastAltUp = now
		d.sawOtherKey = false
		return nil
	}

	if !d.lastAltUp.IsZero() && now.Sub(d.lastAltUp) <= d.tapWindow {
		// Pair consumed; a third tap starts a fresh window.
		d.lastAltUp = time.Time{}
		d.sawOtherKey = false
		return d.onTap
	}

	d.lastAltUp = now
	return nil
}

// holdExpired runs when the hold-cancel timer fires. The sequence token
// guards against the key having been released, or released and re-pressed,
// while the timer was pending.
func (d *Detector) holdExpired(seq uint64) {
	d.mu.Lock()
	if !d.altDown || d.holdSeq != seq {
		d.mu.Unlock()
		return
	}
	d.holdConsumed = true
	d.lastAltUp = time.Time{}
	d.sawOtherKey = false
	fire := d.onHoldCancel
	d.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// AltDown reports whether the detector currently considers Alt held.
func (d *Detector) AltDown() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.altDown
}
