package audio

import (
	"math"
	"sync/atomic"
)

// Level is a single-writer amplitude cell in [0, 1]. The audio callback
// stores at buffer rate, readers poll at their own cadence; intermediate
// values are overwritten by design (latest-value semantics, no queue).
type Level struct {
	bits atomic.Uint32
}

// Store writes the current amplitude, clamped to [0, 1].
func (l *Level) Store(v float32) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	l.bits.Store(math.Float32bits(v))
}

// Load returns the most recently stored amplitude.
func (l *Level) Load() float32 {
	return math.Float32frombits(l.bits.Load())
}

// Reset clears the cell to silence.
func (l *Level) Reset() {
	l.bits.Store(0)
}
