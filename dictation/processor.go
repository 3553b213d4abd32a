// Package dictation ties confirmed gestures to the recording and
// transcription lifecycle: start capture, stop capture, discard short
// recordings, transcribe, optionally clean, and inject the result into the
// focused application.
package dictation

import (
	"context"
	"errors"

	"github.com/TM2611/air-keys/audio"
)

var (
	// ErrMissingCredential is returned by providers when no API key is
	// stored for them.
	ErrMissingCredential = errors.New("missing API credential")

	// ErrEmptyTranscript is returned when a provider recognised no speech.
	// The orchestrator treats it as a benign no-op.
	ErrEmptyTranscript = errors.New("empty transcript")
)

// State is the coarse lifecycle signal published to the presentation layer.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateCancelling State = "cancelling"
)

// Recorder owns the microphone capture for one session at a time.
type Recorder interface {
	Start(path string, level *audio.Level) error
	Stop() error
}

// Transcriber converts a recorded audio file into text.
type Transcriber interface {
	ProcessFile(ctx context.Context, path string) (string, error)
}

// Cleaner rewrites a raw transcript into polished text.
type Cleaner interface {
	Clean(ctx context.Context, text string) (string, error)
}

// Injector delivers the final text into the focused application.
type Injector interface {
	Inject(text string) error
}

// Settings exposes the persisted preferences the orchestrator consults.
type Settings interface {
	ProcessingEnabled() bool
}

// EventSink receives lifecycle states and the live amplitude signal.
type EventSink interface {
	StateChanged(s State)
	AudioLevel(v float32)
}
