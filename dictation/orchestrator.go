package dictation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TM2611/air-keys/audio"
)

const (
	// MinRecordingDuration is the threshold below which a stopped
	// recording is discarded instead of transcribed.
	MinRecordingDuration = 500 * time.Millisecond

	// SettleDelay keeps the cancelling state visible long enough to be
	// perceived before returning to idle.
	SettleDelay = 400 * time.Millisecond
)

// Orchestrator drives Idle → Listening → (Processing | Cancelling) → Idle.
// One mutex covers the whole start/stop/decide sequence, so two gesture
// events can never race on session creation or teardown; a gesture arriving
// mid-processing queues behind the lock and observes the idle state.
type Orchestrator struct {
	recorder    Recorder
	transcriber Transcriber
	cleaner     Cleaner
	injector    Injector
	settings    Settings
	sink        EventSink

	mu        sync.Mutex
	state     State
	path      string
	startedAt time.Time
	level     *audio.Level
	emitter   *emitter

	// Overridable in tests.
	now     func() time.Time
	settle  func(time.Duration)
	tempDir string
}

// NewOrchestrator wires the collaborators together. All arguments except
// cleaner are required; a nil cleaner disables post-processing outright.
func NewOrchestrator(rec Recorder, tr Transcriber, cl Cleaner, inj Injector, st Settings, sink EventSink) *Orchestrator {
	return &Orchestrator{
		recorder:    rec,
		transcriber: tr,
		cleaner:     cl,
		injector:    inj,
		settings:    st,
		sink:        sink,
		state:       StateIdle,
		level:       &audio.Level{},
		now:         time.Now,
		settle:      time.Sleep,
		tempDir:     os.TempDir(),
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// HandleTap reacts to a confirmed double-tap: starts a recording when idle,
// finishes one when listening. Taps during processing or cancelling are
// already serialised away by the lock.
func (o *Orchestrator) HandleTap(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.state {
	case StateIdle:
		return o.startLocked()
	case StateListening:
		return o.finishLocked(ctx)
	default:
		return nil
	}
}

// HandleHoldCancel discards an in-progress recording unconditionally. A
// no-op in any state but listening.
func (o *Orchestrator) HandleHoldCancel() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateListening {
		return nil
	}

	o.stopCaptureLocked()
	slog.Info("recording cancelled by hold")
	o.settleDiscardLocked()
	return nil
}

// Shutdown stops any in-flight recording and removes its file.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != StateListening {
		return
	}
	o.stopCaptureLocked()
	o.removeRecordingLocked()
	o.setStateLocked(StateIdle)
}

func (o *Orchestrator) startLocked() error {
	path := filepath.Join(o.tempDir,
		fmt.Sprintf("air-keys-%d-%s.wav", o.now().UnixMilli(), uuid.NewString()))

	o.level.Reset()
	if err := o.recorder.Start(path, o.level); err != nil {
		return fmt.Errorf("start recording: %w", err)
	}

	o.path = path
	o.startedAt = o.now()
	o.setStateLocked(StateListening)
	o.emitter = startEmitter(o.sink, o.level)
	return nil
}

func (o *Orchestrator) finishLocked(ctx context.Context) error {
	o.stopCaptureLocked()

	elapsed := o.now().Sub(o.startedAt)
	if elapsed < MinRecordingDuration {
		slog.Info("recording too short, discarding", "elapsed", elapsed)
		o.settleDiscardLocked()
		return nil
	}

	o.setStateLocked(StateProcessing)
	err := o.transcribeAndInject(ctx)
	o.setStateLocked(StateIdle)
	return err
}

// transcribeAndInject runs the processing pipeline for the captured file.
// The file is removed no matter how the pipeline ends: raw audio never
// outlives its session.
func (o *Orchestrator) transcribeAndInject(ctx context.Context) error {
	defer o.removeRecordingLocked()

	text, err := o.transcriber.ProcessFile(ctx, o.path)
	if err != nil {
		if errors.Is(err, ErrEmptyTranscript) {
			slog.Info("no speech recognised")
			return nil
		}
		return fmt.Errorf("transcribe recording: %w", err)
	}

	if o.cleaner != nil && o.settings.ProcessingEnabled() {
		text = o.applyCleaner(ctx, text)
	}

	if err := o.injector.Inject(text); err != nil {
		return fmt.Errorf("inject text: %w", err)
	}
	slog.Info("dictation complete", "chars", len(text))
	return nil
}

// applyCleaner asks the cleaner to polish the transcript but never lets it
// lose the user's words: any error falls back to the raw text, and so does a
// result more than three times the input length.
func (o *Orchestrator) applyCleaner(ctx context.Context, text string) string {
	cleaned, err := o.cleaner.Clean(ctx, text)
	if err != nil {
		slog.Warn("cleanup failed, using raw transcript", "error", err)
		return text
	}
	if len(cleaned) > 3*len(text) {
		slog.Warn("cleanup output suspiciously long, using raw transcript",
			"in", len(text), "out", len(cleaned))
		return text
	}
	return cleaned
}

// stopCaptureLocked tears down the emitter and the recorder for the current
// session. The emitter is aborted, not awaited.
func (o *Orchestrator) stopCaptureLocked() {
	if o.emitter != nil {
		o.emitter.stop()
		o.emitter = nil
	}
	if err := o.recorder.Stop(); err != nil {
		slog.Error("stop recording", "error", err)
	}
}

// settleDiscardLocked removes the recording and holds the cancelling state
// visible for the settle delay before returning to idle. The lock stays held
// across the delay so no new session can start mid-cancel.
func (o *Orchestrator) settleDiscardLocked() {
	o.setStateLocked(StateCancelling)
	o.removeRecordingLocked()
	o.settle(SettleDelay)
	o.setStateLocked(StateIdle)
}

func (o *Orchestrator) removeRecordingLocked() {
	if o.path == "" {
		return
	}
	if err := os.Remove(o.path); err != nil && !os.IsNotExist(err) {
		slog.Error("remove recording file", "path", o.path, "error", err)
	}
	o.path = ""
}

func (o *Orchestrator) setStateLocked(s State) {
	o.state = s
	if o.sink != nil {
		o.sink.StateChanged(s)
	}
}
