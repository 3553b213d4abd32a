package dictation

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/TM2611/air-keys/audio"
)

type fakeRecorder struct {
	startErr error
	path     string
	starts   int
	stops    int
}

func (r *fakeRecorder) Start(path string, level *audio.Level) error {
	r.starts++
	if r.startErr != nil {
		return r.startErr
	}
	if err := os.WriteFile(path, []byte("pcm"), 0o600); err != nil {
		return err
	}
	r.path = path
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.stops++
	return nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (t *fakeTranscriber) ProcessFile(ctx context.Context, path string) (string, error) {
	t.calls++
	return t.text, t.err
}

type fakeCleaner struct {
	text  string
	err   error
	calls int
}

func (c *fakeCleaner) Clean(ctx context.Context, text string) (string, error) {
	c.calls++
	return c.text, c.err
}

type fakeInjector struct {
	got []string
	err error
}

func (i *fakeInjector) Inject(text string) error {
	i.got = append(i.got, text)
	return i.err
}

type fakeSettings struct{ enabled bool }

func (s *fakeSettings) ProcessingEnabled() bool { return s.enabled }

type fakeSink struct {
	mu     sync.Mutex
	states []State
}

func (s *fakeSink) StateChanged(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

func (s *fakeSink) AudioLevel(float32) {}

func (s *fakeSink) seen() []State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]State(nil), s.states...)
}

type fixture struct {
	orch     *Orchestrator
	recorder *fakeRecorder
	trans    *fakeTranscriber
	cleaner  *fakeCleaner
	injector *fakeInjector
	settings *fakeSettings
	sink     *fakeSink
	clock    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		recorder: &fakeRecorder{},
		trans:    &fakeTranscriber{},
		cleaner:  &fakeCleaner{},
		injector: &fakeInjector{},
		settings: &fakeSettings{},
		sink:     &fakeSink{},
		clock:    time.Unix(1700000000, 0),
	}
	f.orch = NewOrchestrator(f.recorder, f.trans, f.cleaner, f.injector, f.settings, f.sink)
	f.orch.now = func() time.Time { return f.clock }
	f.orch.settle = func(time.Duration) {}
	f.orch.tempDir = t.TempDir()
	return f
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

func (f *fixture) tap(t *testing.T) {
	t.Helper()
	if err := f.orch.HandleTap(context.Background()); err != nil {
		t.Fatalf("HandleTap: %v", err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestStartFailureStaysIdle(t *testing.T) {
	f := newFixture(t)
	f.recorder.startErr = errors.New("no microphone")

	if err := f.orch.HandleTap(context.Background()); err == nil {
		t.Fatal("expected start error to surface")
	}
	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}

	// A later tap retries from scratch.
	f.recorder.startErr = nil
	f.tap(t)
	if got := f.orch.State(); got != StateListening {
		t.Fatalf("state = %q, want listening", got)
	}
}

func TestShortRecordingDiscarded(t *testing.T) {
	f := newFixture(t)
	f.tap(t)
	f.advance(200 * time.Millisecond)
	f.tap(t)

	if f.trans.calls != 0 {
		t.Errorf("transcriber called %d times, want 0", f.trans.calls)
	}
	if fileExists(f.recorder.path) {
		t.Error("discarded recording left on disk")
	}
	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}

	want := []State{StateListening, StateCancelling, StateIdle}
	got := f.sink.seen()
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}
}

func TestEmptyTranscriptIsBenign(t *testing.T) {
	f := newFixture(t)
	f.trans.err = ErrEmptyTranscript

	f.tap(t)
	f.advance(time.Second)
	f.tap(t)

	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if len(f.injector.got) != 0 {
		t.Errorf("injector called with %v, want no calls", f.injector.got)
	}
	if fileExists(f.recorder.path) {
		t.Error("recording left on disk after empty transcript")
	}
}

func TestTranscriptInjectedVerbatimWhenProcessingDisabled(t *testing.T) {
	f := newFixture(t)
	f.trans.text = "hello world"
	f.settings.enabled = false

	f.tap(t)
	f.advance(time.Second)
	f.tap(t)

	if f.cleaner.calls != 0 {
		t.Errorf("cleaner called %d times, want 0", f.cleaner.calls)
	}
	if len(f.injector.got) != 1 || f.injector.got[0] != "hello world" {
		t.Fatalf("injector received %v, want [hello world]", f.injector.got)
	}
	if fileExists(f.recorder.path) {
		t.Error("recording left on disk after transcription")
	}
}

func TestCleanerFailureFallsBackToRawText(t *testing.T) {
	f := newFixture(t)
	f.trans.text = "raw words"
	f.settings.enabled = true
	f.cleaner.err = ErrMissingCredential

	f.tap(t)
	f.advance(time.Second)
	f.tap(t)

	if f.cleaner.calls != 1 {
		t.Errorf("cleaner called %d times, want 1", f.cleaner.calls)
	}
	if len(f.injector.got) != 1 || f.injector.got[0] != "raw words" {
		t.Fatalf("injector received %v, want [raw words]", f.injector.got)
	}
}

func TestCleanedTextUsedWhenProcessingEnabled(t *testing.T) {
	f := newFixture(t)
	f.trans.text = "um hello"
	f.settings.enabled = true
	f.cleaner.text = "Hello."

	f.tap(t)
	f.advance(time.Second)
	f.tap(t)

	if len(f.injector.got) != 1 || f.injector.got[0] != "Hello." {
		t.Fatalf("injector received %v, want [Hello.]", f.injector.got)
	}
}

func TestOverlongCleanupRejected(t *testing.T) {
	f := newFixture(t)
	f.trans.text = "hi"
	f.settings.enabled = true
	f.cleaner.text = "an elaborate hallucinated paragraph"

	f.tap(t)
	f.advance(time.Second)
	f.tap(t)

	if len(f.injector.got) != 1 || f.injector.got[0] != "hi" {
		t.Fatalf("injector received %v, want raw [hi]", f.injector.got)
	}
}

func TestTranscriptionFailureReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.trans.err = errors.New("request failed: 503")

	f.tap(t)
	f.advance(time.Second)
	if err := f.orch.HandleTap(context.Background()); err == nil {
		t.Fatal("expected transcription error to surface")
	}

	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if len(f.injector.got) != 0 {
		t.Errorf("injector called after failed transcription: %v", f.injector.got)
	}
	if fileExists(f.recorder.path) {
		t.Error("recording left on disk after failed transcription")
	}
}

func TestInjectorFailureReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.trans.text = "text"
	f.injector.err = errors.New("clipboard busy")

	f.tap(t)
	f.advance(time.Second)
	if err := f.orch.HandleTap(context.Background()); err == nil {
		t.Fatal("expected injection error to surface")
	}
	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
}

func TestHoldCancelDiscardsRegardlessOfDuration(t *testing.T) {
	f := newFixture(t)
	f.tap(t)
	f.advance(5 * time.Second)

	if err := f.orch.HandleHoldCancel(); err != nil {
		t.Fatalf("HandleHoldCancel: %v", err)
	}

	if f.trans.calls != 0 {
		t.Errorf("transcriber called %d times, want 0", f.trans.calls)
	}
	if fileExists(f.recorder.path) {
		t.Error("cancelled recording left on disk")
	}
	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
	if f.recorder.stops != 1 {
		t.Errorf("recorder stopped %d times, want 1", f.recorder.stops)
	}
}

func TestHoldCancelWhileIdleIsNoOp(t *testing.T) {
	f := newFixture(t)

	if err := f.orch.HandleHoldCancel(); err != nil {
		t.Fatalf("HandleHoldCancel: %v", err)
	}
	if f.recorder.stops != 0 {
		t.Errorf("recorder stopped %d times, want 0", f.recorder.stops)
	}
	if len(f.sink.seen()) != 0 {
		t.Errorf("state changes emitted for idle cancel: %v", f.sink.seen())
	}
}

func TestSessionPathsAreUnique(t *testing.T) {
	f := newFixture(t)

	f.tap(t)
	first := f.recorder.path
	f.advance(time.Second)
	f.tap(t)

	f.tap(t)
	second := f.recorder.path
	if first == second {
		t.Fatalf("both sessions used path %q", first)
	}
}

func TestShutdownCleansUpActiveRecording(t *testing.T) {
	f := newFixture(t)
	f.tap(t)

	f.orch.Shutdown()

	if f.recorder.stops != 1 {
		t.Errorf("recorder stopped %d times, want 1", f.recorder.stops)
	}
	if fileExists(f.recorder.path) {
		t.Error("recording left on disk after shutdown")
	}
	if got := f.orch.State(); got != StateIdle {
		t.Fatalf("state = %q, want idle", got)
	}
}
