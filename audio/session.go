// Package audio provides microphone capture for dictation: one recording
// session at a time, streaming 16-bit WAV to disk with a live RMS amplitude
// signal for the presentation layer.
package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrNoInputDevice is returned when no default microphone can be resolved.
var ErrNoInputDevice = errors.New("no default microphone found")

// Session owns one active capture: the input stream, the WAV sink and the
// amplitude cell. Start while recording is an idempotent no-op; Stop is safe
// to call when never started.
type Session struct {
	mu     sync.Mutex
	stream *portaudio.Stream
	sink   *pcmSink
}

// NewSession initialises the audio host. Call Close when the process exits.
func NewSession() (*Session, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialise audio host: %w", err)
	}
	return &Session{}, nil
}

// Active reports whether a capture is in progress.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Start opens the default input device at its native sample rate and begins
// streaming 16-bit samples to a WAV file at path, publishing the RMS of each
// delivered buffer into level. Device, format and file errors are reported
// synchronously and leave no partial file behind.
func (s *Session) Start(path string, level *Level) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return nil
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	if params.Input.Channels > 2 {
		params.Input.Channels = 2
	}
	if params.Input.Channels < 1 {
		return fmt.Errorf("%w: device has no input channels", ErrNoInputDevice)
	}

	writer, err := newWAVWriter(path, int(params.SampleRate), params.Input.Channels)
	if err != nil {
		return err
	}

	sink := &pcmSink{w: writer, level: level}
	stream, err := portaudio.OpenStream(params, sink.consume)
	if err != nil {
		abandon(writer)
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		abandon(writer)
		return fmt.Errorf("start input stream: %w", err)
	}

	s.stream = stream
	s.sink = sink
	slog.Info("recording started",
		"device", dev.Name,
		"rate", params.SampleRate,
		"channels", params.Input.Channels,
		"path", path)
	return nil
}

// Stop tears down the input stream first, then finalises the WAV sink so the
// file on disk is durable. Idempotent.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream == nil {
		return nil
	}

	if err := s.stream.Stop(); err != nil {
		slog.Error("stop input stream", "error", err)
	}
	if err := s.stream.Close(); err != nil {
		slog.Error("close input stream", "error", err)
	}
	s.stream = nil

	sink := s.sink
	s.sink = nil
	if err := sink.close(); err != nil {
		return fmt.Errorf("finalise recording: %w", err)
	}

	slog.Info("recording stopped")
	return nil
}

// Close releases the audio host.
func (s *Session) Close() error {
	if err := s.Stop(); err != nil {
		slog.Error("stop session on close", "error", err)
	}
	return portaudio.Terminate()
}

// abandon discards a writer whose stream never produced data.
func abandon(w *wavWriter) {
	path := w.Name()
	if err := w.Close(); err != nil {
		slog.Error("close abandoned wav", "error", err)
	}
	os.Remove(path)
}

// pcmSink receives buffers on the audio callback thread. It owns its writer
// behind a private mutex so teardown cannot race a late callback; it never
// touches the session lock.
type pcmSink struct {
	mu    sync.Mutex
	w     *wavWriter
	level *Level
}

// consume converts one delivered buffer to 16-bit samples, appends them to
// the sink and reduces them to an RMS amplitude. Per-sample write errors are
// swallowed: a momentary bad frame must not kill the recording.
func (p *pcmSink) consume(in []float32) {
	sumSquares, count := 0.0, 0

	p.mu.Lock()
	if p.w != nil {
		for _, f := range in {
			s := convertSample(f)
			if err := p.w.writeSample(s); err != nil {
				continue
			}
			n := float64(s) / float64(math.MaxInt16)
			sumSquares += n * n
			count++
		}
	}
	p.mu.Unlock()

	if p.level != nil {
		rms := 0.0
		if count > 0 {
			rms = math.Sqrt(sumSquares / float64(count))
		}
		p.level.Store(float32(rms))
	}
}

func (p *pcmSink) close() error {
	p.mu.Lock()
	w := p.w
	p.w = nil
	p.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Close()
}

// convertSample clamps a float32 sample to [-1, 1] and scales it to int16.
func convertSample(f float32) int16 {
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(f * math.MaxInt16)
}
