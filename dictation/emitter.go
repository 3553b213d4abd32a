package dictation

import (
	"context"
	"time"

	"github.com/TM2611/air-keys/audio"
)

// EmitInterval is the cadence at which the live amplitude is published.
const EmitInterval = 50 * time.Millisecond

// emitter is the per-recording background task that samples the amplitude
// cell and forwards the latest value to the sink. Lifecycle is tied 1:1 to
// an active recording; stop aborts it without waiting for a final tick.
type emitter struct {
	cancel context.CancelFunc
}

func startEmitter(sink EventSink, level *audio.Level) *emitter {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(EmitInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if sink != nil {
					sink.AudioLevel(level.Load())
				}
			}
		}
	}()
	return &emitter{cancel: cancel}
}

func (e *emitter) stop() {
	e.cancel()
}
