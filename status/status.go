// Package status surfaces the dictation lifecycle to the user: structured
// logs for every state change and desktop notifications for failures that
// need attention.
package status

import (
	"log/slog"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/TM2611/air-keys/dictation"
)

const appTitle = "Air Keys"

// Notifier receives orchestrator lifecycle events. It keeps the latest
// amplitude so a future display surface can poll it.
type Notifier struct {
	mu    sync.Mutex
	state dictation.State
	level float32
}

// NewNotifier returns a notifier starting in the idle state.
func NewNotifier() *Notifier {
	return &Notifier{state: dictation.StateIdle}
}

// StateChanged records and logs the new lifecycle state.
func (n *Notifier) StateChanged(s dictation.State) {
	n.mu.Lock()
	n.state = s
	n.mu.Unlock()
	slog.Info("dictation state changed", "state", string(s))
}

// AudioLevel stores the latest amplitude sample.
func (n *Notifier) AudioLevel(v float32) {
	n.mu.Lock()
	n.level = v
	n.mu.Unlock()
}

// State returns the last observed lifecycle state.
func (n *Notifier) State() dictation.State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Level returns the last observed amplitude.
func (n *Notifier) Level() float32 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.level
}

// Alert shows a desktop notification. Notification failures are logged only;
// an unreachable notification daemon must not break dictation.
func (n *Notifier) Alert(message string) {
	if err := beeep.Notify(appTitle, message, ""); err != nil {
		slog.Warn("show notification", "error", err)
	}
}
