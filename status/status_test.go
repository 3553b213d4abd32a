package status

import (
	"testing"

	"github.com/TM2611/air-keys/dictation"
)

func TestNotifierTracksStateAndLevel(t *testing.T) {
	n := NewNotifier()

	if got := n.State(); got != dictation.StateIdle {
		t.Fatalf("initial state = %q, want idle", got)
	}

	n.StateChanged(dictation.StateListening)
	n.AudioLevel(0.42)

	if got := n.State(); got != dictation.StateListening {
		t.Errorf("state = %q, want listening", got)
	}
	if got := n.Level(); got != 0.42 {
		t.Errorf("level = %v, want 0.42", got)
	}
}
