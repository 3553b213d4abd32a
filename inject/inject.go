// Package inject delivers dictated text into whatever application holds
// keyboard focus, via the clipboard and a synthesized paste chord.
package inject

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-vgo/robotgo"
)

// pasteSettle gives the focused application time to observe the new
// clipboard contents before the paste chord lands.
const pasteSettle = 50 * time.Millisecond

// PasteInjector injects text by caching the clipboard, writing the text,
// sending the platform paste shortcut, and restoring the previous contents.
type PasteInjector struct{}

// NewPasteInjector returns the clipboard-backed injector.
func NewPasteInjector() *PasteInjector {
	return &PasteInjector{}
}

// Inject pastes text into the focused application. The previous clipboard
// contents are restored afterwards on a best-effort basis; a restore failure
// is logged, not surfaced, because the text has already been delivered.
func (p *PasteInjector) Inject(text string) error {
	cached, cacheErr := robotgo.ReadAll()
	if cacheErr != nil {
		slog.Warn("could not read clipboard, previous contents will be lost", "error", cacheErr)
	}

	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}

	time.Sleep(pasteSettle)
	if err := robotgo.KeyTap("v", pasteModifier); err != nil {
		return fmt.Errorf("send paste shortcut: %w", err)
	}
	time.Sleep(pasteSettle)

	if cacheErr == nil {
		if err := robotgo.WriteAll(cached); err != nil {
			slog.Warn("could not restore clipboard", "error", err)
		}
	}
	return nil
}
