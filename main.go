package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TM2611/air-keys/audio"
	"github.com/TM2611/air-keys/dictation"
	"github.com/TM2611/air-keys/gesture"
	"github.com/TM2611/air-keys/hook"
	"github.com/TM2611/air-keys/inject"
	"github.com/TM2611/air-keys/processors"
	"github.com/TM2611/air-keys/settings"
	"github.com/TM2611/air-keys/status"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	slog.Info("starting air-keys", "version", version, "commit", commit)

	if err := run(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settings.Open()
	if err != nil {
		return fmt.Errorf("open settings: %w", err)
	}

	session, err := audio.NewSession()
	if err != nil {
		return fmt.Errorf("init audio: %w", err)
	}
	defer session.Close()

	sink := status.NewNotifier()

	var transcriber dictation.Transcriber
	switch store.Transcriber() {
	case settings.TranscriberWhisper:
		transcriber = processors.NewWhisperTranscriber(store)
	default:
		transcriber = processors.NewDeepgramTranscriber(store)
	}

	orch := dictation.NewOrchestrator(
		session,
		transcriber,
		processors.NewGeminiCleaner(store),
		inject.NewPasteInjector(),
		store,
		sink,
	)
	defer orch.Shutdown()

	// Both callbacks arrive on detached goroutines, never on the hook
	// thread, so blocking on transcription here is fine.
	detector := gesture.NewDetector(
		func() {
			if err := orch.HandleTap(ctx); err != nil {
				slog.Error("handle tap", "error", err)
				sink.Alert("Dictation failed: " + err.Error())
			}
		},
		func() {
			if err := orch.HandleHoldCancel(); err != nil {
				slog.Error("handle hold cancel", "error", err)
			}
		},
	)

	listener := hook.NewListener(detector)
	if err := listener.Start(); err != nil {
		// Losing the hook disables gestures but not the process.
		slog.Error("keyboard hook unavailable, dictation disabled", "error", err)
		sink.Alert("Keyboard hook unavailable; dictation gestures are disabled.")
	} else {
		defer listener.Stop()
	}

	slog.Info("ready",
		"transcriber", store.Transcriber(),
		"post_processing", store.ProcessingEnabled())

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}
