package processors

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/TM2611/air-keys/dictation"
)

// WhisperTranscriber is the OpenAI-backed alternative to Deepgram, selectable
// via the transcriber preference.
type WhisperTranscriber struct {
	keys KeyStore
	opts []option.RequestOption
}

// NewWhisperTranscriber creates the Whisper-backed transcriber. Extra request
// options (such as a base URL override) are passed through to the client.
func NewWhisperTranscriber(keys KeyStore, opts ...option.RequestOption) *WhisperTranscriber {
	return &WhisperTranscriber{keys: keys, opts: opts}
}

// ProcessFile uploads the audio at path to the Whisper transcription API.
func (w *WhisperTranscriber) ProcessFile(ctx context.Context, path string) (string, error) {
	apiKey, err := w.keys.ReadOpenAIKey()
	if err != nil {
		return "", fmt.Errorf("%w: openai: %v", dictation.ErrMissingCredential, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	opts := append([]option.RequestOption{option.WithAPIKey(apiKey)}, w.opts...)
	client := openai.NewClient(opts...)

	resp, err := client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(f, "audio.wav", "audio/wav"),
		Model: openai.AudioModelWhisper1,
	})
	if err != nil {
		return "", fmt.Errorf("whisper transcription: %w", err)
	}

	if strings.TrimSpace(resp.Text) == "" {
		return "", dictation.ErrEmptyTranscript
	}
	return resp.Text, nil
}
