package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/TM2611/air-keys/dictation"
)

const defaultDeepgramURL = "https://api.deepgram.com/v1/listen?model=nova-2&smart_format=true&filler_words=false&punctuate=true"

// DeepgramTranscriber sends a recorded WAV file to Deepgram's pre-recorded
// transcription endpoint and returns the first non-empty alternative.
type DeepgramTranscriber struct {
	keys    KeyStore
	baseURL string
	http    *http.Client
}

// NewDeepgramTranscriber creates the default Deepgram-backed transcriber.
func NewDeepgramTranscriber(keys KeyStore) *DeepgramTranscriber {
	return &DeepgramTranscriber{
		keys:    keys,
		baseURL: defaultDeepgramURL,
		http:    newHTTPClient(),
	}
}

// deepgramResponse represents the subset of the pre-recorded API response
// the transcriber depends on.
type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// ProcessFile uploads the audio at path and returns the transcript.
func (d *DeepgramTranscriber) ProcessFile(ctx context.Context, path string) (string, error) {
	apiKey, err := d.keys.ReadDeepgramKey()
	if err != nil {
		return "", fmt.Errorf("%w: deepgram: %v", dictation.ErrMissingCredential, err)
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", d.baseURL, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload deepgramResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse deepgram response: %w", err)
	}

	for _, ch := range payload.Results.Channels {
		for _, alt := range ch.Alternatives {
			if strings.TrimSpace(alt.Transcript) != "" {
				return alt.Transcript, nil
			}
		}
	}
	return "", dictation.ErrEmptyTranscript
}
