// Package processors implements the hosted speech-to-text and transcript
// cleanup providers consumed by the dictation orchestrator.
package processors

import (
	"net/http"
	"time"
)

// KeyStore reads stored API credentials. A missing credential is reported as
// an error wrapping the caller's missing-credential sentinel.
type KeyStore interface {
	ReadDeepgramKey() (string, error)
	ReadGeminiKey() (string, error)
	ReadOpenAIKey() (string, error)
}

// newHTTPClient returns the client used by all providers. Transcription of a
// long recording can legitimately take a while, so the timeout is generous.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
