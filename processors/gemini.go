package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/TM2611/air-keys/dictation"
)

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-flash-preview:generateContent"

const cleanupPrompt = `You are a dictation cleanup assistant.
Rewrite the transcript so it reads naturally while preserving meaning.
Remove filler words (for example: um, uh, ah, er, like, you know), fix grammar,
punctuation, and sentence flow.
Return only the cleaned transcript with no explanation.

Transcript:
`

// GeminiCleaner rewrites a raw transcript into polished prose via the Gemini
// generateContent endpoint.
type GeminiCleaner struct {
	keys    KeyStore
	baseURL string
	http    *http.Client
}

// NewGeminiCleaner creates the Gemini-backed transcript cleaner.
func NewGeminiCleaner(keys KeyStore) *GeminiCleaner {
	return &GeminiCleaner{
		keys:    keys,
		baseURL: defaultGeminiURL,
		http:    newHTTPClient(),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Clean asks Gemini to rewrite text. Whitespace-only input short-circuits to
// an empty result without a request.
func (g *GeminiCleaner) Clean(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	apiKey, err := g.keys.ReadGeminiKey()
	if err != nil {
		return "", fmt.Errorf("%w: gemini: %v", dictation.ErrMissingCredential, err)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: cleanupPrompt + text}}}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload geminiResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	for _, cand := range payload.Candidates {
		for _, part := range cand.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				return strings.TrimSpace(part.Text), nil
			}
		}
	}
	return "", fmt.Errorf("gemini returned no text")
}
