package processors

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	deepgramValidateURL = "https://api.deepgram.com/v1/auth/token"
	geminiValidateURL   = "https://generativelanguage.googleapis.com/v1/models"
)

// ValidateDeepgramKey checks a candidate key against Deepgram's token
// endpoint before it is persisted.
func ValidateDeepgramKey(ctx context.Context, apiKey string) error {
	return validateKey(ctx, deepgramValidateURL, "deepgram", func(req *http.Request, key string) {
		req.Header.Set("Authorization", "Token "+key)
	}, apiKey)
}

// ValidateGeminiKey checks a candidate key against the Gemini model listing.
func ValidateGeminiKey(ctx context.Context, apiKey string) error {
	return validateKey(ctx, geminiValidateURL, "gemini", func(req *http.Request, key string) {
		req.Header.Set("x-goog-api-key", key)
	}, apiKey)
}

func validateKey(ctx context.Context, url, provider string, auth func(*http.Request, string), apiKey string) error {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return fmt.Errorf("%s API key is required", provider)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	auth(req, key)

	resp, err := newHTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("validate %s API key: %w", provider, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("invalid %s API key", provider)
	default:
		return fmt.Errorf("%s key validation failed with status %d", provider, resp.StatusCode)
	}
}
