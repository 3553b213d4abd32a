package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// ErrNoKey is returned when no credential is stored for a provider.
var ErrNoKey = errors.New("no API key stored")

// Keyring account names, one per provider.
const (
	deepgramKeyName = "deepgram_api_key"
	geminiKeyName   = "gemini_api_key"
	openaiKeyName   = "openai_api_key"
)

// Swapped out in tests; the real keyring needs a desktop session.
var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

func saveKey(name, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("refusing to store empty key for %s", name)
	}
	if err := keyringSet(appName, name, apiKey); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

func readKey(name string) (string, error) {
	value, err := keyringGet(appName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrNoKey, name)
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}

func clearKey(name string) error {
	if err := keyringDelete(appName, name); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	return nil
}

func hasKey(name string) bool {
	_, err := readKey(name)
	return err == nil
}

// SaveDeepgramKey stores the Deepgram credential in the system keyring.
func (s *Store) SaveDeepgramKey(apiKey string) error { return saveKey(deepgramKeyName, apiKey) }

// ReadDeepgramKey returns the stored Deepgram credential, or ErrNoKey.
func (s *Store) ReadDeepgramKey() (string, error) { return readKey(deepgramKeyName) }

// ClearDeepgramKey removes the stored Deepgram credential. Idempotent.
func (s *Store) ClearDeepgramKey() error { return clearKey(deepgramKeyName) }

// HasDeepgramKey reports whether a Deepgram credential is stored.
func (s *Store) HasDeepgramKey() bool { return hasKey(deepgramKeyName) }

// SaveGeminiKey stores the Gemini credential in the system keyring.
func (s *Store) SaveGeminiKey(apiKey string) error { return saveKey(geminiKeyName, apiKey) }

// ReadGeminiKey returns the stored Gemini credential, or ErrNoKey.
func (s *Store) ReadGeminiKey() (string, error) { return readKey(geminiKeyName) }

// ClearGeminiKey removes the stored Gemini credential. Idempotent.
func (s *Store) ClearGeminiKey() error { return clearKey(geminiKeyName) }

// HasGeminiKey reports whether a Gemini credential is stored.
func (s *Store) HasGeminiKey() bool { return hasKey(geminiKeyName) }

// SaveOpenAIKey stores the OpenAI credential in the system keyring.
func (s *Store) SaveOpenAIKey(apiKey string) error { return saveKey(openaiKeyName, apiKey) }

// ReadOpenAIKey returns the stored OpenAI credential, or ErrNoKey.
func (s *Store) ReadOpenAIKey() (string, error) { return readKey(openaiKeyName) }

// ClearOpenAIKey removes the stored OpenAI credential. Idempotent.
func (s *Store) ClearOpenAIKey() error { return clearKey(openaiKeyName) }

// HasOpenAIKey reports whether an OpenAI credential is stored.
func (s *Store) HasOpenAIKey() bool { return hasKey(openaiKeyName) }
