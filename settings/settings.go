// Package settings handles persisted preferences and credential storage.
// Preferences live in a JSON file under the user config directory; API keys
// live in the system keyring, never on disk.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	appName        = "air-keys"
	configFileName = "config.json"
)

// Transcriber preference values.
const (
	TranscriberDeepgram = "deepgram"
	TranscriberWhisper  = "whisper"
)

// Config represents the persisted preferences.
type Config struct {
	PostProcessing  bool   `json:"post_processing"`
	Transcriber     string `json:"transcriber"`
	LaunchOnStartup bool   `json:"launch_on_startup"`
}

func defaultConfig() *Config {
	return &Config{
		PostProcessing: false,
		Transcriber:    TranscriberDeepgram,
	}
}

// userConfigDir is swapped out in tests.
var userConfigDir = os.UserConfigDir

func configPath() (string, error) {
	dir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Store provides concurrency-safe access to the preferences, persisting every
// mutation. It also implements the orchestrator's settings interface and the
// providers' key store.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// Open loads the preferences, falling back to defaults when no file exists.
func Open() (*Store, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg}, nil
}

func load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Transcriber == "" {
		cfg.Transcriber = TranscriberDeepgram
	}
	return &cfg, nil
}

func (s *Store) save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ProcessingEnabled reports whether transcript cleanup is turned on.
func (s *Store) ProcessingEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PostProcessing
}

// SetProcessingEnabled persists the cleanup preference.
func (s *Store) SetProcessingEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.PostProcessing = enabled
	return s.save()
}

// Transcriber returns the selected transcription provider.
func (s *Store) Transcriber() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Transcriber
}

// SetTranscriber persists the transcription provider choice.
func (s *Store) SetTranscriber(name string) error {
	if name != TranscriberDeepgram && name != TranscriberWhisper {
		return fmt.Errorf("unknown transcriber: %s", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Transcriber = name
	return s.save()
}

// LaunchOnStartup reports whether the app registers itself at login.
func (s *Store) LaunchOnStartup() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.LaunchOnStartup
}

// SetLaunchOnStartup persists the login-item preference.
func (s *Store) SetLaunchOnStartup(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.LaunchOnStartup = enabled
	return s.save()
}
