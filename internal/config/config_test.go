package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clinscribe/clinscribe/internal/provider"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func validTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.Providers = map[string]ProviderConfig{
		provider.ProviderAssemblyAI: {APIKey: "assemblyai-test-key-0123"},
		provider.ProviderOpenAI:     {APIKey: "sk-test"},
		provider.ProviderGroq:       {APIKey: "gsk_test"},
	}
	return cfg
}

func TestDefaultConfig_HasSensiblePolling(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Polling.Interval != 3*time.Second {
		t.Errorf("Polling.Interval = %v, want 3s", cfg.Polling.Interval)
	}
	if cfg.Polling.Timeout <= cfg.Polling.Interval {
		t.Errorf("Polling.Timeout = %v, must exceed the interval", cfg.Polling.Timeout)
	}
	if len(cfg.Transcription.Providers) == 0 {
		t.Error("default provider order is empty")
	}
	if cfg.Transcription.Providers[0] != provider.ProviderAssemblyAI {
		t.Errorf("default primary = %q, want assemblyai", cfg.Transcription.Providers[0])
	}
}

func TestLoadFrom_ParsesConfig(t *testing.T) {
	path := writeTempConfig(t, `
[transcription]
providers = ["openai", "groq"]
expected_speakers = 3
diarize = false

[polling]
interval = "5s"
timeout = "2m"

[report]
width = 60

[providers.openai]
api_key = "sk-abc"
model = "whisper-1"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if len(cfg.Transcription.Providers) != 2 || cfg.Transcription.Providers[0] != "openai" {
		t.Errorf("Transcription.Providers = %v", cfg.Transcription.Providers)
	}
	if cfg.Transcription.ExpectedSpeakers != 3 {
		t.Errorf("ExpectedSpeakers = %d, want 3", cfg.Transcription.ExpectedSpeakers)
	}
	if cfg.Polling.Interval != 5*time.Second {
		t.Errorf("Polling.Interval = %v, want 5s", cfg.Polling.Interval)
	}
	if cfg.Polling.Timeout != 2*time.Minute {
		t.Errorf("Polling.Timeout = %v, want 2m", cfg.Polling.Timeout)
	}
	if cfg.Report.Width != 60 {
		t.Errorf("Report.Width = %d, want 60", cfg.Report.Width)
	}
	if cfg.Providers["openai"].APIKey != "sk-abc" {
		t.Errorf("openai api key = %q", cfg.Providers["openai"].APIKey)
	}
}

func TestLoadFrom_SparseFileGetsDefaults(t *testing.T) {
	path := writeTempConfig(t, `
[providers.openai]
api_key = "sk-abc"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.Polling.Interval != 3*time.Second {
		t.Errorf("sparse config should default polling.interval, got %v", cfg.Polling.Interval)
	}
	if cfg.Report.Width == 0 {
		t.Error("sparse config should default report.width")
	}
	if len(cfg.Transcription.Providers) == 0 {
		t.Error("sparse config should default the provider order")
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := writeTempConfig(t, "not [valid toml")
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("LoadFrom() should fail on invalid TOML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no providers", func(c *Config) { c.Transcription.Providers = nil }, "transcription.providers"},
		{"unknown provider", func(c *Config) { c.Transcription.Providers = []string{"deepgram"} }, "unsupported provider"},
		{"duplicate provider", func(c *Config) {
			c.Transcription.Providers = []string{"openai", "openai"}
		}, "duplicate provider"},
		{"missing api key", func(c *Config) {
			delete(c.Providers, provider.ProviderOpenAI)
		}, "openai API key required"},
		{"negative speakers", func(c *Config) { c.Transcription.ExpectedSpeakers = -1 }, "expected_speakers"},
		{"zero poll interval", func(c *Config) { c.Polling.Interval = 0 }, "polling.interval"},
		{"timeout below interval", func(c *Config) {
			c.Polling.Timeout = time.Second
			c.Polling.Interval = time.Minute
		}, "polling.timeout"},
		{"zero report width", func(c *Config) { c.Report.Width = 0 }, "report.width"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// keep env fallback out of the picture
			t.Setenv(provider.EnvOpenAIKey, "")
			t.Setenv(provider.EnvGroqKey, "")
			t.Setenv(provider.EnvAssemblyAIKey, "")

			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() should fail with %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestAPIKeyForProvider_EnvFallback(t *testing.T) {
	cfg := DefaultConfig()
	t.Setenv(provider.EnvOpenAIKey, "sk-from-env")

	if got := cfg.APIKeyForProvider(provider.ProviderOpenAI); got != "sk-from-env" {
		t.Errorf("APIKeyForProvider() = %q, want the env value", got)
	}

	cfg.Providers[provider.ProviderOpenAI] = ProviderConfig{APIKey: "sk-from-config"}
	if got := cfg.APIKeyForProvider(provider.ProviderOpenAI); got != "sk-from-config" {
		t.Errorf("APIKeyForProvider() = %q, config should win over env", got)
	}
}

func TestModelForProvider_DefaultsFromRegistry(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ModelForProvider(provider.ProviderGroq); got != "whisper-large-v3-turbo" {
		t.Errorf("ModelForProvider(groq) = %q, want the registry default", got)
	}

	cfg.Providers[provider.ProviderGroq] = ProviderConfig{Model: "whisper-large-v3"}
	if got := cfg.ModelForProvider(provider.ProviderGroq); got != "whisper-large-v3" {
		t.Errorf("ModelForProvider(groq) = %q, config should win", got)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := validTestConfig()
	cfg.Report.Width = 66
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Report.Width != 66 {
		t.Errorf("Report.Width = %d after round trip, want 66", loaded.Report.Width)
	}
	if loaded.Providers[provider.ProviderOpenAI].APIKey != "sk-test" {
		t.Errorf("openai key lost in round trip: %q", loaded.Providers[provider.ProviderOpenAI].APIKey)
	}
}

func TestLoad_CreatesDefaultConfigOnFirstRun(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Transcription.Providers) == 0 {
		t.Error("first-run config missing provider order")
	}

	path, _ := GetConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created on first run: %v", err)
	}
}
