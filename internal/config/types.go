package config

import "time"

type Config struct {
	Transcription TranscriptionConfig       `toml:"transcription"`
	Polling       PollingConfig             `toml:"polling"`
	Report        ReportConfig              `toml:"report"`
	Watch         WatchConfig               `toml:"watch"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// TranscriptionConfig selects and orders the speech-to-text backends.
type TranscriptionConfig struct {
	// Providers is the explicit attempt order: first entry is the primary,
	// the rest are fallbacks.
	Providers        []string `toml:"providers"`
	ExpectedSpeakers int      `toml:"expected_speakers"`
	Diarize          bool     `toml:"diarize"`
	// Language is an ISO 639-1 code; empty means auto-detect.
	Language string `toml:"language"`
	// Prompt is an optional domain-context hint forwarded to backends.
	Prompt string `toml:"prompt"`
}

// PollingConfig bounds the asynchronous backend's status polling.
type PollingConfig struct {
	Interval time.Duration `toml:"interval"`
	Timeout  time.Duration `toml:"timeout"`
}

// ReportConfig controls transcript rendering.
type ReportConfig struct {
	Width int `toml:"width"` // wrap column for utterance text
}

// WatchConfig controls the watch-folder ingestion mode.
type WatchConfig struct {
	Extensions []string `toml:"extensions"` // audio file extensions to pick up
	OutputDir  string   `toml:"output_dir"` // empty = next to the audio file
}

// ProviderConfig holds per-provider credentials and model selection.
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}
