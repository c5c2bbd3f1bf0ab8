package config

import (
	"time"

	"github.com/clinscribe/clinscribe/internal/provider"
	"github.com/clinscribe/clinscribe/internal/report"
)

// DefaultConfig returns the initial configuration used for onboarding.
func DefaultConfig() *Config {
	return &Config{
		Transcription: TranscriptionConfig{
			Providers:        []string{provider.ProviderAssemblyAI, provider.ProviderOpenAI, provider.ProviderGroq},
			ExpectedSpeakers: 2,
			Diarize:          true,
		},
		Polling: PollingConfig{
			Interval: 3 * time.Second,
			Timeout:  10 * time.Minute,
		},
		Report: ReportConfig{
			Width: report.DefaultWidth,
		},
		Watch: WatchConfig{
			Extensions: []string{".wav", ".mp3", ".m4a", ".ogg", ".flac", ".webm"},
		},
		Providers: make(map[string]ProviderConfig),
	}
}
