package config

import (
	"fmt"
	"os"

	"github.com/clinscribe/clinscribe/internal/language"
	"github.com/clinscribe/clinscribe/internal/provider"
)

func (c *Config) Validate() error {
	if len(c.Transcription.Providers) == 0 {
		return fmt.Errorf("invalid transcription.providers: empty (need one primary and optional fallbacks)")
	}

	seen := make(map[string]bool)
	for _, name := range c.Transcription.Providers {
		p := provider.GetProvider(name)
		if p == nil {
			return fmt.Errorf("unsupported provider in transcription.providers: %s (must be assemblyai, openai, or groq)", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate provider in transcription.providers: %s", name)
		}
		seen[name] = true

		if p.RequiresAPIKey() && c.APIKeyForProvider(name) == "" {
			return fmt.Errorf("%s API key required: not found in config (providers.%s.api_key) or environment variable (%s)",
				name, name, provider.EnvVarForProvider(name))
		}
	}

	if !language.IsValidCode(c.Transcription.Language) {
		return fmt.Errorf("invalid transcription.language: %q is not a supported ISO 639-1 code", c.Transcription.Language)
	}
	if c.Transcription.ExpectedSpeakers < 0 {
		return fmt.Errorf("invalid transcription.expected_speakers: %d", c.Transcription.ExpectedSpeakers)
	}
	if c.Polling.Interval <= 0 {
		return fmt.Errorf("invalid polling.interval: %v", c.Polling.Interval)
	}
	if c.Polling.Timeout <= 0 {
		return fmt.Errorf("invalid polling.timeout: %v", c.Polling.Timeout)
	}
	if c.Polling.Timeout < c.Polling.Interval {
		return fmt.Errorf("invalid polling.timeout: %v is shorter than polling.interval %v", c.Polling.Timeout, c.Polling.Interval)
	}
	if c.Report.Width <= 0 {
		return fmt.Errorf("invalid report.width: %d", c.Report.Width)
	}

	return nil
}

// APIKeyForProvider resolves a provider's API key from the config file,
// falling back to the provider's environment variable.
func (c *Config) APIKeyForProvider(name string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[name]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := provider.EnvVarForProvider(name); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// ModelForProvider resolves the model for a provider, falling back to the
// registry default.
func (c *Config) ModelForProvider(name string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[name]; ok && pc.Model != "" {
			return pc.Model
		}
	}
	if p := provider.GetProvider(name); p != nil {
		return p.DefaultModel()
	}
	return ""
}
