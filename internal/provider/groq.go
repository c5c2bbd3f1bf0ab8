package provider

import "strings"

// GroqProvider implements Provider for Groq's Whisper-compatible API.
type GroqProvider struct{}

func (p *GroqProvider) Name() string {
	return ProviderGroq
}

func (p *GroqProvider) RequiresAPIKey() bool {
	return true
}

func (p *GroqProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "gsk_")
}

func (p *GroqProvider) SupportsUtterances() bool {
	return false
}

func (p *GroqProvider) DefaultModel() string {
	return "whisper-large-v3-turbo"
}

func (p *GroqProvider) Endpoint() *EndpointConfig {
	return nil // SDK-based, via OpenAI-compatible base URL
}
