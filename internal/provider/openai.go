package provider

import "strings"

// OpenAIProvider implements Provider for OpenAI's Whisper API.
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

func (p *OpenAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *OpenAIProvider) ValidateAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-")
}

func (p *OpenAIProvider) SupportsUtterances() bool {
	return false
}

func (p *OpenAIProvider) DefaultModel() string {
	return "whisper-1"
}

func (p *OpenAIProvider) Endpoint() *EndpointConfig {
	return nil // SDK-based
}
