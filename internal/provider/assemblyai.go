package provider

// AssemblyAIProvider implements Provider for AssemblyAI's asynchronous
// transcription API. It is the only backend that returns speaker-labelled
// utterances, so it is normally configured as the primary.
type AssemblyAIProvider struct{}

func (p *AssemblyAIProvider) Name() string {
	return ProviderAssemblyAI
}

func (p *AssemblyAIProvider) RequiresAPIKey() bool {
	return true
}

func (p *AssemblyAIProvider) ValidateAPIKey(key string) bool {
	return len(key) >= 16
}

func (p *AssemblyAIProvider) SupportsUtterances() bool {
	return true
}

func (p *AssemblyAIProvider) DefaultModel() string {
	return "best"
}

func (p *AssemblyAIProvider) Endpoint() *EndpointConfig {
	return &EndpointConfig{
		BaseURL: "https://api.assemblyai.com",
		Path:    "/v2",
	}
}
