package provider

// Provider describes a speech-to-text backend known to the system. The
// active set is constructed explicitly from configuration; the registry only
// supplies metadata, never live adapters.
type Provider interface {
	Name() string
	RequiresAPIKey() bool
	ValidateAPIKey(key string) bool
	// SupportsUtterances reports whether the backend returns utterance-level
	// timestamps with speaker labels.
	SupportsUtterances() bool
	DefaultModel() string
	// Endpoint returns the HTTP endpoint for backends driven over raw HTTP,
	// nil for SDK-based backends.
	Endpoint() *EndpointConfig
}

// EndpointConfig holds HTTP endpoint configuration.
type EndpointConfig struct {
	BaseURL string // e.g. "https://api.assemblyai.com"
	Path    string // e.g. "/v2/transcript"
}

var registry = make(map[string]Provider)

func init() {
	Register(&AssemblyAIProvider{})
	Register(&OpenAIProvider{})
	Register(&GroqProvider{})
}

// Register adds a provider to the registry.
func Register(p Provider) {
	registry[p.Name()] = p
}

// GetProvider returns a provider by name, or nil if not found.
func GetProvider(name string) Provider {
	return registry[name]
}

// ListProviders returns all registered provider names.
func ListProviders() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// ListProvidersWithUtterances returns providers that emit speaker-labelled
// utterances.
func ListProvidersWithUtterances() []string {
	var names []string
	for name, p := range registry {
		if p.SupportsUtterances() {
			names = append(names, name)
		}
	}
	return names
}
