package provider

// Provider name constants for config and registry
const (
	ProviderAssemblyAI = "assemblyai"
	ProviderOpenAI     = "openai"
	ProviderGroq       = "groq"
)

// Environment variable names for API keys
const (
	EnvAssemblyAIKey = "ASSEMBLYAI_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGroqKey       = "GROQ_API_KEY"
)

// EnvVarForProvider returns the environment variable name for a provider's
// API key.
func EnvVarForProvider(name string) string {
	switch name {
	case ProviderAssemblyAI:
		return EnvAssemblyAIKey
	case ProviderOpenAI:
		return EnvOpenAIKey
	case ProviderGroq:
		return EnvGroqKey
	default:
		return ""
	}
}
