// Package tui implements the interactive configuration wizard.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/clinscribe/clinscribe/internal/config"
	"github.com/clinscribe/clinscribe/internal/language"
	"github.com/clinscribe/clinscribe/internal/provider"
)

// Result is the outcome of the configuration wizard.
type Result struct {
	Config    *config.Config
	Cancelled bool
}

// wizard order: primary-capable backend first
var wizardProviders = []string{
	provider.ProviderAssemblyAI,
	provider.ProviderOpenAI,
	provider.ProviderGroq,
}

// Run walks the user through provider credentials and the fallback order,
// mutating a copy of cfg. The caller validates and saves the result.
func Run(cfg *config.Config) (*Result, error) {
	edited := *cfg
	if edited.Providers == nil {
		edited.Providers = make(map[string]config.ProviderConfig)
	}

	keys := make(map[string]*string, len(wizardProviders))
	var fields []huh.Field
	for _, name := range wizardProviders {
		key := edited.Providers[name].APIKey
		keys[name] = &key
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("%s API key", displayName(name))).
			Description(keyStatus(&edited, name)).
			EchoMode(huh.EchoModePassword).
			Value(keys[name]))
	}

	primary := edited.Transcription.Providers
	primaryChoice := provider.ProviderAssemblyAI
	if len(primary) > 0 {
		primaryChoice = primary[0]
	}

	var options []huh.Option[string]
	for _, name := range wizardProviders {
		options = append(options, huh.NewOption(displayName(name), name))
	}

	diarize := edited.Transcription.Diarize
	langChoice := edited.Transcription.Language

	langOptions := []huh.Option[string]{huh.NewOption(language.Auto.Name, "")}
	for _, lang := range language.List() {
		langOptions = append(langOptions, huh.NewOption(lang.Name, lang.Code))
	}

	form := huh.NewForm(
		huh.NewGroup(fields...).Title("Provider credentials"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Primary backend").
				Description("Attempted first; the others become fallbacks").
				Options(options...).
				Value(&primaryChoice),
			huh.NewSelect[string]().
				Title("Audio language").
				Description("Forwarded to backends; auto-detect when unset").
				Options(langOptions...).
				Value(&langChoice),
			huh.NewConfirm().
				Title("Speaker diarization").
				Description("Label utterances with speaker roles (primary backend only)").
				Value(&diarize),
		),
	)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return &Result{Cancelled: true}, nil
		}
		return nil, err
	}

	for name, key := range keys {
		if *key == "" {
			continue
		}
		pc := edited.Providers[name]
		pc.APIKey = *key
		edited.Providers[name] = pc
	}

	edited.Transcription.Diarize = diarize
	edited.Transcription.Language = langChoice
	edited.Transcription.Providers = orderWithPrimary(primaryChoice)

	return &Result{Config: &edited}, nil
}

// orderWithPrimary returns the provider order with the chosen primary first
// and the remaining backends as fallbacks in wizard order.
func orderWithPrimary(primary string) []string {
	order := []string{primary}
	for _, name := range wizardProviders {
		if name != primary {
			order = append(order, name)
		}
	}
	return order
}

func displayName(name string) string {
	switch name {
	case provider.ProviderAssemblyAI:
		return "AssemblyAI"
	case provider.ProviderOpenAI:
		return "OpenAI"
	case provider.ProviderGroq:
		return "Groq"
	default:
		return name
	}
}

func keyStatus(cfg *config.Config, name string) string {
	if key := cfg.APIKeyForProvider(name); key != "" {
		return fmt.Sprintf("configured (%s), leave empty to keep", maskAPIKey(key))
	}
	return "not configured"
}

// maskAPIKey returns a masked version of an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
